package unify

import (
	"fmt"
	"slices"

	"github.com/benbjohnson/immutable"
	"github.com/cottand/datashape/shape"
	"github.com/cottand/datashape/shapeerr"
)

// maxChain bounds how many variable-to-variable hops Resolve follows.
// Bind refuses cycles, so it is only reached on a corrupted environment.
const maxChain = 1 << 10

// Binding is a variable (or named ellipsis) together with the value it was bound to.
type Binding struct {
	Name  string
	Value shape.Term
}

func (b Binding) String() string {
	return fmt.Sprintf("%s := %s", b.Name, b.Value)
}

// Env is a substitution environment: it maps variable names to the term they are bound to.
//
// Bindings are never overwritten. The underlying map is persistent, so Clone is cheap and
// a clone is unaffected by later bindings made on the original.
type Env struct {
	bindings *immutable.SortedMap[string, shape.Term]
}

func NewEnv() *Env {
	return &Env{bindings: immutable.NewSortedMap[string, shape.Term](nil)}
}

func (e *Env) Clone() *Env {
	return &Env{bindings: e.bindings}
}

// Len is the number of bindings made so far.
func (e *Env) Len() int {
	return e.bindings.Len()
}

func (e *Env) Lookup(name string) (shape.Term, bool) {
	return e.bindings.Get(name)
}

// Bind records name := value.
//
// Binding a variable to a value it already resolves to is a no-op. When it resolves to
// another free variable, that variable is bound instead. Binding it to a different value
// fails with an error whose kind depends on the kind of value (sizes, measures or spans).
func (e *Env) Bind(name string, value shape.Term) error {
	if value == nil {
		return shapeerr.New(shapeerr.NewMalformedShape{Reason: fmt.Sprintf("cannot bind '%s' to nothing", name)})
	}
	resolved := e.resolveDeep(value)
	if existing, ok := e.bindings.Get(name); ok {
		existing = e.resolveDeep(existing)
		if shape.Equal(existing, resolved) {
			return nil
		}
		if end, free := freeName(existing); free {
			// name is an alias of a variable that is still free, bind that one instead
			return e.Bind(end, value)
		}
		return conflict(name, existing, resolved)
	}
	if isSelf(name, resolved) {
		return nil
	}
	if slices.Contains(shape.TermVars(resolved), name) {
		return shapeerr.New(shapeerr.NewVariableArityConflict{
			Var:    name,
			First:  name,
			Second: resolved.String(),
			Reason: "a span cannot contain itself",
		})
	}
	e.bindings = e.bindings.Set(name, value)
	return nil
}

// Resolve dereferences t through the bindings made so far and returns its current value,
// or t itself when it is free. Resolving twice gives the same result as resolving once.
func (e *Env) Resolve(t shape.Term) shape.Term {
	for range maxChain {
		var name string
		switch v := t.(type) {
		case shape.Var:
			name = v.Name
		case shape.Ellipsis:
			if !v.Named() {
				return t
			}
			name = v.Name
		default:
			return t
		}
		next, ok := e.bindings.Get(name)
		if !ok {
			return t
		}
		t = next
	}
	panic(fmt.Sprintf("binding chain for %v is too long", t))
}

// SubstituteDims resolves every dimension and expands every bound ellipsis into its span.
func (e *Env) SubstituteDims(dims []shape.Dim) []shape.Dim {
	ret := make([]shape.Dim, 0, len(dims))
	for _, d := range dims {
		switch r := e.Resolve(d).(type) {
		case shape.Span:
			ret = append(ret, e.SubstituteDims(r)...)
		case shape.Dim:
			ret = append(ret, r)
		default:
			// a measure where a dimension was expected, keep the variable
			ret = append(ret, d)
		}
	}
	return ret
}

// Substitute applies the environment to a whole shape.
func (e *Env) Substitute(s shape.Shape) shape.Shape {
	return shape.Shape{
		Dims:    e.SubstituteDims(s.Dims),
		Measure: e.resolveMeasure(s.Measure),
	}
}

// Bindings returns every binding, sorted by name, with values fully substituted.
func (e *Env) Bindings() []Binding {
	ret := make([]Binding, 0, e.bindings.Len())
	itr := e.bindings.Iterator()
	for !itr.Done() {
		name, value, _ := itr.Next()
		ret = append(ret, Binding{Name: name, Value: e.resolveDeep(value)})
	}
	return ret
}

func (e *Env) resolveDim(d shape.Dim) shape.Dim {
	if r, ok := e.Resolve(d).(shape.Dim); ok {
		return r
	}
	return d
}

func (e *Env) resolveMeasure(m shape.Measure) shape.Measure {
	if m == nil {
		return nil
	}
	if r, ok := e.Resolve(m).(shape.Measure); ok {
		return r
	}
	return m
}

// resolveDeep is Resolve, with spans substituted as well
func (e *Env) resolveDeep(t shape.Term) shape.Term {
	if span, ok := e.Resolve(t).(shape.Span); ok {
		return shape.Span(e.SubstituteDims(span))
	}
	return e.Resolve(t)
}

// freeName returns the name of t when t is a variable or a named ellipsis
func freeName(t shape.Term) (string, bool) {
	switch t := t.(type) {
	case shape.Var:
		return t.Name, true
	case shape.Ellipsis:
		return t.Name, t.Named()
	}
	return "", false
}

func isSelf(name string, t shape.Term) bool {
	switch t := t.(type) {
	case shape.Var:
		return t.Name == name
	case shape.Ellipsis:
		return t.Name == name
	case shape.Span:
		return len(t) == 1 && isSelf(name, t[0])
	}
	return false
}

func conflict(name string, existing, value shape.Term) error {
	switch existing.(type) {
	case shape.Scalar:
		return shapeerr.New(shapeerr.NewMeasureConflict{Var: name, First: existing.String(), Second: value.String()})
	case shape.Span:
		return shapeerr.New(shapeerr.NewVariableArityConflict{Var: name, First: existing.String(), Second: value.String()})
	}
	if _, ok := value.(shape.Scalar); ok {
		return shapeerr.New(shapeerr.NewMeasureConflict{Var: name, First: existing.String(), Second: value.String()})
	}
	return shapeerr.New(shapeerr.NewSizeConflict{Var: name, First: existing.String(), Second: value.String()})
}
