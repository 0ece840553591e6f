// Package shape is the data model of a datashape: an ordered sequence of dimensions
// followed by exactly one measure (element type).
package shape

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cottand/datashape/lattice"
)

// Term is anything a variable can be bound to: a Dim, a Measure or a Span.
//
// The set of implementations is closed; use a type switch over the variants.
type Term interface {
	String() string
	term()
}

// Dim is a single dimension of a Shape, one of Fixed, Var or Ellipsis.
type Dim interface {
	Term
	dim()
}

// Measure is the element type of a Shape, either Scalar or Var.
type Measure interface {
	Term
	measure()
}

// Fixed is a concrete dimension size.
type Fixed struct {
	Size int
}

// Var is a free variable. The same name denotes the same unknown within one unification
// batch, and a variable may sit either in a dimension or in the measure position.
type Var struct {
	Name string
}

// Ellipsis matches a contiguous run of zero or more dimensions.
// An Ellipsis with an empty Name is anonymous and never bound.
type Ellipsis struct {
	Name string
}

// Scalar is a concrete measure.
type Scalar struct {
	Type lattice.Type
}

// Span is a sequence of dimensions, the value a named Ellipsis is bound to.
type Span []Dim

func (Fixed) term()    {}
func (Var) term()      {}
func (Ellipsis) term() {}
func (Scalar) term()   {}
func (Span) term()     {}

func (Fixed) dim()    {}
func (Var) dim()      {}
func (Ellipsis) dim() {}

func (Var) measure()    {}
func (Scalar) measure() {}

func (d Fixed) String() string { return strconv.Itoa(d.Size) }
func (v Var) String() string   { return v.Name }
func (e Ellipsis) String() string {
	return e.Name + "..."
}
func (s Scalar) String() string { return s.Type.String() }
func (s Span) String() string {
	return "[" + joinDims(s) + "]"
}

// Named reports whether the ellipsis can be bound.
func (e Ellipsis) Named() bool { return e.Name != "" }

// IsUnit reports whether the size is 1, which broadcasts to any size.
func (d Fixed) IsUnit() bool { return d.Size == 1 }

// Shape is a datashape. A well-formed Shape has a non-nil Measure and at most one
// Ellipsis among its Dims, see Validate.
type Shape struct {
	Dims    []Dim
	Measure Measure
}

// Of builds a Shape from dims followed by its measure.
func Of(measure Measure, dims ...Dim) Shape {
	return Shape{Dims: dims, Measure: measure}
}

func (s Shape) String() string {
	if len(s.Dims) == 0 {
		return measureString(s.Measure)
	}
	return joinDims(s.Dims) + ", " + measureString(s.Measure)
}

// Rank is the number of dimensions, or -1 when the Shape is variadic.
func (s Shape) Rank() int {
	if EllipsisIndex(s.Dims) >= 0 {
		return -1
	}
	return len(s.Dims)
}

func (s Shape) Equal(other Shape) bool {
	return DimsEqual(s.Dims, other.Dims) && Equal(s.Measure, other.Measure)
}

// Copy returns a Shape that shares no backing array with s.
func (s Shape) Copy() Shape {
	return Shape{Dims: slices.Clone(s.Dims), Measure: s.Measure}
}

// EllipsisIndex returns the position of the first Ellipsis in dims, or -1.
func EllipsisIndex(dims []Dim) int {
	return slices.IndexFunc(dims, func(d Dim) bool {
		_, ok := d.(Ellipsis)
		return ok
	})
}

// Equal compares two terms structurally. Two nil terms are equal.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case Span:
		b, ok := b.(Span)
		return ok && DimsEqual(a, b)
	case Fixed, Var, Ellipsis, Scalar:
		return a == b
	default:
		return false
	}
}

func DimsEqual(a, b []Dim) bool {
	return slices.EqualFunc(a, b, func(x, y Dim) bool { return Equal(x, y) })
}

func joinDims(dims []Dim) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		if d == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

func measureString(m Measure) string {
	if m == nil {
		return "<no measure>"
	}
	return m.String()
}
