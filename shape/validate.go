package shape

import (
	"cmp"
	"fmt"

	"github.com/cottand/datashape/shapeerr"
	"github.com/hashicorp/go-set/v3"
)

// Validate checks the structural invariants of a Shape: a measure is present, sizes are
// non-negative, names are non-empty and there is at most one Ellipsis.
func Validate(s Shape) error {
	malformed := func(reason string, args ...any) error {
		return shapeerr.New(shapeerr.NewMalformedShape{Shape: s.String(), Reason: fmt.Sprintf(reason, args...)})
	}
	if s.Measure == nil {
		return malformed("missing measure")
	}
	switch m := s.Measure.(type) {
	case Var:
		if m.Name == "" {
			return malformed("measure variable without a name")
		}
	case Scalar:
		if !m.Type.Valid() {
			return malformed("unknown scalar type %d", int(m.Type))
		}
	}
	ellipses := 0
	for i, d := range s.Dims {
		switch d := d.(type) {
		case Fixed:
			if d.Size < 0 {
				return malformed("negative size %d at dimension %d", d.Size, i)
			}
		case Var:
			if d.Name == "" {
				return malformed("variable without a name at dimension %d", i)
			}
		case Ellipsis:
			ellipses++
			if ellipses > 1 {
				return malformed("more than one ellipsis")
			}
		case nil:
			return malformed("missing dimension %d", i)
		}
	}
	return nil
}

// FreeVars returns the sorted names of every variable and named ellipsis in s.
func FreeVars(s Shape) []string {
	names := set.NewTreeSet[string](cmp.Compare[string])
	for _, d := range s.Dims {
		collectVars(d, names)
	}
	if v, ok := s.Measure.(Var); ok {
		names.Insert(v.Name)
	}
	return names.Slice()
}

// TermVars returns the sorted names of the variables and named ellipses occurring in t.
func TermVars(t Term) []string {
	names := set.NewTreeSet[string](cmp.Compare[string])
	collectVars(t, names)
	return names.Slice()
}

func collectVars(t Term, into *set.TreeSet[string]) {
	switch t := t.(type) {
	case Var:
		into.Insert(t.Name)
	case Ellipsis:
		if t.Named() {
			into.Insert(t.Name)
		}
	case Span:
		for _, d := range t {
			collectVars(d, into)
		}
	}
}

// IsGround reports whether t contains no variable and no ellipsis.
func IsGround(t Term) bool {
	switch t := t.(type) {
	case Fixed, Scalar:
		return true
	case Span:
		for _, d := range t {
			if !IsGround(d) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
