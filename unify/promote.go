package unify

import (
	"github.com/cottand/datashape/lattice"
	"github.com/cottand/datashape/shape"
	"github.com/cottand/datashape/shapeerr"
)

// Promote returns the least upper bound of two measures.
//
// When either side is a variable (and the two sides are not the same term) the promotion
// cannot be decided yet: resolved is false and the caller is expected to keep the pair as
// a constraint on the variable.
func Promote(a, b shape.Measure) (m shape.Measure, resolved bool, err error) {
	if shape.Equal(a, b) {
		return a, true, nil
	}
	sa, okA := a.(shape.Scalar)
	sb, okB := b.(shape.Scalar)
	if !okA || !okB {
		return nil, false, nil
	}
	join, ok := lattice.Join(sa.Type, sb.Type)
	if !ok {
		return nil, false, shapeerr.New(shapeerr.NewMeasureConflict{First: sa.String(), Second: sb.String()})
	}
	return shape.Scalar{Type: join}, true, nil
}
