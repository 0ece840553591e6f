package unify

import (
	"fmt"
	"slices"

	"github.com/cottand/datashape/shape"
	"github.com/cottand/datashape/shapeerr"
)

type padSide int

const (
	noPad padSide = iota
	// lhsPad means lhs is a unit dimension added by broadcasting
	lhsPad
	// rhsPad means rhs is a unit dimension added by broadcasting
	rhsPad
)

// dimPair is an elementary constraint lhs <= rhs: lhs must be equal to rhs,
// or broadcast to it.
type dimPair struct {
	lhs, rhs shape.Dim
	pad      padSide
}

// spanPair relates two dimension sequences that contain at least one ellipsis
// between them and could not be anchored any further.
type spanPair struct {
	lhs, rhs shape.Span
}

// alignment is the positional matching of two dimension sequences.
type alignment struct {
	dims  []dimPair
	spans []spanPair
	// template is the layout of the merged sequence, written in terms of the rhs
	template []shape.Dim
}

// align pairs up the dimensions of lhs and rhs.
//
// Without ellipses, and when broadcast is set, the shorter side is left-padded with unit
// dimensions. An ellipsis on one side is anchored by its prefix and suffix and absorbs
// whatever the other side has left in between. Ellipses on both sides anchor against each
// other and the extra dimensions of one side are absorbed by the ellipsis of the other.
func align(lhs, rhs []shape.Dim, broadcast bool) (alignment, error) {
	li, ri := shape.EllipsisIndex(lhs), shape.EllipsisIndex(rhs)
	if err := checkSingleEllipsis(lhs, li); err != nil {
		return alignment{}, err
	}
	if err := checkSingleEllipsis(rhs, ri); err != nil {
		return alignment{}, err
	}
	switch {
	case li < 0 && ri < 0:
		return alignFixed(lhs, rhs, broadcast)
	case ri < 0:
		return alignLhsEllipsis(lhs, li, rhs)
	case li < 0:
		return alignRhsEllipsis(lhs, rhs, ri)
	default:
		return alignEllipses(lhs, li, rhs, ri), nil
	}
}

func alignFixed(lhs, rhs []shape.Dim, broadcast bool) (alignment, error) {
	if len(lhs) != len(rhs) && !broadcast {
		return alignment{}, arityConflict(lhs, rhs, fmt.Sprintf("%d dimensions against %d", len(lhs), len(rhs)))
	}
	n := max(len(lhs), len(rhs))
	a := alignment{
		dims:     make([]dimPair, 0, n),
		template: make([]shape.Dim, 0, n),
	}
	unit := shape.Fixed{Size: 1}
	for i := range n {
		// dimensions are matched from the right
		l, r := i-(n-len(lhs)), i-(n-len(rhs))
		switch {
		case l < 0:
			a.dims = append(a.dims, dimPair{lhs: unit, rhs: rhs[r], pad: lhsPad})
			a.template = append(a.template, rhs[r])
		case r < 0:
			a.dims = append(a.dims, dimPair{lhs: lhs[l], rhs: unit, pad: rhsPad})
			a.template = append(a.template, unit)
		default:
			a.dims = append(a.dims, dimPair{lhs: lhs[l], rhs: rhs[r]})
			a.template = append(a.template, rhs[r])
		}
	}
	return a, nil
}

func alignLhsEllipsis(lhs []shape.Dim, li int, rhs []shape.Dim) (alignment, error) {
	prefix, ellipsis, suffix := splitAt(lhs, li)
	if len(prefix)+len(suffix) > len(rhs) {
		return alignment{}, arityConflict(lhs, rhs, fmt.Sprintf("%d anchored dimensions, %d available", len(prefix)+len(suffix), len(rhs)))
	}
	var a alignment
	a.dims = anchor(prefix, suffix, rhs[:len(prefix)], rhs[len(rhs)-len(suffix):])
	middle := rhs[len(prefix) : len(rhs)-len(suffix)]
	if ellipsis.Named() {
		a.spans = append(a.spans, spanPair{lhs: shape.Span{ellipsis}, rhs: slices.Clone(middle)})
	}
	a.template = slices.Clone(rhs)
	return a, nil
}

func alignRhsEllipsis(lhs, rhs []shape.Dim, ri int) (alignment, error) {
	prefix, ellipsis, suffix := splitAt(rhs, ri)
	if len(prefix)+len(suffix) > len(lhs) {
		return alignment{}, arityConflict(lhs, rhs, fmt.Sprintf("%d anchored dimensions, %d available", len(prefix)+len(suffix), len(lhs)))
	}
	var a alignment
	a.dims = anchor(lhs[:len(prefix)], lhs[len(lhs)-len(suffix):], prefix, suffix)
	middle := lhs[len(prefix) : len(lhs)-len(suffix)]
	a.template = append(a.template, prefix...)
	if ellipsis.Named() {
		a.spans = append(a.spans, spanPair{lhs: slices.Clone(middle), rhs: shape.Span{ellipsis}})
		a.template = append(a.template, ellipsis)
	} else {
		a.template = append(a.template, middle...)
	}
	a.template = append(a.template, suffix...)
	return a, nil
}

func alignEllipses(lhs []shape.Dim, li int, rhs []shape.Dim, ri int) alignment {
	lPrefix, lEllipsis, lSuffix := splitAt(lhs, li)
	rPrefix, rEllipsis, rSuffix := splitAt(rhs, ri)

	kp := min(len(lPrefix), len(rPrefix))
	ks := min(len(lSuffix), len(rSuffix))
	var a alignment
	a.dims = anchor(
		lPrefix[:kp], lSuffix[len(lSuffix)-ks:],
		rPrefix[:kp], rSuffix[len(rSuffix)-ks:],
	)

	// whatever could not be anchored is covered by the other side's ellipsis
	lMiddle := concat(lPrefix[kp:], []shape.Dim{lEllipsis}, lSuffix[:len(lSuffix)-ks])
	rMiddle := concat(rPrefix[kp:], []shape.Dim{rEllipsis}, rSuffix[:len(rSuffix)-ks])
	lExtra, rExtra := len(lMiddle) > 1, len(rMiddle) > 1

	var middle []shape.Dim
	switch {
	case !lExtra && !rExtra:
		// the lhs name wins, an anonymous side adopts the other's name
		merged := lEllipsis
		if !merged.Named() {
			merged = rEllipsis
		}
		if lEllipsis.Named() && rEllipsis.Named() && lEllipsis != rEllipsis {
			a.spans = append(a.spans, spanPair{lhs: shape.Span{lEllipsis}, rhs: shape.Span{rEllipsis}})
		}
		middle = []shape.Dim{merged}
	case !lExtra:
		if lEllipsis.Named() {
			a.spans = append(a.spans, spanPair{lhs: shape.Span{lEllipsis}, rhs: rMiddle})
		}
		middle = rMiddle
	case !rExtra:
		if rEllipsis.Named() {
			a.spans = append(a.spans, spanPair{lhs: lMiddle, rhs: shape.Span{rEllipsis}})
		}
		middle = lMiddle
	default:
		// both sides have extra dimensions around their ellipsis, their relative
		// arrangement is unknown until one of the ellipses is bound
		a.spans = append(a.spans, spanPair{lhs: lMiddle, rhs: rMiddle})
		middle = rMiddle
	}
	a.template = concat(rPrefix[:kp], middle, rSuffix[len(rSuffix)-ks:])
	return a
}

// anchor pairs lhs and rhs prefixes left-to-right and suffixes right-to-left
func anchor(lPrefix, lSuffix, rPrefix, rSuffix []shape.Dim) []dimPair {
	pairs := make([]dimPair, 0, len(lPrefix)+len(lSuffix))
	for i := range lPrefix {
		pairs = append(pairs, dimPair{lhs: lPrefix[i], rhs: rPrefix[i]})
	}
	for i := range lSuffix {
		pairs = append(pairs, dimPair{lhs: lSuffix[i], rhs: rSuffix[i]})
	}
	return pairs
}

func splitAt(dims []shape.Dim, i int) (prefix []shape.Dim, ellipsis shape.Ellipsis, suffix []shape.Dim) {
	return dims[:i], dims[i].(shape.Ellipsis), dims[i+1:]
}

func concat(parts ...[]shape.Dim) []shape.Dim {
	return slices.Concat(parts...)
}

func checkSingleEllipsis(dims []shape.Dim, first int) error {
	if first < 0 || shape.EllipsisIndex(dims[first+1:]) < 0 {
		return nil
	}
	return shapeerr.New(shapeerr.NewMalformedShape{Shape: shape.Span(dims).String(), Reason: "more than one ellipsis"})
}

func arityConflict(lhs, rhs []shape.Dim, reason string) error {
	return shapeerr.New(shapeerr.NewVariableArityConflict{
		First:  shape.Span(lhs).String(),
		Second: shape.Span(rhs).String(),
		Reason: reason,
	})
}
