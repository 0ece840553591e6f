package unify

import (
	"testing"

	"github.com/cottand/datashape/parser"
	"github.com/cottand/datashape/shape"
	"github.com/cottand/datashape/shapeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dims(s string) []shape.Dim {
	return parser.MustParse(s + ", int32").Dims
}

func pairStrings(a alignment) []string {
	var ret []string
	for _, p := range a.dims {
		if p.pad == rhsPad {
			continue
		}
		ret = append(ret, shape.Span{p.lhs, p.rhs}.String())
	}
	for _, p := range a.spans {
		ret = append(ret, p.lhs.String()+" <= "+p.rhs.String())
	}
	return ret
}

func TestAlign(t *testing.T) {
	cases := map[string]struct {
		lhs, rhs string
		pairs    []string
		template string
	}{
		"same rank": {
			lhs: "A, 3", rhs: "X, Y",
			pairs:    []string{"[A, X]", "[3, Y]"},
			template: "[X, Y]",
		},
		"lhs padded": {
			lhs: "A", rhs: "X, Y",
			pairs:    []string{"[1, X]", "[A, Y]"},
			template: "[X, Y]",
		},
		"rhs padded": {
			lhs: "A, B", rhs: "Y",
			pairs:    []string{"[B, Y]"},
			template: "[1, Y]",
		},
		"lhs ellipsis": {
			lhs: "A, E..., B", rhs: "1, 2, 3, 4",
			pairs:    []string{"[A, 1]", "[B, 4]", "[E...] <= [2, 3]"},
			template: "[1, 2, 3, 4]",
		},
		"rhs anonymous ellipsis": {
			lhs: "1, 2, 3, 4", rhs: "X, ..., Y",
			pairs:    []string{"[1, X]", "[4, Y]"},
			template: "[X, 2, 3, Y]",
		},
		"rhs named ellipsis": {
			lhs: "1, 2, 3", rhs: "R..., Y",
			pairs:    []string{"[3, Y]", "[1, 2] <= [R...]"},
			template: "[R..., Y]",
		},
		"both ellipses, rhs extras": {
			lhs: "A, ..., B", rhs: "M, N, ..., S, T",
			pairs:    []string{"[A, M]", "[B, T]"},
			template: "[M, N, ..., S, T]",
		},
		"both ellipses, lhs extras": {
			lhs: "A, B, ..., C", rhs: "M, R..., T",
			pairs:    []string{"[A, M]", "[C, T]", "[B, ...] <= [R...]"},
			template: "[M, B, ..., T]",
		},
		"both ellipses, anonymous lhs adopts rhs name": {
			lhs: "..., 3", rhs: "R..., 3",
			pairs:    []string{"[3, 3]"},
			template: "[R..., 3]",
		},
		"both ellipses, extras on both sides": {
			lhs: "L..., A", rhs: "M, R...",
			pairs:    []string{"[L..., A] <= [M, R...]"},
			template: "[M, R...]",
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			a, err := align(dims(c.lhs), dims(c.rhs), true)
			require.NoError(t, err)
			assert.Equal(t, c.pairs, pairStrings(a))
			assert.Equal(t, c.template, shape.Span(a.template).String())
		})
	}
}

func TestAlignArity(t *testing.T) {
	_, err := align(dims("A, B"), dims("X, Y, Z"), false)
	assert.True(t, shapeerr.Is(err, shapeerr.VariableArityConflict))

	_, err = align(dims("A, ..., B, C"), dims("M, N"), true)
	assert.True(t, shapeerr.Is(err, shapeerr.VariableArityConflict))
	assert.Contains(t, err.Error(), "3 anchored dimensions, 2 available")

	_, err = align(dims("M"), dims("X, ..., Y"), true)
	assert.True(t, shapeerr.Is(err, shapeerr.VariableArityConflict))
}
