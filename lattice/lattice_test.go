package lattice

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoin(t *testing.T) {
	cases := []struct {
		a, b     Type
		expected Type
		ok       bool
	}{
		{Int32, Int32, Int32, true},
		{Int16, Int32, Int32, true},
		{Int32, Float32, Float32, true},
		{Int16, Float32, Float32, true},
		{Int8, Uint8, Int16, true},
		{Int8, Uint16, Int32, true},
		{Int64, Uint64, Float64, true},
		{Int64, Float32, Float64, true},
		{Complex64, Int64, Complex128, true},
		{Float16, Int16, Float32, true},
		{Bool, Complex128, Complex128, true},
		{String, Int32, 0, false},
		{String, Bool, 0, false},
		{String, String, String, true},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%v|%v", c.a, c.b), func(t *testing.T) {
			got, ok := Join(c.a, c.b)
			assert.Equal(t, c.ok, ok)
			if c.ok {
				assert.Equal(t, c.expected, got)
			}
		})
	}
}

func TestJoinIsSymmetricAndAnUpperBound(t *testing.T) {
	for _, a := range All() {
		for _, b := range All() {
			ab, okAB := Join(a, b)
			ba, okBA := Join(b, a)
			assert.Equal(t, okAB, okBA, "%v, %v", a, b)
			assert.Equal(t, ab, ba, "%v, %v", a, b)
			if !okAB {
				continue
			}
			assert.True(t, Less(a, ab), "%v should promote to %v", a, ab)
			assert.True(t, Less(b, ab), "%v should promote to %v", b, ab)
		}
	}
}

func TestLess(t *testing.T) {
	assert.True(t, Less(Int16, Int32))
	assert.True(t, Less(Int16, Float64))
	assert.True(t, Less(Float32, Float32))
	assert.False(t, Less(Float32, Int32))
	assert.False(t, Less(Int64, Uint64))
	assert.False(t, Less(Bool, String))
}

func TestLookup(t *testing.T) {
	for _, typ := range All() {
		got, ok := Lookup(typ.String())
		assert.True(t, ok)
		assert.Equal(t, typ, got)
	}
	_, ok := Lookup("float128")
	assert.False(t, ok)
	assert.Equal(t, "invalid", Type(-1).String())
}
