// Package lattice defines the scalar element types a datashape can end in, together with
// the partial order used to promote two of them to a common supertype.
package lattice

import (
	"sort"

	"github.com/xtgo/set"
)

// Type is a concrete scalar type tag.
//
// Declaration order is a topological order of the promotion lattice: every type is declared
// before all of its supertypes. Join relies on this.
type Type int

const (
	Bool Type = iota
	Int8
	Uint8
	Int16
	Uint16
	Float16
	Int32
	Uint32
	Float32
	Int64
	Uint64
	Float64
	Complex64
	Complex128
	String

	numTypes
)

var names = [numTypes]string{
	Bool:       "bool",
	Int8:       "int8",
	Uint8:      "uint8",
	Int16:      "int16",
	Uint16:     "uint16",
	Float16:    "float16",
	Int32:      "int32",
	Uint32:     "uint32",
	Float32:    "float32",
	Int64:      "int64",
	Uint64:     "uint64",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
	String:     "string",
}

// supertypes holds the direct edges of the lattice
var supertypes = [numTypes][]Type{
	Bool:       {Int8, Uint8, Float16},
	Int8:       {Int16},
	Uint8:      {Int16, Uint16},
	Int16:      {Int32},
	Uint16:     {Int32, Uint32},
	Float16:    {Float32},
	Int32:      {Int64, Float32},
	Uint32:     {Int64, Uint64},
	Float32:    {Float64, Complex64},
	Int64:      {Float64},
	Uint64:     {Float64},
	Float64:    {Complex128},
	Complex64:  {Complex128},
	Complex128: nil,
	String:     nil,
}

// ancestors[t] is the sorted reflexive-transitive closure of supertypes[t]
var ancestors [numTypes][]int

func init() {
	// walk from the top of the lattice down so that every supertype is already closed
	for t := numTypes - 1; t >= 0; t-- {
		closure := []int{int(t)}
		for _, sup := range supertypes[t] {
			closure = append(closure, ancestors[sup]...)
		}
		sort.Ints(closure)
		n := set.Uniq(sort.IntSlice(closure))
		ancestors[t] = closure[:n]
	}
}

func (t Type) String() string {
	if !t.Valid() {
		return "invalid"
	}
	return names[t]
}

func (t Type) Valid() bool {
	return t >= 0 && t < numTypes
}

// Lookup returns the Type called name, if there is one.
func Lookup(name string) (Type, bool) {
	for t, n := range names {
		if n == name {
			return Type(t), true
		}
	}
	return 0, false
}

// All returns every Type, in lattice order.
func All() []Type {
	all := make([]Type, numTypes)
	for i := range all {
		all[i] = Type(i)
	}
	return all
}

// Less reports whether a promotes to b. Every type promotes to itself.
func Less(a, b Type) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	anc := ancestors[a]
	i := sort.SearchInts(anc, int(b))
	return i < len(anc) && anc[i] == int(b)
}

// Join returns the least upper bound of a and b, or false when they have no common
// supertype or no unique least one.
func Join(a, b Type) (Type, bool) {
	if !a.Valid() || !b.Valid() {
		return 0, false
	}
	if a == b {
		return a, true
	}
	left, right := ancestors[a], ancestors[b]
	data := make([]int, 0, len(left)+len(right))
	data = append(data, left...)
	data = append(data, right...)
	n := set.Inter(sort.IntSlice(data), len(left))
	common := data[:n]
	if len(common) == 0 {
		return 0, false
	}
	// common is sorted in lattice order, so only its first element can be the least
	least := Type(common[0])
	for _, c := range common[1:] {
		if !Less(least, Type(c)) {
			return 0, false
		}
	}
	return least, true
}
