// Package parser turns the textual datashape syntax into shape.Shape values.
//
// A datashape is a comma separated list of terms, the last of which is the measure:
//
//	10, A, ..., Batch..., float32
//
// Integers are fixed sizes, identifiers are variables (or scalar types when in measure
// position), `...` is an anonymous ellipsis and `Name...` a named one.
package parser

import (
	"strconv"
	"strings"

	"github.com/cottand/datashape/internal/log"
	"github.com/cottand/datashape/lattice"
	"github.com/cottand/datashape/shape"
	"github.com/pkg/errors"
)

var logger = log.DefaultLogger.With("section", "parser")

const (
	ellipsisToken = "..."
	arrowToken    = "->"
)

// Parse parses a single datashape. The result satisfies shape.Validate.
func Parse(data string) (shape.Shape, error) {
	src := strings.TrimSpace(data)
	if src == "" {
		return shape.Shape{}, newSyntax(data, "empty datashape")
	}
	parts := strings.Split(src, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var s shape.Shape
	for i, part := range parts[:len(parts)-1] {
		d, err := parseDim(data, part, i)
		if err != nil {
			return shape.Shape{}, err
		}
		s.Dims = append(s.Dims, d)
	}
	m, err := parseMeasure(data, parts[len(parts)-1])
	if err != nil {
		return shape.Shape{}, err
	}
	s.Measure = m

	if err := shape.Validate(s); err != nil {
		return shape.Shape{}, err
	}
	logger.Debug("parsed datashape", "input", data, "shape", s)
	return s, nil
}

// MustParse is like Parse but panics on malformed input. Meant for tests and literals.
func MustParse(data string) shape.Shape {
	s, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseEquation parses `lhs -> rhs`, where lhs is the shape that coerces to rhs.
func ParseEquation(data string) (lhs, rhs shape.Shape, err error) {
	left, right, found := strings.Cut(data, arrowToken)
	if !found {
		return lhs, rhs, newSyntax(data, "expected an equation of the form 'lhs -> rhs'")
	}
	if lhs, err = Parse(left); err != nil {
		return lhs, rhs, errors.Wrap(err, "left-hand side")
	}
	if rhs, err = Parse(right); err != nil {
		return lhs, rhs, errors.Wrap(err, "right-hand side")
	}
	return lhs, rhs, nil
}

func parseDim(src, term string, index int) (shape.Dim, error) {
	switch {
	case term == "":
		return nil, newSyntax(src, "empty dimension at position "+strconv.Itoa(index))
	case term == ellipsisToken:
		return shape.Ellipsis{}, nil
	case strings.HasSuffix(term, ellipsisToken):
		name := strings.TrimSuffix(term, ellipsisToken)
		if !isIdent(name) {
			return nil, newSyntax(src, "invalid ellipsis name '"+name+"'")
		}
		return shape.Ellipsis{Name: name}, nil
	case isDigits(term):
		size, err := strconv.Atoi(term)
		if err != nil {
			return nil, newSyntax(src, errors.Wrapf(err, "invalid size '%s'", term).Error())
		}
		return shape.Fixed{Size: size}, nil
	case isIdent(term):
		if _, ok := lattice.Lookup(term); ok {
			return nil, newSyntax(src, "scalar type '"+term+"' can only be used as the measure")
		}
		return shape.Var{Name: term}, nil
	default:
		return nil, newSyntax(src, "unexpected dimension '"+term+"'")
	}
}

func parseMeasure(src, term string) (shape.Measure, error) {
	switch {
	case term == "":
		return nil, newSyntax(src, "missing measure")
	case isIdent(term):
		if typ, ok := lattice.Lookup(term); ok {
			return shape.Scalar{Type: typ}, nil
		}
		return shape.Var{Name: term}, nil
	default:
		return nil, newSyntax(src, "expected a measure as last term, found '"+term+"'")
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
