// Package unify decides whether datashapes can be made compatible.
//
// A batch of equations is solved jointly: every equation reads "lhs coerces to rhs", where
// lhs dimensions may broadcast into rhs ones and measures promote to a common supertype.
// Variables with the same name are the same unknown across the whole batch.
package unify

import (
	"fmt"
	"log/slog"

	"github.com/cottand/datashape/internal/log"
	"github.com/cottand/datashape/shape"
	"github.com/cottand/datashape/shapeerr"
	"github.com/hashicorp/go-set/v3"
)

var logger = log.DefaultLogger.With("section", "unify")

// Equation asks for Lhs to be made compatible with Rhs.
// When Solve is set the resolved shape of the equation is part of the Result.
type Equation struct {
	Lhs, Rhs shape.Shape
	Solve    bool
}

func (e Equation) String() string {
	return fmt.Sprintf("%s -> %s", e.Lhs, e.Rhs)
}

// Constraint is a relation Lhs <= Rhs left undecided because a variable in it is still
// free. Lhs and Rhs are both dimensions, both measures, or both spans.
type Constraint struct {
	// Equation is the index of the equation the constraint comes from
	Equation int
	Lhs, Rhs shape.Term
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s <= %s", c.Lhs, c.Rhs)
}

// Result is the outcome of a successful Unify.
type Result struct {
	// Resolved holds one shape per equation with Solve set, in input order
	Resolved []shape.Shape
	// Residual holds the constraints no equation could decide
	Residual []Constraint
	Bindings []Binding
}

type Settings struct {
	// MaxRounds bounds how many times the solver goes over the batch.
	// Zero means the default.
	MaxRounds int
	Logger    *slog.Logger
}

// UnifyFlags solves pairs jointly and returns the resolved shape of every pair whose solve
// flag is set, followed by the residual constraints.
func UnifyFlags(pairs [][2]shape.Shape, solve []bool) ([]shape.Shape, []Constraint, error) {
	if len(pairs) != len(solve) {
		return nil, nil, fmt.Errorf("got %d equations but %d solve flags", len(pairs), len(solve))
	}
	equations := make([]Equation, len(pairs))
	for i, p := range pairs {
		equations[i] = Equation{Lhs: p[0], Rhs: p[1], Solve: solve[i]}
	}
	res, err := Unify(equations, Settings{})
	if err != nil {
		return nil, nil, err
	}
	return res.Resolved, res.Residual, nil
}

// Unify solves equations jointly.
//
// The first conflict aborts the whole batch. Variables that are merely undetermined are
// not an error: they stay free in the resolved shapes and are reported as residual
// constraints.
func Unify(equations []Equation, settings Settings) (*Result, error) {
	if err := validate(equations); err != nil {
		return nil, err
	}
	s := newSolver(equations, settings)
	s.logger.Debug("unifying batch", "equations", len(equations))

	deferred, err := s.solve()
	if err != nil {
		return nil, err
	}

	res := &Result{
		Residual: s.residuals(deferred),
		Bindings: s.env.Bindings(),
	}
	for _, eq := range equations {
		if !eq.Solve {
			continue
		}
		resolved, err := s.resolve(eq)
		if err != nil {
			return nil, err
		}
		res.Resolved = append(res.Resolved, resolved)
	}
	return res, nil
}

// resolve builds the shape an equation unifies to, laid out like its rhs
func (s *solver) resolve(eq Equation) (shape.Shape, error) {
	a, err := align(s.env.SubstituteDims(eq.Lhs.Dims), s.env.SubstituteDims(eq.Rhs.Dims), true)
	if err != nil {
		return shape.Shape{}, err
	}
	lm, rm := s.env.resolveMeasure(eq.Lhs.Measure), s.env.resolveMeasure(eq.Rhs.Measure)
	m, resolved, err := Promote(lm, rm)
	if err != nil {
		return shape.Shape{}, err
	}
	if !resolved {
		m = rm
	}
	ret := shape.Shape{Dims: s.env.SubstituteDims(a.template), Measure: m}
	s.logger.Debug("resolved equation", "lhs", eq.Lhs, "rhs", eq.Rhs, "shape", ret)
	return ret, nil
}

func (s *solver) residuals(deferred []item) []Constraint {
	seen := set.New[string](len(deferred))
	var ret []Constraint
	for _, it := range deferred {
		c := Constraint{Equation: it.eq}
		switch it.kind {
		case dimItem:
			c.Lhs, c.Rhs = s.env.resolveDim(it.dim.lhs), s.env.resolveDim(it.dim.rhs)
		case measureItem:
			c.Lhs, c.Rhs = s.env.resolveMeasure(it.measure.Fst), s.env.resolveMeasure(it.measure.Snd)
		case spanItem:
			c.Lhs, c.Rhs = shape.Span(s.env.SubstituteDims(it.span.lhs)), shape.Span(s.env.SubstituteDims(it.span.rhs))
		}
		if !seen.Insert(fmt.Sprintf("%d|%v", c.Equation, c)) {
			continue
		}
		ret = append(ret, c)
	}
	return ret
}

type role int

const (
	dimRole role = iota + 1
	measureRole
	spanRole
)

func (r role) String() string {
	switch r {
	case dimRole:
		return "a dimension"
	case measureRole:
		return "a measure"
	default:
		return "an ellipsis"
	}
}

// validate checks every shape and that each name plays a single role across the batch
func validate(equations []Equation) error {
	roles := make(map[string]role)
	claim := func(s shape.Shape, name string, r role) error {
		if existing, ok := roles[name]; ok && existing != r {
			return shapeerr.New(shapeerr.NewMalformedShape{
				Shape:  s.String(),
				Reason: fmt.Sprintf("'%s' is used both as %s and as %s", name, existing, r),
			})
		}
		roles[name] = r
		return nil
	}
	for _, eq := range equations {
		for _, s := range []shape.Shape{eq.Lhs, eq.Rhs} {
			if err := shape.Validate(s); err != nil {
				return err
			}
			for _, d := range s.Dims {
				var err error
				switch d := d.(type) {
				case shape.Var:
					err = claim(s, d.Name, dimRole)
				case shape.Ellipsis:
					if d.Named() {
						err = claim(s, d.Name, spanRole)
					}
				}
				if err != nil {
					return err
				}
			}
			if v, ok := s.Measure.(shape.Var); ok {
				if err := claim(s, v.Name, measureRole); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
