package unify

import (
	"log/slog"
	"slices"

	"github.com/cottand/datashape/lattice"
	"github.com/cottand/datashape/shape"
	"github.com/cottand/datashape/shapeerr"
	"github.com/cottand/datashape/util"
	"github.com/hashicorp/go-set/v3"
)

const defaultMaxRounds = 64

type itemKind int

const (
	spanItem itemKind = iota
	dimItem
	measureItem
)

// item is a unit of work for the solver, originating from equation eq.
type item struct {
	kind itemKind
	eq   int

	span      spanPair
	broadcast bool

	dim dimPair

	measure util.Pair[shape.Measure, shape.Measure]
}

// solver holds the state of one batch: the equations and the environment they share.
type solver struct {
	equations []Equation
	env       *Env
	logger    *slog.Logger
	maxRounds int

	rounds int
}

func newSolver(equations []Equation, settings Settings) *solver {
	s := &solver{
		equations: equations,
		env:       NewEnv(),
		logger:    settings.Logger,
		maxRounds: settings.MaxRounds,
	}
	if s.logger == nil {
		s.logger = logger
	}
	if s.maxRounds <= 0 {
		s.maxRounds = defaultMaxRounds
	}
	return s
}

// solve runs rounds over every equation until one produces no new binding and defaulting
// has nothing left to decide. It returns the constraints that are still undecided.
func (s *solver) solve() ([]item, error) {
	for s.rounds < s.maxRounds {
		s.rounds++
		before := s.env.Len()
		deferred, err := s.round()
		if err != nil {
			return nil, err
		}
		if s.env.Len() != before {
			continue
		}
		if err := s.applyDefaults(deferred); err != nil {
			return nil, err
		}
		if s.env.Len() != before {
			continue
		}
		s.logger.Debug("solver converged", "rounds", s.rounds, "bindings", s.env.Len(), "undecided", len(deferred))
		return deferred, nil
	}
	s.logger.Warn("solver stopped before converging", "rounds", s.rounds)
	return s.round()
}

// round processes every equation once against the current environment.
func (s *solver) round() ([]item, error) {
	seeds := make([]item, 0, 2*len(s.equations))
	for i, eq := range s.equations {
		seeds = append(seeds,
			item{kind: spanItem, eq: i, span: spanPair{lhs: eq.Lhs.Dims, rhs: eq.Rhs.Dims}, broadcast: true},
			item{kind: measureItem, eq: i, measure: util.NewPair(eq.Lhs.Measure, eq.Rhs.Measure)},
		)
	}
	var work util.Stack[item]
	work.PushOrdered(seeds)

	var deferred []item
	for {
		it, ok := work.Pop()
		if !ok {
			break
		}
		children, isDeferred, err := s.step(it)
		if err != nil {
			s.logger.Debug("conflict", "equation", it.eq, "err", err)
			return nil, err
		}
		if isDeferred {
			deferred = append(deferred, it)
		}
		work.PushOrdered(children)
	}
	return deferred, nil
}

func (s *solver) step(it item) (children []item, deferred bool, err error) {
	switch it.kind {
	case spanItem:
		return s.solveSpan(it)
	case dimItem:
		deferred, err = s.solveDim(it.dim)
		return nil, deferred, err
	case measureItem:
		deferred, err = s.solveMeasure(it.measure.Unpack())
		return nil, deferred, err
	}
	panic("unknown solver item")
}

func (s *solver) solveSpan(it item) ([]item, bool, error) {
	l := s.env.SubstituteDims(it.span.lhs)
	r := s.env.SubstituteDims(it.span.rhs)
	if shape.DimsEqual(l, r) {
		return nil, false, nil
	}
	// a lone named ellipsis takes the whole other side as its value
	if e, ok := loneEllipsis(r); ok {
		return nil, false, s.bindSpan(e, l)
	}
	if e, ok := loneEllipsis(l); ok {
		return nil, false, s.bindSpan(e, r)
	}

	a, err := align(l, r, it.broadcast)
	if err != nil {
		return nil, false, err
	}
	if len(a.dims) == 0 && len(a.spans) == 1 && shape.DimsEqual(a.spans[0].lhs, l) && shape.DimsEqual(a.spans[0].rhs, r) {
		// nothing left to anchor on either side
		return nil, true, nil
	}
	children := make([]item, 0, len(a.dims)+len(a.spans))
	for _, d := range a.dims {
		children = append(children, item{kind: dimItem, eq: it.eq, dim: d})
	}
	for _, sp := range a.spans {
		children = append(children, item{kind: spanItem, eq: it.eq, span: sp})
	}
	return children, false, nil
}

func (s *solver) bindSpan(e shape.Ellipsis, value []shape.Dim) error {
	s.logger.Debug("binding span", "ellipsis", e, "span", shape.Span(value))
	return s.env.Bind(e.Name, shape.Span(slices.Clone(value)))
}

// solveDim applies the dimension rules to lhs <= rhs. It binds what is determined, fails
// on conflicting sizes and defers everything that still depends on a free variable.
func (s *solver) solveDim(p dimPair) (deferred bool, err error) {
	if p.pad == rhsPad {
		return false, nil
	}
	l, r := s.env.resolveDim(p.lhs), s.env.resolveDim(p.rhs)
	if shape.Equal(l, r) {
		return false, nil
	}
	switch l := l.(type) {
	case shape.Fixed:
		switch r := r.(type) {
		case shape.Fixed:
			if l.IsUnit() {
				return false, nil
			}
			return false, shapeerr.New(shapeerr.NewSizeConflict{Var: varName(p.rhs, p.lhs), First: r.String(), Second: l.String()})
		case shape.Var:
			if l.IsUnit() {
				// 1 broadcasts to anything, r is only decided by defaulting
				return true, nil
			}
			return false, s.bind(r.Name, l)
		}
	case shape.Var:
		switch r := r.(type) {
		case shape.Fixed:
			if r.IsUnit() {
				// only 1 broadcasts to 1
				return false, s.bind(l.Name, r)
			}
			// l may be 1 or r
			return true, nil
		case shape.Var:
			return true, nil
		}
	}
	return false, shapeerr.New(shapeerr.NewMalformedShape{Shape: shape.Span{p.lhs, p.rhs}.String(), Reason: "expected two dimensions"})
}

func (s *solver) solveMeasure(lhs, rhs shape.Measure) (deferred bool, err error) {
	l, r := s.env.resolveMeasure(lhs), s.env.resolveMeasure(rhs)
	_, resolved, err := Promote(l, r)
	if err != nil || resolved {
		return false, err
	}
	lv, lIsVar := l.(shape.Var)
	rv, rIsVar := r.(shape.Var)
	if lIsVar && rIsVar {
		// promotion is symmetric, so two measure variables end up the same
		return false, s.bind(rv.Name, lv)
	}
	return true, nil
}

func (s *solver) bind(name string, value shape.Term) error {
	s.logger.Debug("binding", "var", name, "value", value)
	return s.env.Bind(name, value)
}

// applyDefaults decides the variables that no equation pins down but that have only one
// sensible value: a dimension whose only lower bounds are units is 1, one whose lower
// bounds name a single variable is that variable, and a measure is the join of the
// scalars it must promote from. A dimension that must itself broadcast to a fixed size
// other than 1 is left alone.
func (s *solver) applyDefaults(deferred []item) error {
	dimBounds := newBounds[shape.Dim]()
	measureBounds := newBounds[lattice.Type]()
	// variables that must also broadcast to a size other than 1, so that both 1 and
	// that size are still possible
	capped := set.New[string](0)
	for _, it := range deferred {
		switch it.kind {
		case dimItem:
			l, r := s.env.resolveDim(it.dim.lhs), s.env.resolveDim(it.dim.rhs)
			if x, ok := r.(shape.Var); ok {
				dimBounds.add(x.Name, l)
			}
			if x, ok := l.(shape.Var); ok {
				if n, ok := r.(shape.Fixed); ok && !n.IsUnit() {
					capped.Insert(x.Name)
				}
			}
		case measureItem:
			lm, rm := it.measure.Unpack()
			l, r := s.env.resolveMeasure(lm), s.env.resolveMeasure(rm)
			if x, ok := l.(shape.Var); ok {
				if scalar, ok := r.(shape.Scalar); ok {
					measureBounds.add(x.Name, scalar.Type)
				}
			}
			if x, ok := r.(shape.Var); ok {
				if scalar, ok := l.(shape.Scalar); ok {
					measureBounds.add(x.Name, scalar.Type)
				}
			}
		}
	}

	for _, name := range dimBounds.order {
		if capped.Contains(name) {
			s.logger.Debug("not defaulting, size is ambiguous", "var", name)
			continue
		}
		if err := s.defaultDim(name, dimBounds.of[name]); err != nil {
			return err
		}
	}
	for _, name := range measureBounds.order {
		if err := s.defaultMeasure(name, measureBounds.of[name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *solver) defaultDim(name string, lower []shape.Dim) error {
	x := shape.Var{Name: name}
	if !shape.Equal(s.env.Resolve(x), x) {
		return nil
	}
	var candidates []shape.Var
	for _, bound := range lower {
		switch b := s.env.resolveDim(bound).(type) {
		case shape.Fixed:
			if !b.IsUnit() {
				// decided by the next round
				return nil
			}
		case shape.Var:
			if b != x && !slices.Contains(candidates, b) {
				candidates = append(candidates, b)
			}
		}
	}
	switch len(candidates) {
	case 0:
		s.logger.Debug("defaulting to unit", "var", x)
		return s.bind(name, shape.Fixed{Size: 1})
	case 1:
		s.logger.Debug("defaulting to lower bound", "var", x, "bound", candidates[0])
		return s.bind(name, candidates[0])
	default:
		return nil
	}
}

func (s *solver) defaultMeasure(name string, lower []lattice.Type) error {
	x := shape.Var{Name: name}
	if !shape.Equal(s.env.Resolve(x), x) || len(lower) == 0 {
		return nil
	}
	join := lower[0]
	for _, t := range lower[1:] {
		next, ok := lattice.Join(join, t)
		if !ok {
			return shapeerr.New(shapeerr.NewMeasureConflict{Var: name, First: join.String(), Second: t.String()})
		}
		join = next
	}
	s.logger.Debug("defaulting measure to join", "var", x, "join", join)
	return s.bind(name, shape.Scalar{Type: join})
}

// bounds collects lower bounds per variable, remembering the order variables were seen in
type bounds[T any] struct {
	order []string
	of    map[string][]T
}

func newBounds[T any]() *bounds[T] {
	return &bounds[T]{of: make(map[string][]T)}
}

func (b *bounds[T]) add(name string, bound T) {
	if _, seen := b.of[name]; !seen {
		b.order = append(b.order, name)
	}
	b.of[name] = append(b.of[name], bound)
}

func loneEllipsis(dims []shape.Dim) (shape.Ellipsis, bool) {
	if len(dims) != 1 {
		return shape.Ellipsis{}, false
	}
	e, ok := dims[0].(shape.Ellipsis)
	return e, ok && e.Named()
}

// varName returns the name of the first variable among terms, or ""
func varName(terms ...shape.Dim) string {
	for _, t := range terms {
		if v, ok := t.(shape.Var); ok {
			return v.Name
		}
	}
	return ""
}
