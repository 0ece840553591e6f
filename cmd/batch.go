package cmd

import (
	"io"

	"github.com/cottand/datashape/parser"
	"github.com/cottand/datashape/unify"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Batch is a set of equations to be solved together, as read from a YAML file:
//
//	maxRounds: 16
//	equations:
//	  - lhs: "A, B, int32"
//	    rhs: "K, M, N, float32"
//	    solve: true
type Batch struct {
	MaxRounds int             `yaml:"maxRounds,omitempty"`
	Equations []BatchEquation `yaml:"equations"`
}

type BatchEquation struct {
	Lhs string `yaml:"lhs"`
	Rhs string `yaml:"rhs"`
	// Solve defaults to true when omitted
	Solve *bool `yaml:"solve,omitempty"`
}

func LoadBatch(r io.Reader) (*Batch, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var b Batch
	if err := decoder.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return &b, nil
		}
		return nil, errors.Wrap(err, "could not decode batch")
	}
	return &b, nil
}

// Parse turns every equation of the batch into its unify.Equation.
func (b *Batch) Parse() ([]unify.Equation, error) {
	ret := make([]unify.Equation, 0, len(b.Equations))
	for i, eq := range b.Equations {
		lhs, err := parser.Parse(eq.Lhs)
		if err != nil {
			return nil, errors.Wrapf(err, "equation %d", i)
		}
		rhs, err := parser.Parse(eq.Rhs)
		if err != nil {
			return nil, errors.Wrapf(err, "equation %d", i)
		}
		ret = append(ret, unify.Equation{Lhs: lhs, Rhs: rhs, Solve: eq.Solve == nil || *eq.Solve})
	}
	return ret, nil
}
