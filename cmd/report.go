package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cottand/datashape/unify"
	"github.com/pkg/errors"
	"github.com/sanity-io/litter"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
	formatDump = "dump"
)

var formats = []string{formatText, formatYAML, formatDump}

// report is the printable form of a unify.Result
type report struct {
	Resolved []string          `yaml:"resolved,omitempty"`
	Residual []residualReport  `yaml:"residual,omitempty"`
	Bindings map[string]string `yaml:"bindings,omitempty"`
}

type residualReport struct {
	Equation   int    `yaml:"equation"`
	Constraint string `yaml:"constraint"`
}

func newReport(res *unify.Result) report {
	var r report
	for _, s := range res.Resolved {
		r.Resolved = append(r.Resolved, s.String())
	}
	for _, c := range res.Residual {
		r.Residual = append(r.Residual, residualReport{Equation: c.Equation, Constraint: c.String()})
	}
	if len(res.Bindings) > 0 {
		r.Bindings = make(map[string]string, len(res.Bindings))
	}
	for _, b := range res.Bindings {
		r.Bindings[b.Name] = b.Value.String()
	}
	return r
}

func writeResult(w io.Writer, format string, res *unify.Result) error {
	switch format {
	case formatText:
		_, err := io.WriteString(w, textReport(res))
		return err
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(newReport(res)); err != nil {
			return errors.Wrap(err, "could not encode result")
		}
		return encoder.Close()
	case formatDump:
		_, err := fmt.Fprintln(w, litter.Sdump(res))
		return err
	default:
		return fmt.Errorf("unknown format '%s', expected one of %s", format, strings.Join(formats, ", "))
	}
}

func textReport(res *unify.Result) string {
	sb := &strings.Builder{}
	if len(res.Resolved) > 0 {
		sb.WriteString("resolved:\n")
		for _, s := range res.Resolved {
			fmt.Fprintf(sb, "  %s\n", s)
		}
	}
	if len(res.Residual) > 0 {
		sb.WriteString("residual:\n")
		for _, c := range res.Residual {
			fmt.Fprintf(sb, "  %s (equation %d)\n", c, c.Equation)
		}
	}
	if len(res.Bindings) > 0 {
		sb.WriteString("bindings:\n")
		for _, b := range res.Bindings {
			fmt.Fprintf(sb, "  %s\n", b)
		}
	}
	return sb.String()
}
