package shapeerr

import (
	"fmt"
	"log/slog"
	"strings"
)

// Errors accumulates independent errors, such as every malformed shape of a batch.
type Errors struct {
	errs []Error
}

func (r *Errors) With(err ...Error) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Merge(err *Errors) *Errors {
	if r == nil {
		return err
	}
	if err == nil {
		return r
	}
	if len(err.errs) == 0 {
		return r
	}
	return r.With(err.errs...)
}

func (r *Errors) Errors() []Error {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	if r == nil {
		return false
	}
	return len(r.errs) > 0
}

// First returns the earliest accumulated error, or nil.
func (r *Errors) First() error {
	if !r.HasError() {
		return nil
	}
	return r.errs[0]
}

func (r *Errors) Error() string {
	if !r.HasError() {
		return "no errors"
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "%d error(s):", len(r.errs))
	for _, err := range r.errs {
		sb.WriteString("\n\t")
		sb.WriteString(FormatWithCode(err))
	}
	return sb.String()
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.Errors() {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
