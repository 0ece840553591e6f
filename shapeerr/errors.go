// Package shapeerr holds the error kinds raised while validating and unifying datashapes.
package shapeerr

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame that raised them when printed
var enableDebugErrorPrinting = false

const enableDebugFullStacktrace bool = false

// EnableDebugPrinting makes FormatWithCode include where each error was raised.
func EnableDebugPrinting(enable bool) {
	enableDebugErrorPrinting = enable
}

type ErrCode int

const (
	None ErrCode = iota
	SizeConflict
	MeasureConflict
	MalformedShape
	VariableArityConflict
)

func (c ErrCode) String() string {
	switch c {
	case SizeConflict:
		return "size conflict"
	case MeasureConflict:
		return "measure conflict"
	case MalformedShape:
		return "malformed shape"
	case VariableArityConflict:
		return "variable arity conflict"
	default:
		return "unclassified"
	}
}

type Error interface {
	Error() string
	Code() ErrCode

	withStack([]byte) Error
	getStack() []byte
}

func FormatWithCode(e Error) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if lines := strings.Split(stack, "\n"); !enableDebugFullStacktrace && len(lines) > 6 {
			stack = strings.TrimSpace(lines[6])
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E Error](err E) Error {
	return err.withStack(debug.Stack())
}

// CodeOf returns the ErrCode of the first Error in err's chain, or None.
func CodeOf(err error) ErrCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return None
}

// Is reports whether err carries code.
func Is(err error, code ErrCode) bool {
	return err != nil && CodeOf(err) == code
}

type Unclassified struct {
	From  error
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Unwrap() error    { return e.From }
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewSizeConflict is raised when two concrete sizes that must agree do not, either directly
// or through the variable Var.
type NewSizeConflict struct {
	Var    string
	First  string
	Second string
	stack  []byte
}

func (e NewSizeConflict) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("size mismatch: '%s' cannot be both '%s' and '%s'", e.Var, e.First, e.Second)
	}
	return fmt.Sprintf("size mismatch: dimension '%s' is not compatible with '%s'", e.First, e.Second)
}
func (e NewSizeConflict) Code() ErrCode    { return SizeConflict }
func (e NewSizeConflict) getStack() []byte { return e.stack }
func (e NewSizeConflict) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewMeasureConflict is raised when two element types have no common promotion target.
type NewMeasureConflict struct {
	Var    string
	First  string
	Second string
	stack  []byte
}

func (e NewMeasureConflict) Error() string {
	if e.Var != "" {
		return fmt.Sprintf("measure mismatch: '%s' cannot be both '%s' and '%s'", e.Var, e.First, e.Second)
	}
	return fmt.Sprintf("measure mismatch: '%s' and '%s' have no common supertype", e.First, e.Second)
}
func (e NewMeasureConflict) Code() ErrCode    { return MeasureConflict }
func (e NewMeasureConflict) getStack() []byte { return e.stack }
func (e NewMeasureConflict) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

type NewMalformedShape struct {
	Shape  string
	Reason string
	stack  []byte
}

func (e NewMalformedShape) Error() string {
	if e.Shape == "" {
		return fmt.Sprintf("malformed shape: %s", e.Reason)
	}
	return fmt.Sprintf("malformed shape '%s': %s", e.Shape, e.Reason)
}
func (e NewMalformedShape) Code() ErrCode    { return MalformedShape }
func (e NewMalformedShape) getStack() []byte { return e.stack }
func (e NewMalformedShape) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewVariableArityConflict is raised when a variadic span cannot be matched, because the
// fixed dimensions around it need more positions than First or Second provide.
type NewVariableArityConflict struct {
	Var    string
	First  string
	Second string
	Reason string
	stack  []byte
}

func (e NewVariableArityConflict) Error() string {
	msg := fmt.Sprintf("arity mismatch: '%s' cannot match '%s'", e.First, e.Second)
	if e.Var != "" {
		msg = fmt.Sprintf("arity mismatch: '%s' cannot be both '%s' and '%s'", e.Var, e.First, e.Second)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
func (e NewVariableArityConflict) Code() ErrCode    { return VariableArityConflict }
func (e NewVariableArityConflict) getStack() []byte { return e.stack }
func (e NewVariableArityConflict) withStack(stack []byte) Error {
	e.stack = stack
	return e
}
