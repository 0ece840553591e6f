package shapeerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	err := New(NewSizeConflict{Var: "T", First: "10", Second: "11"})
	assert.Equal(t, SizeConflict, CodeOf(err))
	assert.True(t, Is(err, SizeConflict))
	assert.False(t, Is(err, MeasureConflict))

	wrapped := fmt.Errorf("while unifying: %w", err)
	assert.True(t, Is(wrapped, SizeConflict))

	assert.Equal(t, None, CodeOf(fmt.Errorf("plain")))
	assert.False(t, Is(nil, None))
}

func TestMessages(t *testing.T) {
	cases := map[string]struct {
		err      Error
		expected string
	}{
		"size through variable": {
			err:      NewSizeConflict{Var: "T", First: "10", Second: "11"},
			expected: "size mismatch: 'T' cannot be both '10' and '11'",
		},
		"size direct": {
			err:      NewSizeConflict{First: "3", Second: "4"},
			expected: "size mismatch: dimension '3' is not compatible with '4'",
		},
		"measure": {
			err:      NewMeasureConflict{First: "string", Second: "int32"},
			expected: "measure mismatch: 'string' and 'int32' have no common supertype",
		},
		"malformed": {
			err:      NewMalformedShape{Shape: "..., ..., int32", Reason: "more than one ellipsis"},
			expected: "malformed shape '..., ..., int32': more than one ellipsis",
		},
		"arity": {
			err:      NewVariableArityConflict{First: "A, ..., B, C", Second: "M, N", Reason: "3 anchored dimensions, 2 available"},
			expected: "arity mismatch: 'A, ..., B, C' cannot match 'M, N': 3 anchored dimensions, 2 available",
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.expected, c.err.Error())
			assert.Contains(t, FormatWithCode(New(c.err)), fmt.Sprintf("(E%03d)", c.err.Code()))
		})
	}
}

func TestErrors(t *testing.T) {
	var errs *Errors
	assert.False(t, errs.HasError())
	assert.Nil(t, errs.First())

	errs = errs.With(New(NewMalformedShape{Reason: "missing measure"}))
	errs = errs.Merge((&Errors{}).With(New(NewMalformedShape{Reason: "negative size -1"})))
	assert.True(t, errs.HasError())
	assert.Len(t, errs.Errors(), 2)
	assert.True(t, Is(errs.First(), MalformedShape))
	assert.Contains(t, errs.Error(), "negative size -1")
	assert.Equal(t, 2, len(errs.LogValue().Group()))
}
