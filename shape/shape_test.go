package shape

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/cottand/datashape/lattice"
	"github.com/cottand/datashape/shapeerr"
	"github.com/stretchr/testify/assert"
)

var (
	int32M   = Scalar{lattice.Int32}
	float32M = Scalar{lattice.Float32}
)

func TestString(t *testing.T) {
	cases := []struct {
		name     string
		input    Shape
		expected string
	}{
		{"scalar only", Of(int32M), "int32"},
		{"fixed and vars", Of(float32M, Fixed{10}, Var{"A"}), "10, A, float32"},
		{"anonymous ellipsis", Of(int32M, Var{"A"}, Ellipsis{}, Var{"B"}), "A, ..., B, int32"},
		{"named ellipsis", Of(Var{"T"}, Ellipsis{"Batch"}, Fixed{3}), "Batch..., 3, T"},
		{"missing measure", Shape{Dims: []Dim{Fixed{2}}}, "2, <no measure>"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, c.input.String())
		})
	}
	assert.Equal(t, "[1, A, ...]", Span{Fixed{1}, Var{"A"}, Ellipsis{}}.String())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		input  Shape
		reason string
	}{
		{"well formed", Of(int32M, Fixed{0}, Var{"A"}, Ellipsis{"E"}), ""},
		{"no measure", Shape{Dims: []Dim{Fixed{1}}}, "missing measure"},
		{"negative size", Of(int32M, Fixed{-2}), "negative size -2"},
		{"two ellipses", Of(int32M, Ellipsis{}, Var{"A"}, Ellipsis{"B"}), "more than one ellipsis"},
		{"nameless var", Of(int32M, Var{}), "variable without a name"},
		{"nameless measure var", Of(Var{}), "measure variable without a name"},
		{"nil dimension", Of(int32M, nil), "missing dimension 0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(c.input)
			if c.reason == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, shapeerr.Is(err, shapeerr.MalformedShape), "unexpected error %v", err)
			assert.ErrorContains(t, err, c.reason)
		})
	}
}

func TestFreeVars(t *testing.T) {
	s := Of(Var{"M"}, Var{"B"}, Fixed{3}, Ellipsis{"E"}, Var{"A"}, Var{"B"})
	assert.Equal(t, []string{"A", "B", "E", "M"}, FreeVars(s))
	assert.Empty(t, FreeVars(Of(int32M, Fixed{1}, Ellipsis{})))
	assert.Equal(t, []string{"A", "E"}, TermVars(Span{Var{"A"}, Ellipsis{"E"}, Ellipsis{}}))
}

func TestEqualAndRank(t *testing.T) {
	a := Of(int32M, Fixed{10}, Var{"A"})
	assert.True(t, a.Equal(a.Copy()))
	assert.False(t, a.Equal(Of(float32M, Fixed{10}, Var{"A"})))
	assert.False(t, a.Equal(Of(int32M, Fixed{10})))
	assert.True(t, Equal(Span{Fixed{1}}, Span{Fixed{1}}))
	assert.False(t, Equal(Span{Fixed{1}}, Fixed{1}))
	assert.False(t, Equal(Var{"A"}, Ellipsis{"A"}))
	assert.True(t, Equal(nil, nil))

	assert.Equal(t, 2, a.Rank())
	assert.Equal(t, -1, Of(int32M, Ellipsis{}).Rank())
	assert.Equal(t, 0, Of(int32M).Rank())
}

func TestIsGround(t *testing.T) {
	assert.True(t, IsGround(Fixed{3}))
	assert.True(t, IsGround(int32M))
	assert.True(t, IsGround(Span{Fixed{1}, Fixed{2}}))
	assert.False(t, IsGround(Span{Fixed{1}, Var{"A"}}))
	assert.False(t, IsGround(Ellipsis{}))
	assert.False(t, IsGround(Var{"T"}))
}

func TestSlogHandler(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(SlogHandler(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	logger.With("shape", Of(int32M, Var{"A"})).Debug("bound", "var", Var{"A"}, "value", Fixed{4})
	out := buf.String()
	assert.Contains(t, out, `shape="A, int32"`)
	assert.Contains(t, out, "var=A")
	assert.Contains(t, out, "value=4")
}
