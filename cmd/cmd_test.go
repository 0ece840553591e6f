package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cottand/datashape/shapeerr"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	c.SetOut(out)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

// unifyArgs sets every flag so that runs do not leak into each other
func unifyArgs(file, format string, equations ...string) []string {
	return append([]string{"-f", file, "--format", format, "--max-rounds", "0"}, equations...)
}

func TestUnifyText(t *testing.T) {
	out, err := execute(t, UnifyCmd, unifyArgs("", formatText, "10, T1, int32 -> T2, T2, float32")...)
	require.NoError(t, err)
	expected := `resolved:
  10, 10, float32
residual:
  T1 <= 10 (equation 0)
bindings:
  T2 := 10
`
	assert.Equal(t, expected, out)
}

func TestUnifyBatchYAML(t *testing.T) {
	out, err := execute(t, UnifyCmd, unifyArgs("testdata/promotion.yaml", formatYAML)...)
	require.NoError(t, err)

	var r report
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	assert.Equal(t, []string{"10, B, int32", "10, 10, float32"}, r.Resolved)
	assert.Equal(t, []residualReport{
		{Equation: 0, Constraint: "A <= 10"},
		{Equation: 1, Constraint: "B <= 10"},
	}, r.Residual)
	assert.Equal(t, "10", r.Bindings["X"])
	assert.Equal(t, "float32", r.Bindings["Z"])
}

func TestUnifyBatchAndArgs(t *testing.T) {
	out, err := execute(t, UnifyCmd, unifyArgs("testdata/promotion.yaml", formatText, "B, int8 -> Q, int8")...)
	require.NoError(t, err)
	assert.Contains(t, out, "  Q := B\n")
}

func TestUnifyDump(t *testing.T) {
	out, err := execute(t, UnifyCmd, unifyArgs("", formatDump, "A, B, int32 -> K, M, N, float32")...)
	require.NoError(t, err)
	assert.Contains(t, out, "unify.Result{")
	assert.Contains(t, out, "Resolved:")
}

func TestUnifyErrors(t *testing.T) {
	_, err := execute(t, UnifyCmd, unifyArgs("", formatText, "10, 11, int32 -> T, T, int32")...)
	assert.True(t, shapeerr.Is(err, shapeerr.SizeConflict))

	_, err = execute(t, UnifyCmd, unifyArgs("", formatText, "10, int32")...)
	assert.True(t, shapeerr.Is(err, shapeerr.MalformedShape))

	_, err = execute(t, UnifyCmd, unifyArgs("", "xml", "1, int32 -> 1, int32")...)
	assert.ErrorContains(t, err, "unknown format")

	_, err = execute(t, UnifyCmd, unifyArgs("", formatText)...)
	assert.ErrorContains(t, err, "no equations")

	_, err = execute(t, UnifyCmd, unifyArgs("testdata/missing.yaml", formatText)...)
	assert.ErrorContains(t, err, "could not open batch")
}

func TestLoadBatch(t *testing.T) {
	b, err := LoadBatch(strings.NewReader(`
equations:
  - lhs: "A, int32"
    rhs: "3, int32"
    solve: false
  - lhs: "A, int32"
    rhs: "B, float64"
`))
	require.NoError(t, err)
	equations, err := b.Parse()
	require.NoError(t, err)
	require.Len(t, equations, 2)
	assert.False(t, equations[0].Solve)
	assert.True(t, equations[1].Solve)
	assert.Equal(t, "B, float64", equations[1].Rhs.String())

	_, err = LoadBatch(strings.NewReader("equations: []\nunknown: 1\n"))
	assert.Error(t, err)

	b, err = LoadBatch(strings.NewReader("equations:\n  - lhs: \"A\"\n    rhs: \"int32, int32\"\n"))
	require.NoError(t, err)
	_, err = b.Parse()
	assert.ErrorContains(t, err, "equation 0")
}

func TestCheck(t *testing.T) {
	out, err := execute(t, CheckCmd, "10, A, ..., float32", "E..., M")
	require.NoError(t, err)
	assert.Equal(t, "10, A, ..., float32\tfree: [A]\nE..., M\tfree: [E M]\n", out)

	_, err = execute(t, CheckCmd, "10, A, float32", "int32, 3", "..., ..., int8")
	var errs *shapeerr.Errors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs.Errors(), 2)
	for _, e := range errs.Errors() {
		assert.Equal(t, shapeerr.MalformedShape, e.Code())
	}
}

func TestPromote(t *testing.T) {
	out, err := execute(t, PromoteCmd, "int32", "float32")
	require.NoError(t, err)
	assert.Equal(t, "float32\n", out)

	out, err = execute(t, PromoteCmd, "int8", "uint8", "float16")
	require.NoError(t, err)
	assert.Equal(t, "float32\n", out)

	_, err = execute(t, PromoteCmd, "string", "int8")
	assert.True(t, shapeerr.Is(err, shapeerr.MeasureConflict))

	_, err = execute(t, PromoteCmd, "int32", "quaternion")
	assert.ErrorContains(t, err, "unknown scalar type")
}
