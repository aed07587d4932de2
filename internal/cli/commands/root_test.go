package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/clauses/runtime/clause"
)

const testRules = `
functions:
  - name: classify
    params: [n]
    clauses:
      - guards: {n: {lt: 0}}
        result: negative
      - values: [0]
        result: zero
      - result: positive

  - name: echo
    params: [x]
    clauses:
      - result: "${x}"

  - name: size
    scope: text
    params: [s]
    clauses:
      - guards: {s: {iterable: true}}
        result: iterable
`

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "clauses", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"version", "eval", "describe", "check"}, names)

	for _, flag := range []string{"config", "rules", "format", "no-color", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	t.Cleanup(func() {
		Version = "dev"
		GitCommit = "unknown"
	})

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.0.0-test")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "Go version")
}

func TestEval(t *testing.T) {
	path := writeRules(t, testRules)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"literal clause", []string{"classify", "0"}, "zero\n"},
		{"guarded clause", []string{"classify", "--", "-3"}, "negative\n"},
		{"catch-all", []string{"classify", "9"}, "positive\n"},
		{"placeholder", []string{"echo", "hello"}, "hello\n"},
		{"nil result", []string{"echo", "null"}, "nil\n"},
		{"scoped", []string{"text.size", "abc"}, "iterable\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"eval", "--rules", path, "--no-color"}, tt.args...)
			out, _, err := execute(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestEvalFormats(t *testing.T) {
	path := writeRules(t, testRules)

	out, _, err := execute(t, "eval", "--rules", path, "--format", "json", "echo", "[1, 2]")
	require.NoError(t, err)
	assert.Equal(t, "[\n  1,\n  2\n]\n", out)

	out, _, err = execute(t, "eval", "--rules", path, "--format", "yaml", "echo", "{a: 1}")
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", out)
}

func TestEvalNoMatch(t *testing.T) {
	path := writeRules(t, testRules)

	_, _, err := execute(t, "eval", "--rules", path, "text.size", "5")
	require.Error(t, err)
	assert.ErrorIs(t, err, clause.ErrNoMatch)

	_, _, err = execute(t, "eval", "--rules", path, "classify", "1", "2")
	assert.ErrorIs(t, err, clause.ErrNoMatch)
}

func TestEvalUnknownFunction(t *testing.T) {
	path := writeRules(t, testRules)

	_, errOut, err := execute(t, "eval", "--rules", path, "--no-color", "clasify", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnknownFunction)

	var reported *reportedError
	assert.True(t, errors.As(err, &reported))
	assert.Contains(t, errOut, "FUNCTION NOT FOUND: clasify")
	assert.Contains(t, errOut, "Did you mean: classify?")
}

func TestEvalRequiresFunction(t *testing.T) {
	_, _, err := execute(t, "eval")
	assert.Error(t, err)
}

func TestEvalVerboseLogsRegistration(t *testing.T) {
	path := writeRules(t, testRules)

	_, errOut, err := execute(t, "eval", "--rules", path, "--verbose", "classify", "0")
	require.NoError(t, err)
	assert.Contains(t, errOut, "clause registered")
	assert.Contains(t, errOut, "rules installed")
}

func TestDescribe(t *testing.T) {
	path := writeRules(t, testRules)

	out, _, err := execute(t, "describe", "--rules", path, "--no-color", "classify")
	require.NoError(t, err)
	assert.Contains(t, out, "classify\n")
	assert.Contains(t, out, "ARITY")
	assert.Contains(t, out, "n: lt(0)")
	assert.Contains(t, out, "n: eq(0)")
	assert.Contains(t, out, "yes")
	assert.NotContains(t, out, "echo")
}

func TestDescribeJSON(t *testing.T) {
	path := writeRules(t, testRules)

	out, _, err := execute(t, "describe", "--rules", path, "--format", "json")
	require.NoError(t, err)

	var infos []clause.FunctionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 3)
	assert.Equal(t, "classify", infos[0].Name)
	assert.Equal(t, "echo", infos[1].Name)
	assert.Equal(t, "text", infos[2].Scope)
	require.Len(t, infos[0].Arities, 1)
	assert.Len(t, infos[0].Arities[0].Clauses, 3)
	assert.True(t, infos[0].Arities[0].Clauses[2].CatchAll)
}

func TestCheck(t *testing.T) {
	path := writeRules(t, testRules)

	out, _, err := execute(t, "check", "--rules", path, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+path+" is valid")
	assert.Contains(t, out, "functions:  3")
	assert.Contains(t, out, "clauses:    5")
	assert.Contains(t, out, "catch-alls: 2")
}

func TestCheckReportsRuleErrors(t *testing.T) {
	path := writeRules(t, `
functions:
  - name: f
    params: [x]
    clauses:
      - result: any
      - values: [1]
        result: one
`)

	_, errOut, err := execute(t, "check", "--rules", path, "--no-color")
	require.Error(t, err)
	assert.ErrorIs(t, err, clause.ErrOrdering)
	assert.Contains(t, errOut, "INVALID RULES")
	assert.Contains(t, errOut, path+":7:")
}

func TestCheckMissingRules(t *testing.T) {
	_, errOut, err := execute(t, "check", "--rules", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, errOut, "INVALID RULES")
}

func TestInvalidFormatFlag(t *testing.T) {
	path := writeRules(t, testRules)

	_, _, err := execute(t, "describe", "--rules", path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format must be one of")
}

func TestSplitName(t *testing.T) {
	scope, name := splitName("text.size")
	assert.Equal(t, "text", scope)
	assert.Equal(t, "size", name)

	scope, name = splitName("size")
	assert.Equal(t, "", scope)
	assert.Equal(t, "size", name)
}
