package dispatch_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nh13/snakeparse/pkg/dispatch"
	"github.com/nh13/snakeparse/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, dir string, stems ...string) *workflow.Registry {
	t.Helper()
	reg := workflow.NewRegistry()
	reg.NameTransform = workflow.SnakeToCamel
	reg.FindSnakeparse = func(snakefile string) (string, error) {
		base := strings.TrimSuffix(snakefile, filepath.Ext(snakefile))
		return base + "_snakeparser.go", nil
	}
	for _, stem := range stems {
		snakefile := writeSnakefile(t, dir, stem)
		_, err := reg.RegisterSnakefile(snakefile)
		require.NoError(t, err)
	}
	return reg
}

func writeSnakefile(t *testing.T, dir, stem string) string {
	t.Helper()
	snakefile := filepath.Join(dir, stem+".smk")
	require.NoError(t, os.WriteFile(snakefile, []byte("rule all:\n"), 0o644))
	parserFile := filepath.Join(dir, stem+"_snakeparser.go")
	require.NoError(t, os.WriteFile(parserFile, []byte("package main\n"), 0o644))
	return snakefile
}

func TestResolveNoSeparator(t *testing.T) {
	reg := newRegistry(t, t.TempDir(), "example")

	res, err := dispatch.Resolve([]string{"--cores", "2", "Example", "--message", "hi"}, reg)
	require.NoError(t, err)
	assert.Equal(t, "Example", res.Workflow.Name)
	assert.Equal(t, []string{"--cores", "2"}, res.EngineTokens)
	assert.Equal(t, []string{"--message", "hi"}, res.WorkflowTokens)
	assert.False(t, res.SnakefileExplicit)
}

func TestResolveNoSeparatorEarliestTokenWins(t *testing.T) {
	reg := newRegistry(t, t.TempDir(), "alpha_flow", "beta_flow")

	// Both names occur; the one at the earliest stream position wins even
	// though the other sorts first in the registry.
	res, err := dispatch.Resolve([]string{"BetaFlow", "AlphaFlow"}, reg)
	require.NoError(t, err)
	assert.Equal(t, "BetaFlow", res.Workflow.Name)
	assert.Empty(t, res.EngineTokens)
	assert.Equal(t, []string{"AlphaFlow"}, res.WorkflowTokens)
}

func TestResolveSeparatorWithName(t *testing.T) {
	reg := newRegistry(t, t.TempDir(), "example", "other_flow")

	res, err := dispatch.Resolve(
		[]string{"--force-run", "rule-1", "rule-2", "--", "Example", "--message", "hi"}, reg)
	require.NoError(t, err)
	assert.Equal(t, "Example", res.Workflow.Name)
	assert.Equal(t, []string{"--force-run", "rule-1", "rule-2"}, res.EngineTokens)
	assert.Equal(t, []string{"--message", "hi"}, res.WorkflowTokens)
}

func TestResolveSeparatorImplicitSingleWorkflow(t *testing.T) {
	reg := newRegistry(t, t.TempDir(), "example")

	res, err := dispatch.Resolve([]string{"--", "--message", "hi"}, reg)
	require.NoError(t, err)
	assert.Equal(t, "Example", res.Workflow.Name)
	assert.Empty(t, res.EngineTokens)
	assert.Equal(t, []string{"--message", "hi"}, res.WorkflowTokens)
}

func TestResolveSeparatorUnknownNameMultipleWorkflows(t *testing.T) {
	reg := newRegistry(t, t.TempDir(), "example", "other_flow")

	_, err := dispatch.Resolve([]string{"--", "NotAWorkflow"}, reg)
	var noneErr *dispatch.NoWorkflowSpecifiedError
	require.ErrorAs(t, err, &noneErr)
}

func TestResolveSeparatorNothingAfterMultipleWorkflows(t *testing.T) {
	reg := newRegistry(t, t.TempDir(), "example", "other_flow")

	_, err := dispatch.Resolve([]string{"--cores", "2", "--"}, reg)
	var noneErr *dispatch.NoWorkflowSpecifiedError
	require.ErrorAs(t, err, &noneErr)
}

func TestResolveNoMatchingToken(t *testing.T) {
	reg := newRegistry(t, t.TempDir(), "example")

	_, err := dispatch.Resolve([]string{"--cores", "2"}, reg)
	var noneErr *dispatch.NoWorkflowSpecifiedError
	require.ErrorAs(t, err, &noneErr)
}

func TestResolveEmptyRegistry(t *testing.T) {
	reg := newRegistry(t, t.TempDir())

	_, err := dispatch.Resolve([]string{"Example", "--message", "hi"}, reg)
	var emptyErr *dispatch.EmptyRegistryError
	require.ErrorAs(t, err, &emptyErr)
}

func TestResolveSnakefileOption(t *testing.T) {
	dir := t.TempDir()
	snakefile := writeSnakefile(t, dir, "write_message")
	reg := newRegistry(t, t.TempDir())

	// The derived name (WriteMessage) must occur as a literal token; it
	// splits the stream.
	res, err := dispatch.Resolve(
		[]string{"--snakefile", snakefile, "WriteMessage", "--message", "hi"}, reg)
	require.NoError(t, err)
	assert.Equal(t, "WriteMessage", res.Workflow.Name)
	assert.Equal(t, []string{"--snakefile", snakefile}, res.EngineTokens)
	assert.Equal(t, []string{"--message", "hi"}, res.WorkflowTokens)
	assert.True(t, res.SnakefileExplicit)
	assert.Equal(t, 1, reg.Len(), "the snakefile is registered ad hoc")
}

func TestResolveSnakefileShortOption(t *testing.T) {
	dir := t.TempDir()
	snakefile := writeSnakefile(t, dir, "write_message")
	reg := newRegistry(t, t.TempDir())

	res, err := dispatch.Resolve([]string{"-s", snakefile, "WriteMessage"}, reg)
	require.NoError(t, err)
	assert.Equal(t, "WriteMessage", res.Workflow.Name)
	assert.True(t, res.SnakefileExplicit)
}

func TestResolveSnakefileOptionNameTokenAbsent(t *testing.T) {
	dir := t.TempDir()
	snakefile := writeSnakefile(t, dir, "write_message")
	reg := newRegistry(t, t.TempDir())

	_, err := dispatch.Resolve([]string{"--snakefile", snakefile, "--message", "hi"}, reg)
	var notFoundErr *dispatch.WorkflowNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "WriteMessage", notFoundErr.Name)
}

func TestResolveSnakefileOptionAfterSeparatorIgnored(t *testing.T) {
	dir := t.TempDir()
	snakefile := writeSnakefile(t, dir, "write_message")
	reg := newRegistry(t, dir, "example")

	// -s after the separator belongs to the workflow, not to dispatch.
	res, err := dispatch.Resolve([]string{"--", "Example", "-s", snakefile}, reg)
	require.NoError(t, err)
	assert.Equal(t, "Example", res.Workflow.Name)
	assert.False(t, res.SnakefileExplicit)
	assert.Equal(t, []string{"-s", snakefile}, res.WorkflowTokens)
}
