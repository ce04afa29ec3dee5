package workflow_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nh13/snakeparse/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeWorkflowFiles creates a snakefile and its snakeparse file in dir and
// returns the snakefile path.
func writeWorkflowFiles(t *testing.T, dir, stem string) string {
	t.Helper()
	snakefile := filepath.Join(dir, stem+".smk")
	require.NoError(t, os.WriteFile(snakefile, []byte("rule all:\n"), 0o644))
	snakeparse := filepath.Join(dir, stem+"_snakeparser.go")
	require.NoError(t, os.WriteFile(snakeparse, []byte("package main\n"), 0o644))
	return snakefile
}

func newTestRegistry() *workflow.Registry {
	reg := workflow.NewRegistry()
	reg.NameTransform = workflow.SnakeToCamel
	reg.FindSnakeparse = func(snakefile string) (string, error) {
		base := strings.TrimSuffix(snakefile, filepath.Ext(snakefile))
		return base + "_snakeparser.go", nil
	}
	return reg
}

func TestRegisterDuplicateName(t *testing.T) {
	dir := t.TempDir()
	snakefile := writeWorkflowFiles(t, dir, "write_message")

	reg := newTestRegistry()
	_, err := reg.RegisterSnakefile(snakefile)
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())

	err = reg.Register(&workflow.Workflow{Name: "WriteMessage", Snakefile: snakefile})
	var dupErr *workflow.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "WriteMessage", dupErr.Name)
	assert.Equal(t, 1, reg.Len(), "registry size must be unchanged after a failed registration")
}

func TestRegisterSnakefileSameDerivedName(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	first := writeWorkflowFiles(t, dirA, "write_message")
	second := writeWorkflowFiles(t, dirB, "write_message")

	reg := newTestRegistry()
	_, err := reg.RegisterSnakefile(first)
	require.NoError(t, err)

	_, err = reg.RegisterSnakefile(second)
	var dupErr *workflow.DuplicateNameError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, 1, reg.Len())
}

func TestRegisterMissingSnakefile(t *testing.T) {
	reg := newTestRegistry()
	err := reg.Register(&workflow.Workflow{
		Name:      "Ghost",
		Snakefile: filepath.Join(t.TempDir(), "nope.smk"),
	})
	var missingErr *workflow.MissingFileError
	require.ErrorAs(t, err, &missingErr)
	assert.Equal(t, 0, reg.Len())
}

func TestDeriveName(t *testing.T) {
	reg := newTestRegistry()
	assert.Equal(t, "WriteMessage", reg.DeriveName("/some/dir/write_message.smk"))

	reg.NameTransform = nil
	assert.Equal(t, "write_message", reg.DeriveName("/some/dir/write_message.smk"))
}

func TestAllOrderedByGroupThenName(t *testing.T) {
	dir := t.TempDir()
	reg := newTestRegistry()
	for _, stem := range []string{"zeta", "alpha", "mid"} {
		writeWorkflowFiles(t, dir, stem)
	}
	require.NoError(t, reg.Register(&workflow.Workflow{
		Name:       "Zeta",
		Snakefile:  filepath.Join(dir, "zeta.smk"),
		Snakeparse: filepath.Join(dir, "zeta_snakeparser.go"),
		Group:      "tools",
	}))
	require.NoError(t, reg.Register(&workflow.Workflow{
		Name:       "Alpha",
		Snakefile:  filepath.Join(dir, "alpha.smk"),
		Snakeparse: filepath.Join(dir, "alpha_snakeparser.go"),
		Group:      "tools",
	}))
	require.NoError(t, reg.Register(&workflow.Workflow{
		Name:       "Mid",
		Snakefile:  filepath.Join(dir, "mid.smk"),
		Snakeparse: filepath.Join(dir, "mid_snakeparser.go"),
	}))

	var names []string
	for _, wf := range reg.All() {
		names = append(names, wf.Name)
	}
	// Ungrouped first, then groups, each sorted by name.
	assert.Equal(t, []string{"Mid", "Alpha", "Zeta"}, names)
	assert.Equal(t, []string{"tools"}, reg.GroupNames())
}

func TestParentDirIsGroup(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "qc")
	require.NoError(t, os.Mkdir(sub, 0o755))
	snakefile := writeWorkflowFiles(t, sub, "fastqc")

	reg := newTestRegistry()
	reg.ParentDirIsGroup = true
	wf, err := reg.RegisterSnakefile(snakefile)
	require.NoError(t, err)
	assert.Equal(t, "qc", wf.Group)
	assert.Equal(t, "", reg.GroupDescription("qc"))
}
