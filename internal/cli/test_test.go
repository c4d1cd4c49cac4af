package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	scenariosDir = filepath.Join("..", "harness", "testdata", "scenarios")
	goldenDir    = filepath.Join("..", "harness", "testdata", "golden")
)

func TestTestCommand_Passes(t *testing.T) {
	out, err := execute(t, "", "test", scenariosDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ library (6 cases)")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_GoldenCompare(t *testing.T) {
	out, err := execute(t, "", "test", scenariosDir, "--golden", goldenDir)
	require.NoError(t, err, out)
}

func TestTestCommand_GoldenUpdate(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "", "test", scenariosDir, "--golden", dir, "--update")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(dir, "library.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(goldenDir, "library.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	_, err = execute(t, "", "test", scenariosDir, "--golden", dir)
	assert.NoError(t, err)
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "library.golden"), []byte("{}"), 0o644))

	out, err := execute(t, "", "test", scenariosDir, "--golden", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "snapshot differs")
}

func TestTestCommand_FailingScenario(t *testing.T) {
	abs, err := filepath.Abs(filepath.Join("..", "ontology", "testdata", "library.yaml"))
	require.NoError(t, err)
	path := writeFile(t, "failing.yaml", `name: failing
description: expects an error that never happens
ontology: `+abs+`
cases:
  - name: books
    query: "{ book { title } }"
    expect:
      error: QUERY_DOCUMENT
`)

	out, err := execute(t, "", "test", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, data := decodeResponse(t, out)
	assert.Equal(t, float64(1), data["failed"])
}

func TestTestCommand_Filter(t *testing.T) {
	out, err := execute(t, "", "test", scenariosDir, "--filter", "nothing-*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommand_MissingPath(t *testing.T) {
	_, err := execute(t, "", "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommand_UpdateRequiresGolden(t *testing.T) {
	_, err := execute(t, "", "test", scenariosDir, "--update")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
