package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ontoql/internal/testutil"
)

const brokenOntology = `name: broken
properties:
  - {name: id, type: id}
entities:
  - name: Thing
    properties: [id, missing]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_ArgumentOverridesConfig(t *testing.T) {
	out, err := execute(t, "", "validate", "--ontology", "ignored.yaml", testutil.LibraryPath())
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Ontology library valid")
}

func TestValidate_InvalidOntology(t *testing.T) {
	path := writeFile(t, "broken.yaml", brokenOntology)

	out, err := execute(t, "", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
	assert.Contains(t, out, "[E102]")
	assert.Contains(t, out, "missing")
}

func TestValidate_InvalidOntologyJSON(t *testing.T) {
	path := writeFile(t, "broken.yaml", brokenOntology)

	out, err := execute(t, "", "validate", "--format", "json", path)
	require.Error(t, err)

	resp, _ := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
	details, ok := resp.Error.Details.([]any)
	require.True(t, ok, "details: %#v", resp.Error.Details)
	assert.NotEmpty(t, details)
}

func TestValidate_NotFound(t *testing.T) {
	out, err := execute(t, "", "validate", "/nonexistent/ontology.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, out, "not found")
}

func TestValidate_NoOntologyConfigured(t *testing.T) {
	t.Setenv("ONTOQL_ONTOLOGY", "")

	_, err := execute(t, "", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoOntology)
}

func TestValidate_UnparsableOntology(t *testing.T) {
	path := writeFile(t, "bad.yaml", "name: [\n")

	_, err := execute(t, "", "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
}
