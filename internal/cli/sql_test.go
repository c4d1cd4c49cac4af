package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ontoql/internal/testutil"
)

func TestSQL_Relation(t *testing.T) {
	out, err := execute(t, "", "sql", "--ontology", testutil.LibraryPath(), "-q", "{ book { title writtenBy { name } } }")
	require.NoError(t, err)

	assert.Contains(t, out, "-- book\n")
	assert.Contains(t, out, `INNER JOIN "writtenBy" AS r1 ON r1.src = t1.id`)
	assert.Contains(t, out, "-- args: []")
}

func TestSQL_JSONArgs(t *testing.T) {
	doc := `{ book(where: {constraints: [{operand: "year", operator: lt, expression: 2000}]}) { title } }`
	out, err := execute(t, "", "sql", "--ontology", testutil.LibraryPath(), "--format", "json", "-q", doc)
	require.NoError(t, err)

	_, data := decodeResponse(t, out)
	stmts, ok := data["statements"].([]any)
	require.True(t, ok)
	require.Len(t, stmts, 1)
	st := stmts[0].(map[string]any)
	assert.Equal(t, "book", st["root"])
	assert.Contains(t, st["sql"], `t1."year" < ?`)
	assert.Equal(t, []any{float64(2000)}, st["args"])
}

func TestSQL_MultiRoot(t *testing.T) {
	out, err := execute(t, "", "sql", "--ontology", testutil.LibraryPath(), "-q", "{ book { title } author { name } }")
	require.NoError(t, err)
	assert.Contains(t, out, "-- book\n")
	assert.Contains(t, out, "-- author\n")
}

func TestSQL_Unsupported(t *testing.T) {
	doc := `{ book(where: {constraints: [{operand: "title", operator: match, expression: "dune"}]}) { title } }`
	out, err := execute(t, "", "sql", "--ontology", testutil.LibraryPath(), "-q", doc)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E008]")
}

func TestSQL_Schema(t *testing.T) {
	out, err := execute(t, "", "sql", "--schema", "--ontology", testutil.LibraryPath())
	require.NoError(t, err)

	assert.Contains(t, out, `CREATE TABLE "Book" (`)
	assert.Contains(t, out, `CREATE TABLE "writtenBy" ("src" TEXT NOT NULL, "dst" TEXT NOT NULL, "since" INTEGER);`)
	assert.NotContains(t, out, `CREATE TABLE "Work"`)
}

func TestSurface(t *testing.T) {
	out, err := execute(t, "", "surface", "--ontology", testutil.LibraryPath())
	require.NoError(t, err)

	assert.Contains(t, out, "interface Work")
	assert.Contains(t, out, "type Book implements Work")
	assert.Contains(t, out, "enum Genre")
}
