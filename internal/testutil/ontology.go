package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ontoql/internal/ontology"
)

// LibraryPath returns the path of the shared library ontology fixture:
// Work (abstract) implemented by Book and Magazine, Author, the writtenBy and
// wrote relations and the Genre enumeration.
func LibraryPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "ontology", "testdata", "library.yaml")
}

// Library loads the library fixture into a fresh accessor.
func Library(t testing.TB) *ontology.Accessor {
	t.Helper()
	o, err := ontology.Load(LibraryPath())
	require.NoError(t, err)
	a, err := ontology.NewAccessor(o)
	require.NoError(t, err)
	return a
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
