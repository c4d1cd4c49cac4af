package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ontoql/internal/queryir"
	"github.com/roach88/ontoql/internal/testutil"
	"github.com/roach88/ontoql/internal/translate"
)

// createTestStore opens a catalog in a temp dir with sequential ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := Open(path, WithIDGenerator(testutil.NewSequenceIDs("q")))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// translateLibrary translates document against the library fixture.
func translateLibrary(t *testing.T, document string) *queryir.Query {
	t.Helper()
	e, err := translate.New(testutil.Library(t), translate.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	q, err := e.Translate(context.Background(), document)
	require.NoError(t, err)
	return q
}
