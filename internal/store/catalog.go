package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/ontoql/internal/queryir"
)

// Record is one cataloged translation.
type Record struct {
	ID       string
	Name     string
	Ontology string
	Hash     string
	Document string
	Seq      int64
	Query    *queryir.Query
}

const recordColumns = "id, name, ontology, hash, document, graph, seq"

// Save catalogs the translation of document into q. If a graph with the
// same content hash is already cataloged, the existing record is returned
// and inserted is false.
func (s *Store) Save(ctx context.Context, document string, q *queryir.Query) (rec Record, inserted bool, err error) {
	hash, err := queryir.Hash(q)
	if err != nil {
		return Record{}, false, fmt.Errorf("save query: %w", err)
	}
	graph, err := marshalGraph(q)
	if err != nil {
		return Record{}, false, fmt.Errorf("save query: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, false, fmt.Errorf("save query: begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	existing, err := scanRecord(tx.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM queries WHERE hash = ?", hash))
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return Record{}, false, fmt.Errorf("save query: %w", err)
	}

	var seq int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM queries").Scan(&seq); err != nil {
		return Record{}, false, fmt.Errorf("save query: next seq: %w", err)
	}

	rec = Record{
		ID:       s.ids.Generate(),
		Name:     q.QueryName(),
		Ontology: q.Ontology(),
		Hash:     hash,
		Document: document,
		Seq:      seq,
		Query:    q,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO queries (id, name, ontology, hash, document, graph, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, rec.Ontology, rec.Hash, rec.Document, graph, rec.Seq)
	if err != nil {
		return Record{}, false, fmt.Errorf("save query: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, false, fmt.Errorf("save query: commit: %w", err)
	}
	return rec, true, nil
}

// Get returns the record with the given id.
// Returns sql.ErrNoRows if not found.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM queries WHERE id = ?", id))
}

// GetByHash returns the record whose graph has the given content hash.
// Returns sql.ErrNoRows if not found.
func (s *Store) GetByHash(ctx context.Context, hash string) (Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM queries WHERE hash = ?", hash))
}

// List returns the records cataloged for ontology in insertion order.
// An empty ontology lists every record.
func (s *Store) List(ctx context.Context, ontology string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM queries
		WHERE ? = '' OR ontology = ?
		ORDER BY seq ASC, id ASC COLLATE BINARY
	`, ontology, ontology)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list queries: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	return records, nil
}

// Delete removes the record with the given id.
// Returns sql.ErrNoRows if not found.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM queries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete query: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete query: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var graph string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Ontology, &rec.Hash, &rec.Document, &graph, &rec.Seq); err != nil {
		return Record{}, err
	}
	q, err := unmarshalGraph(graph)
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	rec.Query = q
	return rec, nil
}
