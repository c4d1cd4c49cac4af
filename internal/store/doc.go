// Package store provides a SQLite-backed catalog of translated query graphs.
//
// Each record keeps the source document next to the canonical JSON encoding
// of its graph. Records are keyed by a generated id and deduplicated by the
// graph's content hash, so saving the same translation twice is a no-op.
//
// # Ordering
//
// Records carry a seq assigned at insert time. Listings are ordered by
// seq ASC, id ASC COLLATE BINARY and never by timestamps, so two catalogs
// built from the same saves list identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - Single connection: SQLite has one writer
package store
