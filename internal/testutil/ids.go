package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable record ids for golden comparison:
// "<prefix>-0001", "<prefix>-0002", ...
//
// Unlike the UUIDv7 generator used in production, SequenceIDs can be reset
// so the same scenario run twice yields identical ids.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator. An empty prefix defaults to "query".
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "query"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Reset restarts the sequence. After Reset, Generate returns "<prefix>-0001".
func (g *SequenceIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
