package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIDs_Increments(t *testing.T) {
	gen := NewSequenceIDs("q")

	assert.Equal(t, "q-0001", gen.Generate())
	assert.Equal(t, "q-0002", gen.Generate())
	assert.Equal(t, "q-0003", gen.Generate())
}

func TestSequenceIDs_EmptyPrefixDefault(t *testing.T) {
	assert.Equal(t, "query-0001", NewSequenceIDs("").Generate())
}

func TestSequenceIDs_Reset(t *testing.T) {
	gen := NewSequenceIDs("q")
	gen.Generate()
	gen.Generate()

	gen.Reset()
	assert.Equal(t, "q-0001", gen.Generate())
}

func TestSequenceIDs_ThreadSafe(t *testing.T) {
	gen := NewSequenceIDs("q")

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
	assert.Equal(t, "q-1001", gen.Generate())
}
