package export

import (
	"context"
	"sync"

	"github.com/okian/matchsim/internal/domain/model"
)

// MemorySink keeps every batch in memory. It backs runs without a CSV file
// and tests that inspect the exported log.
type MemorySink struct {
	mu      sync.Mutex
	entries []model.PointLogEntry
	batches int
	err     error
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// FailWith makes every following WriteBatch return err.
func (m *MemorySink) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// WriteBatch stores a copy of entries.
func (m *MemorySink) WriteBatch(ctx context.Context, entries []model.PointLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entries...)
	m.batches++
	return nil
}

// Entries returns a copy of every stored point.
func (m *MemorySink) Entries() []model.PointLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.PointLogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Batches returns the number of successful WriteBatch calls.
func (m *MemorySink) Batches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches
}
