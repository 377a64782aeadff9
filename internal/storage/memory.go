package storage

import (
	"context"
	"sync"

	"rimborsi/internal/core"
)

// MemoryStore keeps the record list in memory. Default backend and the
// store used by handler tests.
type MemoryStore struct {
	mu      sync.Mutex
	records []core.Record
}

var _ RecordStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *MemoryStore) Persist(_ context.Context, records []core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]core.Record, len(records))
	copy(s.records, records)
	return nil
}
