// Package services orchestrates record operations across the in-memory
// list, the snapshot store and the sync queue.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rimborsi/internal/amqp"
	"rimborsi/internal/core"
	"rimborsi/internal/ledger"
	"rimborsi/internal/storage"
)

// SyncPublisher publishes record-saved messages. Nil-able: an absent
// queue disables publishing without affecting saves.
type SyncPublisher interface {
	PublishRecordSaved(ctx context.Context, msg *amqp.RecordSavedMessage) error
}

// RecordService owns the authoritative record list. Mutations rewrite the
// whole snapshot; a concurrent external writer would be overwritten
// (last write wins, by design of the snapshot store).
type RecordService struct {
	mu        sync.Mutex
	records   []core.Record
	store     storage.RecordStore
	publisher SyncPublisher
}

// NewRecordService rehydrates the list from the store.
func NewRecordService(ctx context.Context, store storage.RecordStore, publisher SyncPublisher) *RecordService {
	records := store.Load(ctx)
	slog.InfoContext(ctx, "Record list rehydrated", "count", len(records))
	return &RecordService{records: records, store: store, publisher: publisher}
}

// List returns a copy of the current record list in stored order
// (non-increasing by date).
func (s *RecordService) List() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Save validates the draft, appends it to the list and persists the whole
// snapshot. Persistence failure is logged and swallowed: the in-memory
// list stays authoritative for the session. The sync queue is best-effort.
func (s *RecordService) Save(ctx context.Context, draft core.Record) (core.Record, error) {
	s.mu.Lock()
	records, saved, err := ledger.Insert(s.records, draft, time.Now())
	if err != nil {
		s.mu.Unlock()
		return core.Record{}, err
	}
	s.records = records
	snapshot := make([]core.Record, len(records))
	copy(snapshot, records)
	s.mu.Unlock()

	if err := s.store.Persist(ctx, snapshot); err != nil {
		slog.ErrorContext(ctx, "Snapshot persist failed", "error", err, "count", len(snapshot))
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRecordSaved(ctx, amqp.NewRecordSavedMessage(saved)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish record saved message", "id", saved.ID, "error", err)
		}
	}

	return saved, nil
}

// Delete removes the record with the given ID and persists the snapshot.
func (s *RecordService) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	records, err := ledger.Remove(s.records, id)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("delete record %d: %w", id, err)
	}
	s.records = records
	snapshot := make([]core.Record, len(records))
	copy(snapshot, records)
	s.mu.Unlock()

	if err := s.store.Persist(ctx, snapshot); err != nil {
		slog.ErrorContext(ctx, "Snapshot persist failed", "error", err, "count", len(snapshot))
	}
	return nil
}
