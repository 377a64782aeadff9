// Package worker forwards saved records from the message queue to the
// spreadsheet appender.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"rimborsi/internal/amqp"
	"rimborsi/internal/sheets"
)

// SyncWorker appends each consumed record to the configured spreadsheet.
// A handler error requeues the message (the AMQP layer's policy), so a
// temporarily unreachable spreadsheet does not lose records.
type SyncWorker struct {
	appender sheets.RecordAppender
}

func NewSyncWorker(appender sheets.RecordAppender) *SyncWorker {
	return &SyncWorker{appender: appender}
}

// HandleRecordSaved is the AMQP consume callback.
func (w *SyncWorker) HandleRecordSaved(msg *amqp.RecordSavedMessage) error {
	ctx := context.Background()
	ref, err := w.appender.Append(ctx, msg.Record)
	if err != nil {
		return fmt.Errorf("append record %d: %w", msg.Record.ID, err)
	}
	slog.InfoContext(ctx, "Record synced to spreadsheet", "id", msg.Record.ID, "ref", ref)
	return nil
}
