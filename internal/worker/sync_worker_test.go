package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"rimborsi/internal/amqp"
	"rimborsi/internal/core"
)

type fakeAppender struct {
	appended []core.Record
	err      error
}

func (f *fakeAppender) Append(_ context.Context, r core.Record) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, r)
	return "Expenses!A2:G2", nil
}

func TestHandleRecordSaved(t *testing.T) {
	f := &fakeAppender{}
	w := NewSyncWorker(f)

	m := core.Money{Cents: 100}
	msg := amqp.NewRecordSavedMessage(core.Record{
		ID: 1, Name: "Lunch", Amount: &m,
		Date: core.NewDate(2026, time.August, 20), Category: core.CategoryFoodAndDrink,
	})

	if err := w.HandleRecordSaved(msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.appended) != 1 || f.appended[0].ID != 1 {
		t.Fatalf("record not appended: %+v", f.appended)
	}
}

func TestHandleRecordSavedPropagatesAppendError(t *testing.T) {
	f := &fakeAppender{err: errors.New("sheet unavailable")}
	w := NewSyncWorker(f)

	msg := amqp.NewRecordSavedMessage(core.Record{ID: 2})
	if err := w.HandleRecordSaved(msg); err == nil {
		t.Fatal("append error must propagate so the message is requeued")
	}
}
