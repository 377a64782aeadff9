package amqp

import (
	"testing"
	"time"

	"rimborsi/internal/core"
)

func TestRecordSavedMessageRoundTrip(t *testing.T) {
	m := core.Money{Cents: 4250}
	msg := NewRecordSavedMessage(core.Record{
		ID: 1756280000000, Name: "Lunch", Amount: &m,
		Date: core.NewDate(2026, time.August, 20), Category: core.CategoryFoodAndDrink,
	})

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := RecordSavedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Record.ID != msg.Record.ID || back.Record.Name != "Lunch" {
		t.Fatalf("round trip mismatch: %+v", back.Record)
	}
	if back.Record.Amount == nil || back.Record.Amount.Cents != 4250 {
		t.Fatalf("amount lost in transit: %+v", back.Record.Amount)
	}
}

func TestRecordSavedMessageFromJSONInvalid(t *testing.T) {
	if _, err := RecordSavedMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatal("expected error for invalid payload")
	}
}
