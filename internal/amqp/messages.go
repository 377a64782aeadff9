package amqp

import (
	"encoding/json"
	"time"

	"rimborsi/internal/core"
)

// RecordSavedMessage carries a freshly saved record to the sheet-sync
// worker. The full record travels in the message: the snapshot store has
// no per-record lookup, so the worker must not depend on it.
type RecordSavedMessage struct {
	Record    core.Record `json:"record"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewRecordSavedMessage(r core.Record) *RecordSavedMessage {
	return &RecordSavedMessage{Record: r, Timestamp: time.Now()}
}

func (m *RecordSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSavedMessageFromJSON(data []byte) (*RecordSavedMessage, error) {
	var msg RecordSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
