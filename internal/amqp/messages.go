package amqp

import (
	"encoding/json"
	"time"

	"fleetledger/internal/core"
)

// RecordSyncMessage is a lightweight notification that a record changed.
// It carries only the kind, ID and version; the worker fetches the full
// record from the database before exporting it.
type RecordSyncMessage struct {
	Kind      core.RecordKind `json:"kind"`
	ID        string          `json:"id"`
	Version   int64           `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRecordSyncMessage creates a sync message with the current timestamp.
func NewRecordSyncMessage(kind core.RecordKind, id string, version int64) *RecordSyncMessage {
	return &RecordSyncMessage{
		Kind:      kind,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON creates a message from JSON bytes
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RecordDeleteMessage notifies the worker that a record was removed and its
// exported row should be cleared.
type RecordDeleteMessage struct {
	Kind      core.RecordKind `json:"kind"`
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRecordDeleteMessage creates a delete message with the current timestamp.
func NewRecordDeleteMessage(kind core.RecordKind, id string) *RecordDeleteMessage {
	return &RecordDeleteMessage{
		Kind:      kind,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordDeleteMessageFromJSON creates a message from JSON bytes
func RecordDeleteMessageFromJSON(data []byte) (*RecordDeleteMessage, error) {
	var msg RecordDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
