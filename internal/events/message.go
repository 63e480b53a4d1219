// Package events publishes record change notifications to a message broker.
package events

import (
	"encoding/json"
	"time"

	"github.com/voicebudget/voice-ledger/internal/ledger"
)

// RecordMessage is the body published for every record write
type RecordMessage struct {
	Event      string         `json:"event"`
	RecordID   int64          `json:"record_id"`
	Record     *ledger.Record `json:"record,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewRecordMessage builds a message. Deletions carry only the id.
func NewRecordMessage(event string, record *ledger.Record, at time.Time) *RecordMessage {
	msg := &RecordMessage{
		Event:      event,
		RecordID:   record.ID,
		OccurredAt: at,
	}
	if event != ledger.EventDeleted {
		msg.Record = record
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *RecordMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
