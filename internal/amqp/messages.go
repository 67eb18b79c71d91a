package amqp

import (
	"encoding/json"
	"time"
)

// RecordChangeMessage is the lightweight notification published whenever an
// owner's record set changes. It carries ids only; the export worker reads
// the fresh snapshot from the database, so a stale or duplicated message is
// harmless.
type RecordChangeMessage struct {
	RecordID  string    `json:"record_id"`
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangeMessage(recordID, ownerID, kind string) *RecordChangeMessage {
	return &RecordChangeMessage{
		RecordID:  recordID,
		OwnerID:   ownerID,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
