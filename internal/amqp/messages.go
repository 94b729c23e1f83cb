package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// MovementSyncMessage tells the worker to mirror one SQLite movement into
// the sheet. It carries only the id, the owner and the action; the worker
// fetches the full movement from the database. The owner rides along
// because a deleted movement is no longer fetchable.
type MovementSyncMessage struct {
	ID        int64     `json:"id"`
	Owner     string    `json:"owner"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMovementSyncMessage(id int64, owner, action string) *MovementSyncMessage {
	return &MovementSyncMessage{
		ID:        id,
		Owner:     owner,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *MovementSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MovementSyncMessageFromJSON creates a message from JSON bytes.
func MovementSyncMessageFromJSON(data []byte) (*MovementSyncMessage, error) {
	var msg MovementSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
