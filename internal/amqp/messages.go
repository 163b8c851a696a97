package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by an order change message.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// OrderChangeMessage is a lightweight notification that an order changed.
// It carries only the ID and action, the worker fetches the full order
// from the database.
type OrderChangeMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewOrderChangeMessage(id, action string) *OrderChangeMessage {
	return &OrderChangeMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *OrderChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func OrderChangeMessageFromJSON(data []byte) (*OrderChangeMessage, error) {
	var msg OrderChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
