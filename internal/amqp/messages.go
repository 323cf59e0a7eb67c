package amqp

import (
	"encoding/json"
	"time"
)

// TransactionChangeMessage notifies consumers that the transaction set
// changed. It carries only the operation and id; consumers recompute
// from the authoritative store, never from message payloads, so a stale
// or reordered message can at worst trigger a redundant recompute.
type TransactionChangeMessage struct {
	Op        string    `json:"op"` // "create" or "delete"
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionChangeMessage(op, id string) *TransactionChangeMessage {
	return &TransactionChangeMessage{
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangeMessageFromJSON creates a message from JSON bytes.
func TransactionChangeMessageFromJSON(data []byte) (*TransactionChangeMessage, error) {
	var msg TransactionChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
