package amqp

import (
	"encoding/json"
	"time"

	"fintrack/internal/store"
)

// ChangeMessage announces one applied action. It carries counts rather than
// the document; consumers that need the data read it from the API.
type ChangeMessage struct {
	Version    uint64    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Categories int       `json:"categories"`
	Expenses   int       `json:"expenses"`
}

// NewChangeMessage summarises a store change.
func NewChangeMessage(c store.Change) *ChangeMessage {
	msg := &ChangeMessage{
		Version:    c.Version,
		Timestamp:  c.At.UTC(),
		Categories: len(c.State.Categories),
		Expenses:   len(c.State.Expenses),
	}
	if c.Action != nil {
		msg.Type = string(c.Action.Type())
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON parses a message body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
