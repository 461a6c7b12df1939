package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope is the canonical event wrapper published to NATS.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

// Notice is a user-facing notification pushed to connected operator
// UIs over the websocket feed.
type Notice struct {
	Level   string    `json:"level"` // "info" | "warn" | "error"
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
