// Package publisher announces written snapshots to downstream consumers.
package publisher

import (
	"context"
	"time"
)

// Publisher sends a JSON-encodable payload to a topic and returns the
// message ID assigned by the broker.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Notification is published after a snapshot has been persisted.
type Notification struct {
	RunID       string    `json:"run_id"`
	URI         string    `json:"uri"`
	SHA256      string    `json:"sha256"`
	Shows       int       `json:"shows"`
	Errors      int       `json:"errors"`
	GeneratedAt time.Time `json:"generated_at"`
}
