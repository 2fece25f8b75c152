package realtime

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventLearningPathGenerated EventType = "learning_path.generated"
	EventCacheInvalidated      EventType = "generation_cache.invalidated"
)

// Event is the payload published on the learning channel.
type Event struct {
	Type   EventType      `json:"type"`
	UserID uuid.UUID      `json:"user_id,omitempty"`
	PathID uuid.UUID      `json:"path_id,omitempty"`
	At     time.Time      `json:"at"`
	Data   map[string]any `json:"data,omitempty"`
}
