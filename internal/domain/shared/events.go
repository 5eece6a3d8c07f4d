package shared

import (
	"context"
	"time"
)

// Event is a domain fact published after its transaction commits.
type Event struct {
	Type        string         `json:"type"`
	AggregateID string         `json:"aggregateId"`
	ActorID     string         `json:"actorId"`
	Data        map[string]any `json:"data,omitempty"`
	At          time.Time      `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Locker serializes work on a key, possibly across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
