package transport

import (
	"context"
	"time"

	"msgworker/internal/events"
)

type (
	// Receiver hands messages to the worker one at a time.
	// Get returns nil, nil when nothing is available.
	Receiver interface {
		Get(ctx context.Context) (*events.Envelope, error)
		Ack(ctx context.Context, env *events.Envelope) error
		Reject(ctx context.Context, env *events.Envelope) error
	}

	Sender interface {
		Send(ctx context.Context, env *events.Envelope) (*events.Envelope, error)
	}

	// Storage is the persistence the SQLite transport runs on.
	Storage interface {
		InsertMessage(ctx context.Context, env events.Envelope, delay time.Duration) error
		ClaimNext(ctx context.Context, queue string) (*events.Envelope, error)
		DeleteMessage(ctx context.Context, id string) error
	}
)
