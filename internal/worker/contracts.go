package worker

import (
	"context"

	"msgworker/internal/events"
)

type (
	// Handler processes one message. A returned error marks the message as failed.
	Handler interface {
		Dispatch(ctx context.Context, env *events.Envelope) error
	}

	// Publisher delivers worker events to subscribers.
	Publisher interface {
		Dispatch(event events.Event)
	}
)
