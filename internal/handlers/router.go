package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"msgworker/internal/events"
)

var ErrNoHandler = errors.New("no handler for message type")

type HandlerFunc func(ctx context.Context, env *events.Envelope) error

// Router picks a handler by the envelope's Type.
type Router struct {
	handlers map[string]HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Handle registers fn for messages of the given type, replacing any previous one.
func (r *Router) Handle(messageType string, fn HandlerFunc) *Router {
	r.handlers[messageType] = fn
	return r
}

func (r *Router) Dispatch(ctx context.Context, env *events.Envelope) error {
	fn, ok := r.handlers[env.Type]
	if !ok {
		return fmt.Errorf("%w %q", ErrNoHandler, env.Type)
	}
	return fn(ctx, env)
}

// LogHandler writes the message body to the logger.
func LogHandler(logger *slog.Logger) HandlerFunc {
	return func(_ context.Context, env *events.Envelope) error {
		logger.Info("Message received",
			"id", env.ID,
			"queue", env.Queue,
			"type", env.Type,
			"body", string(env.Body))
		return nil
	}
}

// FailHandler always fails with the message body as the error text.
// Used to drill the failure limit of a consumer.
func FailHandler() HandlerFunc {
	return func(_ context.Context, env *events.Envelope) error {
		return fmt.Errorf("message %s failed on purpose: %s", env.ID, env.Body)
	}
}
