package listener

import (
	"errors"
	"sync/atomic"

	"msgworker/internal/events"
)

const (
	messageFailedTemplate    = "Message failed with {error}"
	failureLimitStopTemplate = "Worker stopped due to limit of {count} failed message(s) is reached"
)

// ErrInvalidMaximum is returned when a limit is not a positive integer.
var ErrInvalidMaximum = errors.New("maximum must be greater than 0")

// FailureLimitOptions configures StopOnFailureLimit.
type FailureLimitOptions struct {
	// MaximumFailures is the number of failed messages after which the worker is stopped.
	MaximumFailures int
	// Logger is optional. When nil nothing is logged.
	Logger Logger
}

// StopOnFailureLimit stops the worker once MaximumFailures messages have failed.
//
// Failures are counted in OnMessageFailed. The stop itself happens in
// OnWorkerRunning, so the worker finishes the iteration it is in before it is
// asked to stop. Once the limit is reached every following running event
// repeats the stop request and the info record; the worker's Stop is idempotent.
//
// The counter never resets for the lifetime of the listener.
type StopOnFailureLimit struct {
	maximumFailures int64
	logger          Logger

	failures atomic.Int64
}

var (
	_ events.MessageFailedSubscriber = (*StopOnFailureLimit)(nil)
	_ events.WorkerRunningSubscriber = (*StopOnFailureLimit)(nil)
)

// NewStopOnFailureLimit creates the listener. It must be subscribed to the
// registry of exactly the worker whose failures it should count.
func NewStopOnFailureLimit(opts FailureLimitOptions) (*StopOnFailureLimit, error) {
	if opts.MaximumFailures <= 0 {
		return nil, ErrInvalidMaximum
	}

	return &StopOnFailureLimit{
		maximumFailures: int64(opts.MaximumFailures),
		logger:          opts.Logger,
	}, nil
}

func (l *StopOnFailureLimit) OnMessageFailed(e *events.MessageFailedEvent) {
	l.failures.Add(1)

	if l.logger != nil {
		l.logger.Error(messageFailedTemplate, map[string]any{
			"error": e.FailureString(),
		})
	}
}

func (l *StopOnFailureLimit) OnWorkerRunning(e *events.WorkerRunningEvent) {
	if l.failures.Load() < l.maximumFailures {
		return
	}

	e.Worker.Stop()

	if l.logger != nil {
		l.logger.Info(failureLimitStopTemplate, map[string]any{
			"count": int(l.maximumFailures),
		})
	}
}

// Failures returns the number of failures counted so far.
func (l *StopOnFailureLimit) Failures() int {
	return int(l.failures.Load())
}

// LimitReached reports whether the next running event will stop the worker.
func (l *StopOnFailureLimit) LimitReached() bool {
	return l.failures.Load() >= l.maximumFailures
}
