package listener

import (
	"msgworker/internal/events"
)

const messageLimitStopTemplate = "Worker stopped due to maximum count of {count} messages processed"

type MessageLimitOptions struct {
	MaximumMessages int
	Logger          Logger
}

// StopOnMessageLimit stops the worker after it has processed MaximumMessages
// messages. Only non-idle iterations are counted. The count starts over after
// each stop request.
type StopOnMessageLimit struct {
	maximumMessages int
	logger          Logger

	received int
}

var _ events.WorkerRunningSubscriber = (*StopOnMessageLimit)(nil)

func NewStopOnMessageLimit(opts MessageLimitOptions) (*StopOnMessageLimit, error) {
	if opts.MaximumMessages <= 0 {
		return nil, ErrInvalidMaximum
	}

	return &StopOnMessageLimit{
		maximumMessages: opts.MaximumMessages,
		logger:          opts.Logger,
	}, nil
}

func (l *StopOnMessageLimit) OnWorkerRunning(e *events.WorkerRunningEvent) {
	if e.Idle {
		return
	}

	l.received++
	if l.received < l.maximumMessages {
		return
	}

	l.received = 0
	e.Worker.Stop()

	if l.logger != nil {
		l.logger.Info(messageLimitStopTemplate, map[string]any{
			"count": l.maximumMessages,
		})
	}
}
