package listener

import (
	"time"

	"msgworker/internal/events"
)

const timeLimitStopTemplate = "Worker stopped due to time limit of {timeLimit}s exceeded"

type TimeLimitOptions struct {
	TimeLimit time.Duration
	Logger    Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// StopOnTimeLimit stops the worker on the first iteration that ends after
// TimeLimit has passed since the worker started.
type StopOnTimeLimit struct {
	timeLimit time.Duration
	logger    Logger
	now       func() time.Time

	endTime time.Time
}

var (
	_ events.WorkerStartedSubscriber = (*StopOnTimeLimit)(nil)
	_ events.WorkerRunningSubscriber = (*StopOnTimeLimit)(nil)
)

func NewStopOnTimeLimit(opts TimeLimitOptions) (*StopOnTimeLimit, error) {
	if opts.TimeLimit <= 0 {
		return nil, ErrInvalidMaximum
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &StopOnTimeLimit{
		timeLimit: opts.TimeLimit,
		logger:    opts.Logger,
		now:       now,
	}, nil
}

func (l *StopOnTimeLimit) OnWorkerStarted(_ *events.WorkerStartedEvent) {
	l.endTime = l.now().Add(l.timeLimit)
}

func (l *StopOnTimeLimit) OnWorkerRunning(e *events.WorkerRunningEvent) {
	// not started yet
	if l.endTime.IsZero() {
		return
	}
	if !l.now().After(l.endTime) {
		return
	}

	e.Worker.Stop()

	if l.logger != nil {
		l.logger.Info(timeLimitStopTemplate, map[string]any{
			"timeLimit": int(l.timeLimit.Seconds()),
		})
	}
}
