package listener

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgworker/internal/events"
)

func TestStopOnTimeLimit(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start

	logger := &recordingLogger{}
	worker := &fakeWorker{}

	l, err := NewStopOnTimeLimit(TimeLimitOptions{
		TimeLimit: 10 * time.Second,
		Logger:    logger,
		Now:       func() time.Time { return now },
	})
	require.NoError(t, err)

	running := &events.WorkerRunningEvent{Worker: worker}

	// running events before the worker started are ignored
	l.OnWorkerRunning(running)
	assert.Equal(t, 0, worker.stops)

	l.OnWorkerStarted(&events.WorkerStartedEvent{Worker: worker})

	now = start.Add(10 * time.Second)
	l.OnWorkerRunning(running)
	assert.Equal(t, 0, worker.stops)

	now = start.Add(11 * time.Second)
	l.OnWorkerRunning(running)
	assert.Equal(t, 1, worker.stops)

	require.Len(t, logger.records, 1)
	assert.Equal(t, "info", logger.records[0].level)
	assert.Equal(t, map[string]any{"timeLimit": 10}, logger.records[0].params)
}

func TestNewStopOnTimeLimit_RejectsNonPositiveLimit(t *testing.T) {
	_, err := NewStopOnTimeLimit(TimeLimitOptions{})
	assert.ErrorIs(t, err, ErrInvalidMaximum)
}
