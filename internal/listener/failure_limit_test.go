package listener

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgworker/internal/events"
)

func TestStopOnFailureLimit_StopsWhenMaximumCountReached(t *testing.T) {
	tests := []struct {
		max        int
		shouldStop bool
	}{
		{max: 1, shouldStop: true},
		{max: 2, shouldStop: true},
		{max: 3, shouldStop: false},
		{max: 4, shouldStop: false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("max=%d", tt.max), func(t *testing.T) {
			worker := &fakeWorker{}
			running := &events.WorkerRunningEvent{Worker: worker, Idle: false}

			l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: tt.max})
			require.NoError(t, err)

			// three messages, two of them failed
			l.OnMessageFailed(failedEvent(errTrace))
			l.OnWorkerRunning(running)

			l.OnWorkerRunning(running)

			l.OnMessageFailed(failedEvent(errTrace))
			l.OnWorkerRunning(running)

			if tt.shouldStop {
				assert.GreaterOrEqual(t, worker.stops, 1)
			} else {
				assert.Equal(t, 0, worker.stops)
			}
			assert.Equal(t, 2, l.Failures())
		})
	}
}

func TestStopOnFailureLimit_StopsOnFirstRunningEventAfterThreshold(t *testing.T) {
	worker := &fakeWorker{}
	running := &events.WorkerRunningEvent{Worker: worker}

	l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: 2})
	require.NoError(t, err)

	l.OnMessageFailed(failedEvent(errTrace))
	l.OnWorkerRunning(running)
	assert.Equal(t, 0, worker.stops)
	assert.False(t, l.LimitReached())

	l.OnMessageFailed(failedEvent(errTrace))
	assert.True(t, l.LimitReached())
	// reaching the limit has no side effect by itself
	assert.Equal(t, 0, worker.stops)

	l.OnWorkerRunning(running)
	assert.Equal(t, 1, worker.stops)
}

func TestStopOnFailureLimit_RepeatsStopOnEveryIterationAfterLimit(t *testing.T) {
	logger := &recordingLogger{}
	worker := &fakeWorker{}
	running := &events.WorkerRunningEvent{Worker: worker, Idle: true}

	l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: 1, Logger: logger})
	require.NoError(t, err)

	l.OnMessageFailed(failedEvent(errTrace))
	l.OnMessageFailed(failedEvent(errTrace))
	l.OnWorkerRunning(running)
	l.OnWorkerRunning(running)
	l.OnWorkerRunning(running)

	assert.Equal(t, 3, worker.stops)

	infos := logger.byLevel("info")
	require.Len(t, infos, 3)
	for _, r := range infos {
		// the configured maximum, not the current failure count
		assert.Equal(t, map[string]any{"count": 1}, r.params)
	}
}

func TestStopOnFailureLimit_LogsMaximumCountReachedWhenLoggerIsGiven(t *testing.T) {
	logger := &recordingLogger{}
	worker := &fakeWorker{}

	l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: 1, Logger: logger})
	require.NoError(t, err)

	l.OnMessageFailed(failedEvent(errTrace))
	l.OnWorkerRunning(&events.WorkerRunningEvent{Worker: worker})

	infos := logger.byLevel("info")
	require.Len(t, infos, 1)
	assert.Equal(t, "Worker stopped due to limit of {count} failed message(s) is reached", infos[0].template)
	assert.Equal(t, map[string]any{"count": 1}, infos[0].params)
	assert.Equal(t, 1, worker.stops)
}

func TestStopOnFailureLimit_LogsErrorWhenLoggerIsGiven(t *testing.T) {
	logger := &recordingLogger{}
	worker := &fakeWorker{}

	l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: 1, Logger: logger})
	require.NoError(t, err)

	l.OnMessageFailed(failedEvent(errTrace))
	l.OnWorkerRunning(&events.WorkerRunningEvent{Worker: worker})

	errs := logger.byLevel("error")
	require.Len(t, errs, 1)
	assert.Equal(t, "Message failed with {error}", errs[0].template)
	assert.Equal(t, map[string]any{"error": "trace"}, errs[0].params)
}

func TestStopOnFailureLimit_OneErrorRecordPerFailure(t *testing.T) {
	logger := &recordingLogger{}

	l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: 10, Logger: logger})
	require.NoError(t, err)

	l.OnMessageFailed(failedEvent(errors.New("first")))
	l.OnMessageFailed(failedEvent(errors.New("second")))
	l.OnMessageFailed(failedEvent(nil))

	errs := logger.byLevel("error")
	require.Len(t, errs, 3)
	assert.Equal(t, "first", errs[0].params["error"])
	assert.Equal(t, "second", errs[1].params["error"])
	assert.Equal(t, "", errs[2].params["error"])
	assert.Empty(t, logger.byLevel("info"))
}

func TestStopOnFailureLimit_BelowLimitNeverStops(t *testing.T) {
	logger := &recordingLogger{}
	worker := &fakeWorker{}
	running := &events.WorkerRunningEvent{Worker: worker}

	l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: 3, Logger: logger})
	require.NoError(t, err)

	l.OnMessageFailed(failedEvent(errTrace))
	l.OnWorkerRunning(running)
	l.OnMessageFailed(failedEvent(errTrace))
	l.OnWorkerRunning(running)
	l.OnWorkerRunning(running)

	assert.Equal(t, 0, worker.stops)
	assert.Len(t, logger.byLevel("error"), 2)
	assert.Empty(t, logger.byLevel("info"))
}

func TestStopOnFailureLimit_WithoutLogger(t *testing.T) {
	worker := &fakeWorker{}

	l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: 1})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		l.OnMessageFailed(failedEvent(errTrace))
		l.OnWorkerRunning(&events.WorkerRunningEvent{Worker: worker})
	})
	assert.Equal(t, 1, worker.stops)
}

func TestStopOnFailureLimit_AnyThresholdProperty(t *testing.T) {
	for max := 1; max <= 6; max++ {
		for failures := 0; failures <= 8; failures++ {
			worker := &fakeWorker{}
			running := &events.WorkerRunningEvent{Worker: worker}

			l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: max})
			require.NoError(t, err)

			for i := 0; i < failures; i++ {
				l.OnMessageFailed(failedEvent(errTrace))
			}
			l.OnWorkerRunning(running)

			if failures >= max {
				assert.Equal(t, 1, worker.stops, "max=%d failures=%d", max, failures)
			} else {
				assert.Equal(t, 0, worker.stops, "max=%d failures=%d", max, failures)
			}
		}
	}
}

func TestStopOnFailureLimit_SharedAcrossGoroutines(t *testing.T) {
	l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: 1000})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.OnMessageFailed(failedEvent(errTrace))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, l.Failures())
	assert.True(t, l.LimitReached())
}

func TestNewStopOnFailureLimit_RejectsNonPositiveMaximum(t *testing.T) {
	for _, max := range []int{0, -1} {
		l, err := NewStopOnFailureLimit(FailureLimitOptions{MaximumFailures: max})
		assert.ErrorIs(t, err, ErrInvalidMaximum)
		assert.Nil(t, l)
	}
}
