package listener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgworker/internal/events"
)

func TestStopOnMessageLimit(t *testing.T) {
	tests := []struct {
		name       string
		max        int
		busy       int
		shouldStop bool
	}{
		{name: "below limit", max: 3, busy: 2, shouldStop: false},
		{name: "at limit", max: 3, busy: 3, shouldStop: true},
		{name: "limit of one", max: 1, busy: 1, shouldStop: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			worker := &fakeWorker{}

			l, err := NewStopOnMessageLimit(MessageLimitOptions{MaximumMessages: tt.max, Logger: logger})
			require.NoError(t, err)

			for i := 0; i < tt.busy; i++ {
				l.OnWorkerRunning(&events.WorkerRunningEvent{Worker: worker, Idle: false})
				// idle iterations are not counted
				l.OnWorkerRunning(&events.WorkerRunningEvent{Worker: worker, Idle: true})
			}

			if tt.shouldStop {
				assert.Equal(t, 1, worker.stops)
				require.Len(t, logger.records, 1)
				assert.Equal(t, "Worker stopped due to maximum count of {count} messages processed", logger.records[0].template)
				assert.Equal(t, map[string]any{"count": tt.max}, logger.records[0].params)
			} else {
				assert.Equal(t, 0, worker.stops)
				assert.Empty(t, logger.records)
			}
		})
	}
}

func TestNewStopOnMessageLimit_RejectsNonPositiveMaximum(t *testing.T) {
	_, err := NewStopOnMessageLimit(MessageLimitOptions{MaximumMessages: 0})
	assert.ErrorIs(t, err, ErrInvalidMaximum)
}
