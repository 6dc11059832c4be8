package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgworker/internal/events"
)

type sent struct {
	chatID int64
	text   string
}

type fakeTelegram struct {
	sent   []sent
	failOn int64
}

func (f *fakeTelegram) SendMessage(_ context.Context, chatID int64, text string) error {
	if chatID == f.failOn {
		return errors.New("chat not found")
	}
	f.sent = append(f.sent, sent{chatID: chatID, text: text})
	return nil
}

func TestStopNotifier(t *testing.T) {
	tg := &fakeTelegram{failOn: 2}
	n := NewStopNotifier(tg, []int64{1, 2, 3}, "consumer", slog.New(slog.NewTextHandler(io.Discard, nil)))
	n.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }

	n.OnWorkerStopped(&events.WorkerStoppedEvent{Reason: "stop requested"})

	require.Len(t, tg.sent, 2)
	assert.Equal(t, int64(1), tg.sent[0].chatID)
	assert.Equal(t, int64(3), tg.sent[1].chatID)
	assert.Equal(t,
		"Consumer stopped\n\nConsumer: consumer\nReason: stop requested\nTime: 2024-05-01 10:00:00",
		tg.sent[0].text)
}
