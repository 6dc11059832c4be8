package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"msgworker/internal/events"
)

const sendTimeout = 10 * time.Second

// StopNotifier tells the admins when a consumer has stopped.
type StopNotifier struct {
	telegram TelegramNotifier
	adminIDs []int64
	consumer string
	logger   *slog.Logger
	now      func() time.Time
}

var _ events.WorkerStoppedSubscriber = (*StopNotifier)(nil)

func NewStopNotifier(telegram TelegramNotifier, adminIDs []int64, consumer string, logger *slog.Logger) *StopNotifier {
	return &StopNotifier{
		telegram: telegram,
		adminIDs: adminIDs,
		consumer: consumer,
		logger:   logger,
		now:      time.Now,
	}
}

func (n *StopNotifier) OnWorkerStopped(e *events.WorkerStoppedEvent) {
	message := fmt.Sprintf(
		"Consumer stopped\n\n"+
			"Consumer: %s\n"+
			"Reason: %s\n"+
			"Time: %s",
		n.consumer,
		e.Reason,
		n.now().Format("2006-01-02 15:04:05"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	for _, adminID := range n.adminIDs {
		if err := n.telegram.SendMessage(ctx, adminID, message); err != nil {
			n.logger.Error("Failed to send stop notification to admin",
				"admin_id", adminID,
				"error", err)
		}
	}
}
