package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Worker periodically returns messages that were delivered but never
// acknowledged (a consumer died mid-message) to their queue.
type Worker struct {
	storage          Storage
	queues           []string
	schedule         string
	redeliverTimeout time.Duration
	logger           *slog.Logger
	cron             *cron.Cron

	stopOnce sync.Once
	doneCh   chan struct{}
}

func NewWorker(
	storage Storage,
	queues []string,
	schedule string,
	redeliverTimeout time.Duration,
	logger *slog.Logger,
) *Worker {
	return &Worker{
		storage:          storage,
		queues:           queues,
		schedule:         schedule,
		redeliverTimeout: redeliverTimeout,
		logger:           logger,
		cron:             cron.New(),
		doneCh:           make(chan struct{}),
	}
}

func (w *Worker) Name() string {
	return "janitor"
}

func (w *Worker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("Panic in janitor worker", "panic", r)
			}
		}()
		if err := w.run(ctx); err != nil {
			w.logger.Error("Janitor worker failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule janitor worker: %w", err)
	}

	w.cron.Start()
	w.logger.Info("Janitor worker started",
		"schedule", w.schedule,
		"redeliver_timeout", w.redeliverTimeout)
	return nil
}

// Stop stops scheduling; Done closes once a running job has finished.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping janitor worker")
		stopped := w.cron.Stop()
		go func() {
			<-stopped.Done()
			close(w.doneCh)
		}()
	})
}

func (w *Worker) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Worker) run(ctx context.Context) error {
	released, err := w.storage.RedeliverStale(ctx, w.redeliverTimeout)
	if err != nil {
		return fmt.Errorf("redeliver stale messages: %w", err)
	}
	if released > 0 {
		w.logger.Warn("Redelivered stale messages", "count", released)
	}

	for _, queue := range w.queues {
		pending, err := w.storage.CountMessages(ctx, queue)
		if err != nil {
			w.logger.Error("Failed to count messages", "queue", queue, "error", err)
			continue
		}
		w.logger.Debug("Queue depth", "queue", queue, "pending", pending)
	}

	return nil
}
