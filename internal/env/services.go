package environment

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"msgworker/internal/config"
	"msgworker/internal/events"
	"msgworker/internal/handlers"
	"msgworker/internal/listener"
	"msgworker/internal/metrics"
	"msgworker/internal/notify"
	"msgworker/internal/storage"
	"msgworker/internal/transport"
	"msgworker/internal/worker"
	"msgworker/internal/workers"
	"msgworker/internal/workers/janitor"
)

type Services struct {
	Consumer      *worker.Worker
	FailureLimit  *listener.StopOnFailureLimit
	WorkerManager *workers.Manager
}

func newServices(ctx context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var s Services

	storageImpl := storage.New(clients.SQLiteDB.DB)
	if err := storageImpl.EnsureSchema(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to prepare message storage")
	}

	queues := cfg.Worker.QueueNames()
	receivers := make(map[string]transport.Receiver, len(queues))
	for _, queue := range queues {
		receivers[queue] = transport.NewSQLite(storageImpl, queue)
	}

	router := handlers.NewRouter().
		Handle("log", handlers.LogHandler(logger.WithGroup("handler"))).
		Handle("fail", handlers.FailHandler())

	registry := events.NewRegistry()

	listenerLogger := listener.NewSlogLogger(logger.WithGroup("listener"))

	if cfg.Worker.FailureLimit > 0 {
		failureLimit, err := listener.NewStopOnFailureLimit(listener.FailureLimitOptions{
			MaximumFailures: cfg.Worker.FailureLimit,
			Logger:          listenerLogger,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create failure limit listener")
		}
		registry.Subscribe(failureLimit)
		s.FailureLimit = failureLimit
	}

	if cfg.Worker.MessageLimit > 0 {
		messageLimit, err := listener.NewStopOnMessageLimit(listener.MessageLimitOptions{
			MaximumMessages: cfg.Worker.MessageLimit,
			Logger:          listenerLogger,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create message limit listener")
		}
		registry.Subscribe(messageLimit)
	}

	if cfg.Worker.TimeLimit > 0 {
		timeLimit, err := listener.NewStopOnTimeLimit(listener.TimeLimitOptions{
			TimeLimit: cfg.Worker.TimeLimit,
			Logger:    listenerLogger,
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create time limit listener")
		}
		registry.Subscribe(timeLimit)
	}

	collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, errors.Wrap(err, "failed to register metrics")
	}
	registry.Subscribe(collector)

	if clients.TelegramBot != nil && len(cfg.Telegram.AdminIDs) > 0 {
		registry.Subscribe(notify.NewStopNotifier(clients.TelegramBot, cfg.Telegram.AdminIDs, cfg.Worker.Name, logger))
	}

	var limiter *rate.Limiter
	if cfg.Worker.RateLimit.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Worker.RateLimit.RPS), max(cfg.Worker.RateLimit.Burst, 1))
	}

	s.Consumer = worker.New(receivers, router, registry, logger.WithGroup("worker"), worker.Options{
		Name:      cfg.Worker.Name,
		IdleSleep: cfg.Worker.Sleep,
		Limiter:   limiter,
	})

	janitorWorker := janitor.NewWorker(
		storageImpl,
		queues,
		cfg.Worker.JanitorSchedule,
		cfg.Worker.RedeliverTimeout,
		logger.WithGroup("janitor"),
	)

	s.WorkerManager = workers.NewManager(logger, s.Consumer, janitorWorker)

	logger.Info("Services initialized",
		"receivers", queues,
		"failure_limit", cfg.Worker.FailureLimit,
		"message_limit", cfg.Worker.MessageLimit,
		"time_limit", cfg.Worker.TimeLimit,
		"subscribers", registry.Len())

	return &s, nil
}
