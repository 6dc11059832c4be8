package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"msgworker/internal/events"
	"msgworker/internal/transport"
)

const defaultIdleSleep = time.Second

const (
	ReasonStopRequested   = "stop requested"
	ReasonContextCanceled = "context canceled"
)

var ErrAlreadyRunning = errors.New("worker already running")

type Options struct {
	// Name is used in logs. Defaults to "consumer".
	Name string
	// IdleSleep is how long to wait after an iteration that received nothing.
	IdleSleep time.Duration
	// Limiter throttles how often receivers are polled. Optional.
	Limiter *rate.Limiter
}

// Worker consumes messages from its receivers until it is asked to stop.
//
// Every loop iteration publishes a WorkerRunningEvent, so stop listeners get
// a chance to call Stop between messages. Stop never interrupts a message
// that is already being handled.
type Worker struct {
	receivers map[string]transport.Receiver
	names     []string
	handler   Handler
	events    Publisher
	logger    *slog.Logger
	opts      Options

	running  atomic.Bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

var _ events.Stopper = (*Worker)(nil)

func New(
	receivers map[string]transport.Receiver,
	handler Handler,
	publisher Publisher,
	logger *slog.Logger,
	opts Options,
) *Worker {
	if opts.Name == "" {
		opts.Name = "consumer"
	}
	if opts.IdleSleep < 0 {
		opts.IdleSleep = 0
	} else if opts.IdleSleep == 0 {
		opts.IdleSleep = defaultIdleSleep
	}

	names := lo.Keys(receivers)
	slices.Sort(names)

	return &Worker{
		receivers: receivers,
		names:     names,
		handler:   handler,
		events:    publisher,
		logger:    logger,
		opts:      opts,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (w *Worker) Name() string {
	return w.opts.Name
}

// Start runs the loop in the background.
func (w *Worker) Start(ctx context.Context) error {
	if w.running.Load() {
		return ErrAlreadyRunning
	}

	w.logger.Info("Starting consumer",
		"name", w.opts.Name,
		"receivers", w.names,
		"idle_sleep", w.opts.IdleSleep)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("Panic in consumer goroutine", "panic", r)
			}
		}()
		if err := w.Run(ctx); err != nil {
			w.logger.Error("Consumer failed", "error", err)
		}
	}()
	return nil
}

// Stop asks the loop to exit after the current iteration. It does not wait
// and may be called any number of times, including from event subscribers.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Done is closed once the loop has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Worker) stopRequested() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

// Run consumes messages until Stop is called or ctx is done.
// A worker can only run once.
func (w *Worker) Run(ctx context.Context) error {
	if !w.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(w.doneCh)

	w.events.Dispatch(&events.WorkerStartedEvent{Worker: w, Receivers: w.names})

	reason := w.loop(ctx)

	w.logger.Info("Consumer stopped", "name", w.opts.Name, "reason", reason)
	w.events.Dispatch(&events.WorkerStoppedEvent{Worker: w, Reason: reason})

	return nil
}

func (w *Worker) loop(ctx context.Context) string {
	for {
		if w.stopRequested() {
			return ReasonStopRequested
		}
		if ctx.Err() != nil {
			return ReasonContextCanceled
		}

		handled := false
		for _, name := range w.names {
			if w.opts.Limiter != nil {
				if err := w.opts.Limiter.Wait(ctx); err != nil {
					return ReasonContextCanceled
				}
			}

			env, err := w.receivers[name].Get(ctx)
			if err != nil {
				w.logger.Error("Failed to get message", "receiver", name, "error", err)
				continue
			}
			if env == nil {
				continue
			}

			handled = true
			w.handle(ctx, name, env)
			w.events.Dispatch(&events.WorkerRunningEvent{Worker: w, Idle: false})

			// start over from the first receiver so earlier ones keep priority
			break
		}

		if handled {
			continue
		}

		w.events.Dispatch(&events.WorkerRunningEvent{Worker: w, Idle: true})

		if w.stopRequested() {
			return ReasonStopRequested
		}
		select {
		case <-w.stopCh:
			return ReasonStopRequested
		case <-ctx.Done():
			return ReasonContextCanceled
		case <-time.After(w.opts.IdleSleep):
		}
	}
}

func (w *Worker) handle(ctx context.Context, receiverName string, env *events.Envelope) {
	w.events.Dispatch(&events.MessageReceivedEvent{Envelope: env, ReceiverName: receiverName})

	receiver := w.receivers[receiverName]
	start := time.Now()

	if err := w.call(ctx, env); err != nil {
		if rejectErr := receiver.Reject(ctx, env); rejectErr != nil {
			w.logger.Error("Failed to reject message",
				"receiver", receiverName,
				"message_id", env.ID,
				"error", rejectErr)
		}
		w.events.Dispatch(&events.MessageFailedEvent{Envelope: env, ReceiverName: receiverName, Err: err})
		return
	}

	if err := receiver.Ack(ctx, env); err != nil {
		w.events.Dispatch(&events.MessageFailedEvent{
			Envelope:     env,
			ReceiverName: receiverName,
			Err:          fmt.Errorf("ack: %w", err),
		})
		return
	}

	w.events.Dispatch(&events.MessageHandledEvent{
		Envelope:     env,
		ReceiverName: receiverName,
		Duration:     time.Since(start),
	})
}

// call runs the handler and turns a panic into an error.
func (w *Worker) call(ctx context.Context, env *events.Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return w.handler.Dispatch(ctx, env)
}
