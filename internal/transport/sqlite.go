package transport

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"msgworker/internal/events"
)

// DelayHeader holds the delivery delay in milliseconds.
const DelayHeader = "x-delay-ms"

// SQLite is a queue transport backed by the messenger_messages table.
// Each instance serves one queue name.
type SQLite struct {
	storage Storage
	queue   string
	now     func() time.Time
}

var (
	_ Receiver = (*SQLite)(nil)
	_ Sender   = (*SQLite)(nil)
)

func NewSQLite(storage Storage, queue string) *SQLite {
	return &SQLite{
		storage: storage,
		queue:   queue,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (t *SQLite) Queue() string {
	return t.queue
}

func (t *SQLite) Get(ctx context.Context) (*events.Envelope, error) {
	env, err := t.storage.ClaimNext(ctx, t.queue)
	if err != nil {
		return nil, errors.Wrapf(err, "claim message from queue %q", t.queue)
	}
	return env, nil
}

// Ack removes a handled message from the queue.
func (t *SQLite) Ack(ctx context.Context, env *events.Envelope) error {
	return errors.Wrapf(t.storage.DeleteMessage(ctx, env.ID), "ack message %s", env.ID)
}

// Reject removes a failed message from the queue. Retrying is up to the sender.
func (t *SQLite) Reject(ctx context.Context, env *events.Envelope) error {
	return errors.Wrapf(t.storage.DeleteMessage(ctx, env.ID), "reject message %s", env.ID)
}

// Send stores a copy of env in the queue and returns it with ID, queue and
// creation time filled in.
func (t *SQLite) Send(ctx context.Context, env *events.Envelope) (*events.Envelope, error) {
	if env.Type == "" {
		return nil, errors.New("message type is required")
	}

	sent := *env
	if sent.ID == "" {
		sent.ID = uuid.NewString()
	}
	sent.Queue = t.queue
	sent.CreatedAt = t.now()

	delay, err := parseDelay(sent.Headers)
	if err != nil {
		return nil, err
	}

	if err := t.storage.InsertMessage(ctx, sent, delay); err != nil {
		return nil, errors.Wrapf(err, "send message to queue %q", t.queue)
	}

	return &sent, nil
}

func parseDelay(headers map[string]string) (time.Duration, error) {
	raw, ok := headers[DelayHeader]
	if !ok || raw == "" {
		return 0, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms < 0 {
		return 0, errors.Errorf("invalid %s header %q", DelayHeader, raw)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
