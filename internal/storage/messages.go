package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"msgworker/internal/events"
)

const messagesTable = "messenger_messages"

var messageRowFields = fields(messageRow{})

type messageRow struct {
	ID          string     `db:"id"`
	QueueName   string     `db:"queue_name"`
	Type        string     `db:"type"`
	Body        []byte     `db:"body"`
	Headers     string     `db:"headers"`
	CreatedAt   time.Time  `db:"created_at"`
	AvailableAt time.Time  `db:"available_at"`
	DeliveredAt *time.Time `db:"delivered_at"`
}

func (m messageRow) ToModel() (*events.Envelope, error) {
	headers := map[string]string{}
	if m.Headers != "" {
		if err := json.Unmarshal([]byte(m.Headers), &headers); err != nil {
			return nil, fmt.Errorf("decode headers of message %s: %w", m.ID, err)
		}
	}

	return &events.Envelope{
		ID:          m.ID,
		Queue:       m.QueueName,
		Type:        m.Type,
		Body:        m.Body,
		Headers:     headers,
		CreatedAt:   m.CreatedAt,
		DeliveredAt: m.DeliveredAt,
	}, nil
}

// InsertMessage stores the envelope so it becomes available after delay.
func (s *storageImpl) InsertMessage(ctx context.Context, env events.Envelope, delay time.Duration) error {
	headers, err := json.Marshal(env.Headers)
	if err != nil {
		return fmt.Errorf("encode headers: %w", err)
	}
	if env.Headers == nil {
		headers = []byte("{}")
	}

	body := env.Body
	if body == nil {
		body = []byte{}
	}

	now := s.now()
	createdAt := env.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	params := map[string]interface{}{
		"id":           env.ID,
		"queue_name":   env.Queue,
		"type":         env.Type,
		"body":         body,
		"headers":      string(headers),
		"created_at":   createdAt.UTC(),
		"available_at": now.Add(delay),
	}

	q, args, err := s.stmpBuilder().
		Insert(messagesTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}

// ClaimNext marks the oldest available message of the queue as delivered and
// returns it. It returns nil when the queue has nothing to deliver.
func (s *storageImpl) ClaimNext(ctx context.Context, queue string) (*events.Envelope, error) {
	var claimed *events.Envelope

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		now := s.now()

		q, args, err := s.stmpBuilder().
			Select(messageRowFields).
			From(messagesTable).
			Where(sq.Eq{"queue_name": queue, "delivered_at": nil}).
			Where(sq.LtOrEq{"available_at": now}).
			OrderBy("available_at ASC", "created_at ASC").
			Limit(1).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}

		var row messageRow
		if err := tx.GetContext(ctx, &row, q, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("tx.GetContext: %w", err)
		}

		q, args, err = s.stmpBuilder().
			Update(messagesTable).
			Set("delivered_at", now).
			Where(sq.Eq{"id": row.ID, "delivered_at": nil}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		row.DeliveredAt = &now
		claimed, err = row.ToModel()
		return err
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}

// DeleteMessage removes a message. Deleting a missing message is not an error.
func (s *storageImpl) DeleteMessage(ctx context.Context, id string) error {
	q, args, err := s.stmpBuilder().
		Delete(messagesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}

// RedeliverStale makes messages that were delivered more than timeout ago
// available again and returns how many were released.
func (s *storageImpl) RedeliverStale(ctx context.Context, timeout time.Duration) (int64, error) {
	q, args, err := s.stmpBuilder().
		Update(messagesTable).
		Set("delivered_at", nil).
		Where(sq.NotEq{"delivered_at": nil}).
		Where(sq.Lt{"delivered_at": s.now().Add(-timeout)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected: %w", err)
	}

	return affected, nil
}

// CountMessages returns how many messages of the queue wait for delivery.
func (s *storageImpl) CountMessages(ctx context.Context, queue string) (int64, error) {
	q, args, err := s.stmpBuilder().
		Select("COUNT(*)").
		From(messagesTable).
		Where(sq.Eq{"queue_name": queue, "delivered_at": nil}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var count int64
	if err := s.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return count, nil
}
