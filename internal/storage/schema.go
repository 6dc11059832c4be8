package storage

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS messenger_messages (
	id           TEXT PRIMARY KEY,
	queue_name   TEXT NOT NULL,
	type         TEXT NOT NULL,
	body         BLOB NOT NULL,
	headers      TEXT NOT NULL DEFAULT '{}',
	created_at   DATETIME NOT NULL,
	available_at DATETIME NOT NULL,
	delivered_at DATETIME NULL
);
CREATE INDEX IF NOT EXISTS idx_messenger_messages_queue
	ON messenger_messages (queue_name, delivered_at, available_at);
`

// EnsureSchema creates the message table if it does not exist yet.
func (s *storageImpl) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create messenger schema: %w", err)
	}
	return nil
}
