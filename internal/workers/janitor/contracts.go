package janitor

import (
	"context"
	"time"
)

type Storage interface {
	RedeliverStale(ctx context.Context, timeout time.Duration) (int64, error)
	CountMessages(ctx context.Context, queue string) (int64, error)
}
