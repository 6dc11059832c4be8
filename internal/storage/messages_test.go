package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgworker/internal/events"
	"msgworker/internal/infra/sqlite3"
)

func newTestStorage(t *testing.T) (*storageImpl, *time.Time) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite3.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db.DB)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.EnsureSchema(ctx))
	return s, &now
}

func TestStorage_InsertAndClaim(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)

	require.NoError(t, s.InsertMessage(ctx, events.Envelope{
		ID:      "a",
		Queue:   "default",
		Type:    "log",
		Body:    []byte(`{"hello":"world"}`),
		Headers: map[string]string{"trace": "1"},
	}, 0))

	env, err := s.ClaimNext(ctx, "default")
	require.NoError(t, err)
	require.NotNil(t, env)

	assert.Equal(t, "a", env.ID)
	assert.Equal(t, "default", env.Queue)
	assert.Equal(t, "log", env.Type)
	assert.Equal(t, []byte(`{"hello":"world"}`), env.Body)
	assert.Equal(t, map[string]string{"trace": "1"}, env.Headers)
	assert.NotNil(t, env.DeliveredAt)

	// already delivered
	env, err = s.ClaimNext(ctx, "default")
	require.NoError(t, err)
	assert.Nil(t, env)
}

func TestStorage_ClaimRespectsQueueOrderAndDelay(t *testing.T) {
	ctx := context.Background()
	s, now := newTestStorage(t)

	require.NoError(t, s.InsertMessage(ctx, events.Envelope{ID: "later", Queue: "default", Type: "log"}, time.Minute))
	require.NoError(t, s.InsertMessage(ctx, events.Envelope{ID: "first", Queue: "default", Type: "log"}, 0))
	require.NoError(t, s.InsertMessage(ctx, events.Envelope{ID: "other", Queue: "emails", Type: "log"}, 0))

	env, err := s.ClaimNext(ctx, "default")
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "first", env.ID)

	env, err = s.ClaimNext(ctx, "default")
	require.NoError(t, err)
	assert.Nil(t, env, "delayed message must not be delivered early")

	*now = now.Add(2 * time.Minute)
	env, err = s.ClaimNext(ctx, "default")
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "later", env.ID)
}

func TestStorage_DeleteAndCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.InsertMessage(ctx, events.Envelope{ID: id, Queue: "default", Type: "log"}, 0))
	}

	count, err := s.CountMessages(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	env, err := s.ClaimNext(ctx, "default")
	require.NoError(t, err)
	require.NoError(t, s.DeleteMessage(ctx, env.ID))
	require.NoError(t, s.DeleteMessage(ctx, "missing"))

	count, err = s.CountMessages(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestStorage_RedeliverStale(t *testing.T) {
	ctx := context.Background()
	s, now := newTestStorage(t)

	require.NoError(t, s.InsertMessage(ctx, events.Envelope{ID: "a", Queue: "default", Type: "log"}, 0))

	_, err := s.ClaimNext(ctx, "default")
	require.NoError(t, err)

	released, err := s.RedeliverStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), released)

	*now = now.Add(2 * time.Hour)
	released, err = s.RedeliverStale(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	env, err := s.ClaimNext(ctx, "default")
	require.NoError(t, err)
	require.NotNil(t, env)
	assert.Equal(t, "a", env.ID)
}

func TestFields(t *testing.T) {
	assert.Equal(t,
		"id,queue_name,type,body,headers,created_at,available_at,delivered_at",
		fields(messageRow{}))
}
