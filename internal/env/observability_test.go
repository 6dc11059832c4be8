package environment

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msgworker/internal/config"
	"msgworker/internal/infra/sqlite3"
)

func TestObservabilityEndpoints(t *testing.T) {
	db, err := sqlite3.New(context.Background())
	require.NoError(t, err)

	srv := initObservability(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), &Clients{SQLiteDB: db}, config.Config{})

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{path: "/livez", status: http.StatusOK, body: "OK"},
		{path: "/readyz", status: http.StatusOK, body: "Ready"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}

	t.Run("readyz with closed database", func(t *testing.T) {
		require.NoError(t, db.Close())

		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
