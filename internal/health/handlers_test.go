package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mahendra-dev/backend-bangunan/internal/health"
)

type stubChecker struct {
	dbErr    error
	redisErr error
}

func (s stubChecker) PingDB(context.Context, time.Duration) error    { return s.dbErr }
func (s stubChecker) PingRedis(context.Context, time.Duration) error { return s.redisErr }

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	health.Handler{}.Live(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h := health.Handler{Checker: stubChecker{}}
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var status map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		require.Equal(t, "ok", status["db"])
		require.Equal(t, "ok", status["redis"])
	})

	t.Run("database down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h := health.Handler{Checker: stubChecker{dbErr: errors.New("connection refused")}}
		h.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var status map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		require.Equal(t, "connection refused", status["db"])
		require.Equal(t, "ok", status["redis"])
	})

	t.Run("no checker configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		health.Handler{}.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
