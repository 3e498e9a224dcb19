package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby-sim/internal/logger"
	"github.com/yourusername/derby-sim/internal/models"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type seasonFunc func(ctx context.Context) (*models.SeasonState, error)

func (f seasonFunc) Current(ctx context.Context) (*models.SeasonState, error) { return f(ctx) }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "derby-sim", Version: "1.0.0", Logger: logger.Discard()})

	for _, path := range []string{"/health", "/live"} {
		rec := get(t, s.Handler(), path)
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var body HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, "derby-sim", body.Service)
	}
}

func TestReady(t *testing.T) {
	var storageErr error
	s := NewServer(Config{
		ServiceName: "derby-sim",
		Logger:      logger.Discard(),
		Storage:     pingFunc(func(context.Context) error { return storageErr }),
	})

	rec := get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "not ready until marked")

	s.SetReady(true)
	rec = get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)

	storageErr = errors.New("disk full")
	rec = get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "error: disk full", body.Checks["storage"])
}

func TestSeasonEndpoint(t *testing.T) {
	state := &models.SeasonState{Year: 2, Week: 33}
	var err error
	s := NewServer(Config{
		Logger: logger.Discard(),
		Season: seasonFunc(func(context.Context) (*models.SeasonState, error) { return state, err }),
	})

	rec := get(t, s.Handler(), "/season")
	require.Equal(t, http.StatusOK, rec.Code)
	var body SeasonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Year)
	assert.Equal(t, 33, body.Week)

	err = models.ErrSeasonNotStarted
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/season").Code)

	err = errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, get(t, s.Handler(), "/season").Code)
}

func TestMetricsMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("derby_sim_weeks_advanced_total 3\n"))
	})
	s := NewServer(Config{Logger: logger.Discard(), Metrics: metrics, MetricsPath: "/prom"})

	rec := get(t, s.Handler(), "/prom")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "weeks_advanced_total")

	assert.Equal(t, http.StatusNotFound, get(t, NewServer(Config{Logger: logger.Discard()}).Handler(), "/metrics").Code)
}
