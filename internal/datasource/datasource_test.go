package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/derby-sim/internal/config"
	"github.com/yourusername/derby-sim/internal/logger"
	"github.com/yourusername/derby-sim/internal/models"
)

const rosterYAML = `
horses:
  - id: 6f1c1d4e-8f0a-4d43-9a53-2b7f3e0c1a11
    first_name: Gold
    last_name: Ship
    team_id: player
    age: 4
    stats: {speed: 900, stamina: 1000, power: 850, guts: 700, wisdom: 500}
    aptitude:
      surface: {turf: 9, dirt: 2}
      distance: {short: 1, mile: 3, medium: 8, long: 10}
      strategy: {runner: 2, leader: 4, betweener: 6, chaser: 9}
    condition: 80
    potential: 4500
    target_race: arima-kinen
    skills:
      - {name: Unrivaled, chance: 0.3, value: 0.5, ultimate: true}
  - first_name: Haru
    last_name: Urara
    age: 3
    stats: {speed: 300, stamina: 200, power: 250, guts: 400, wisdom: 200}
`

const rosterJSON = `{"horses": [{"first_name": "Twin", "last_name": "Turbo", "age": 5,
  "stats": {"speed": 700, "stamina": 300, "power": 500, "guts": 500, "wisdom": 300},
  "aptitude": {"strategy": {"runner": 10}}}]}`

// TestDecodeRosterYAML tests defaults and overrides of imported horses
func TestDecodeRosterYAML(t *testing.T) {
	horses, err := DecodeRoster([]byte(rosterYAML), nil)
	require.NoError(t, err)
	require.Len(t, horses, 2)

	gold := horses[0]
	assert.Equal(t, "6f1c1d4e-8f0a-4d43-9a53-2b7f3e0c1a11", gold.ID.String())
	assert.Equal(t, "Gold Ship", gold.Name())
	assert.Equal(t, models.TeamPlayer, gold.TeamID)
	assert.Equal(t, 80, gold.Condition)
	assert.Equal(t, 4500, gold.Potential)
	assert.Equal(t, "arima-kinen", gold.TargetRace)
	assert.Equal(t, models.StrategyChaser, gold.Aptitude.PreferredStrategy())
	require.Len(t, gold.Skills, 1)
	assert.True(t, gold.Skills[0].Ultimate)
	assert.Equal(t, gold.Stats.Overall(), gold.CurrentOvr)

	haru := horses[1]
	assert.Equal(t, models.TeamFreeAgent, haru.TeamID)
	assert.Equal(t, models.HorseStatusActive, haru.Status)
	assert.Equal(t, models.DefaultCondition, haru.Condition)
	assert.Equal(t, haru.Stats.Sum(), haru.Potential)
	assert.Equal(t, models.AptitudeDefault, haru.Aptitude.Surface.Turf)
	assert.NotNil(t, haru.History)
	assert.NotNil(t, haru.Skills)
}

// TestDecodeRosterJSON tests that JSON documents share the decoder
func TestDecodeRosterJSON(t *testing.T) {
	horses, err := DecodeRoster([]byte(rosterJSON), NewValidator())
	require.NoError(t, err)
	require.Len(t, horses, 1)
	assert.Equal(t, "Twin Turbo", horses[0].Name())
	assert.Equal(t, models.StrategyRunner, horses[0].Aptitude.PreferredStrategy())
}

// TestDecodeRosterRejects tests validation of bad records
func TestDecodeRosterRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"malformed", "horses: [", ErrInvalidData},
		{"missing name", "horses: [{age: 3}]", models.ErrInvalidHorse},
		{"too young", "horses: [{first_name: Foal, age: 1}]", models.ErrInvalidHorse},
		{"bad status", "horses: [{first_name: Odd, age: 3, status: sleeping}]", models.ErrInvalidHorse},
		{"condition out of range", "horses: [{first_name: Over, age: 3, condition: 140}]", models.ErrInvalidHorse},
		{"injured without weeks", "horses: [{first_name: Hurt, age: 3, status: injured}]", models.ErrInvalidHorse},
		{"bad id", "horses: [{id: nope, first_name: Bad, age: 3}]", models.ErrInvalidID},
		{"duplicate id", `horses:
  - {id: 6f1c1d4e-8f0a-4d43-9a53-2b7f3e0c1a11, first_name: One, age: 3}
  - {id: 6f1c1d4e-8f0a-4d43-9a53-2b7f3e0c1a11, first_name: Two, age: 3}`, models.ErrDuplicateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRoster([]byte(tt.doc), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestFileSource tests reading a roster from disk
func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rosterYAML), 0o600))

	src := NewFileSource(path)
	assert.Equal(t, "file:"+path, src.Name())

	horses, err := src.FetchRoster(context.Background())
	require.NoError(t, err)
	assert.Len(t, horses, 2)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.yaml")).FetchRoster(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, ErrCodeNotFound, srcErr.Code)
}

func fastClientConfig() HTTPClientConfig {
	cfg := DefaultHTTPClientConfig()
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 1000
	return cfg
}

// TestHTTPSourceFetch tests the happy path with auth header
func TestHTTPSourceFetch(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write([]byte(rosterYAML))
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(fastClientConfig(), logger.Discard())
	defer client.Close()
	src := NewHTTPSource(client, server.URL, "secret", logger.Discard())

	horses, err := src.FetchRoster(context.Background())
	require.NoError(t, err)
	assert.Len(t, horses, 2)
	assert.Equal(t, "Bearer secret", auth)
}

// TestHTTPSourceRetriesServerErrors tests that transient 503s are retried
func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(rosterJSON))
	}))
	defer server.Close()

	src := NewHTTPSource(NewRateLimitedHTTPClient(fastClientConfig(), logger.Discard()), server.URL, "", logger.Discard())

	horses, err := src.FetchRoster(context.Background())
	require.NoError(t, err)
	assert.Len(t, horses, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

// TestHTTPSourceStatusErrors tests mapping of non-retryable statuses
func TestHTTPSourceStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
		code   string
	}{
		{http.StatusUnauthorized, ErrAuthenticationFailed, ErrCodeAuthenticationFailed},
		{http.StatusNotFound, ErrNotFound, ErrCodeNotFound},
		{http.StatusTeapot, ErrInvalidData, ErrCodeInvalidData},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			src := NewHTTPSource(NewRateLimitedHTTPClient(fastClientConfig(), logger.Discard()), server.URL, "", logger.Discard())
			_, err := src.FetchRoster(context.Background())
			assert.ErrorIs(t, err, tt.want)

			var srcErr *SourceError
			require.True(t, errors.As(err, &srcErr))
			assert.Equal(t, tt.code, srcErr.Code)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "client errors are not retried")
		})
	}
}

// TestCircuitBreakerOpens tests that consecutive failures stop further requests
func TestCircuitBreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := fastClientConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, logger.Discard())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.Get(ctx, server.URL, nil)
		require.Error(t, err)
	}
	assert.True(t, client.CircuitOpen())

	_, err := client.Get(ctx, server.URL, nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// TestCircuitBreakerHalfOpens tests that the circuit lets a request through after the cooldown
func TestCircuitBreakerHalfOpens(t *testing.T) {
	var healthy atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastClientConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 1
	cfg.CircuitCooldown = 20 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, logger.Discard())

	_, err := client.Get(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.True(t, client.CircuitOpen())

	healthy.Store(true)
	time.Sleep(30 * time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, client.CircuitOpen())
}

// TestNewRosterSource tests construction from configuration
func TestNewRosterSource(t *testing.T) {
	src, err := NewRosterSource(config.RosterSourceConfig{Type: "file", Path: "roster.yaml"}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &FileSource{}, src)

	src, err = NewRosterSource(config.RosterSourceConfig{Type: "http", URL: "https://registry.example/horses", RequestsPerSecond: 2}, logger.Discard())
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	for _, bad := range []config.RosterSourceConfig{{}, {Type: "file"}, {Type: "http"}, {Type: "ftp"}} {
		_, err := NewRosterSource(bad, logger.Discard())
		assert.Error(t, err, bad.Type)
	}
}

// TestHTTPClientConfigFrom tests overlaying roster settings
func TestHTTPClientConfigFrom(t *testing.T) {
	cfg := HTTPClientConfigFrom(config.RosterSourceConfig{TimeoutSeconds: 3, RetryAttempts: 7, RequestsPerSecond: 0.5})
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, 0.5, cfg.RateLimit)

	assert.Equal(t, DefaultHTTPClientConfig(), HTTPClientConfigFrom(config.RosterSourceConfig{}))
}
