package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/derby-sim/internal/models"
)

const maxRosterBytes = 16 << 20

// FileSource reads a roster document from disk
type FileSource struct {
	path      string
	validator *Validator
}

// NewFileSource creates a file-backed roster source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, validator: NewValidator()}
}

// Name implements RosterSource
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// FetchRoster implements RosterSource
func (s *FileSource) FetchRoster(ctx context.Context) ([]*models.Horse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewSourceError(s.Name(), ErrCodeNotFound, "roster file missing", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	horses, err := DecodeRoster(data, s.validator)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeInvalidData, "roster rejected", err)
	}
	return horses, nil
}

// HTTPSource fetches a roster document from a remote registry
type HTTPSource struct {
	client    *RateLimitedHTTPClient
	url       string
	apiKey    string
	validator *Validator
	logger    *logrus.Entry
}

// NewHTTPSource creates a registry-backed roster source
func NewHTTPSource(client *RateLimitedHTTPClient, url, apiKey string, logger *logrus.Logger) *HTTPSource {
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPSource{
		client:    client,
		url:       url,
		apiKey:    apiKey,
		validator: NewValidator(),
		logger:    logger.WithField("component", "roster_http"),
	}
}

// Name implements RosterSource
func (s *HTTPSource) Name() string {
	return "http:" + s.url
}

// FetchRoster implements RosterSource
func (s *HTTPSource) FetchRoster(ctx context.Context) ([]*models.Horse, error) {
	headers := map[string]string{"Accept": "application/json, application/yaml"}
	if s.apiKey != "" {
		headers["Authorization"] = "Bearer " + s.apiKey
	}

	resp, err := s.client.Get(ctx, s.url, headers)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if err := statusError(s.Name(), resp.StatusCode); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRosterBytes))
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeNetworkError, "failed to read body", err)
	}

	horses, err := DecodeRoster(data, s.validator)
	if err != nil {
		return nil, NewSourceError(s.Name(), ErrCodeInvalidData, "roster rejected", err)
	}

	s.logger.WithField("horses", len(horses)).Info("Roster fetched")
	return horses, nil
}

func statusError(source string, status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewSourceError(source, ErrCodeAuthenticationFailed, http.StatusText(status), ErrAuthenticationFailed)
	case status == http.StatusNotFound:
		return NewSourceError(source, ErrCodeNotFound, http.StatusText(status), ErrNotFound)
	case status == http.StatusTooManyRequests:
		return NewSourceError(source, ErrCodeRateLimitExceeded, http.StatusText(status), ErrRateLimitExceeded)
	case status >= 500:
		return NewSourceError(source, ErrCodeServerError, http.StatusText(status), ErrServerError)
	default:
		return NewSourceError(source, ErrCodeInvalidData, fmt.Sprintf("unexpected status %d", status), ErrInvalidData)
	}
}
