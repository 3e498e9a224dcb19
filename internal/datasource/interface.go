// Package datasource imports horse rosters from files and remote registries.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/derby-sim/internal/models"
)

// RosterSource defines the interface for fetching horses from an external provider
type RosterSource interface {
	// FetchRoster retrieves every horse the source offers, normalized and validated
	FetchRoster(ctx context.Context) ([]*models.Horse, error)

	// Name returns the name of the source
	Name() string
}

// SourceError represents errors from roster source operations
type SourceError struct {
	Source  string // Source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("roster not found")
	ErrInvalidData          = errors.New("invalid roster data")
	ErrServerError          = errors.New("server error")
	ErrCircuitOpen          = errors.New("circuit breaker open")
)

// NewSourceError creates a new source error
func NewSourceError(source, code, message string, err error) *SourceError {
	return &SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
