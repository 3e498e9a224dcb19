package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateKey      = errors.New("duplicate key violation")
	ErrInvalidID         = errors.New("invalid ID format")
	ErrInvalidRaceConfig = errors.New("invalid race configuration")
	ErrUnknownRace       = errors.New("unknown race")
	ErrSeasonNotStarted  = errors.New("season state not initialised")
	ErrEmptyCalendarWeek = errors.New("no races scheduled this week")
)

// InvalidRaceError describes why a simulation request was rejected
type InvalidRaceError struct {
	Reason string
}

func (e *InvalidRaceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidRaceConfig.Error(), e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidRaceConfig
func (e *InvalidRaceError) Unwrap() error {
	return ErrInvalidRaceConfig
}

// NewInvalidRaceError creates an InvalidRaceError
func NewInvalidRaceError(format string, args ...interface{}) *InvalidRaceError {
	return &InvalidRaceError{Reason: fmt.Sprintf(format, args...)}
}

// ValidationError is a coded validation failure for imported or stored records
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

// NewValidationError creates a ValidationError
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// Errors
var (
	ErrInvalidHorse = NewValidationError("invalid_horse", "invalid horse data")
)
