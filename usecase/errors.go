package usecase

import (
	"errors"
	"fmt"

	"clip-and-ship/domain/repository"
)

var (
	// ErrConfiguration marks a missing or invalid server setting.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = repository.ErrNotFound
	// ErrInsufficientCredits is returned when a submission cannot be paid for.
	ErrInsufficientCredits = errors.New("Insufficient credits")
	// ErrReconnectRequired is returned when the stored YouTube token is unusable.
	ErrReconnectRequired = errors.New("YouTube connection expired; reconnect required")
	// ErrNotSupported is returned for platforms without an integration.
	ErrNotSupported = errors.New("not supported")
)

// ValidationError is a rejected input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
