package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matched no row.
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientCredits is returned when a debit would take the balance below zero.
	ErrInsufficientCredits = errors.New("insufficient credits")
	// ErrConflict is returned on unique constraint violations.
	ErrConflict = errors.New("record already exists")
	// ErrWebhookRejected is returned when an automation webhook answered with a non-2xx status.
	ErrWebhookRejected = errors.New("webhook rejected the request")
	// ErrWebhookNotConfigured is returned when the target webhook URL is empty.
	ErrWebhookNotConfigured = errors.New("webhook URL not configured")
)
