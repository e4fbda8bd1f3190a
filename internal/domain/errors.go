// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidURL is returned when a package URL cannot be parsed as an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidNotificationType is returned when a notification type is not known.
	ErrInvalidNotificationType = errors.New("invalid notification type")
)
