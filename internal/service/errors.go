package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/pkgwatch/internal/store"
)

// PackageServiceError wraps errors from the package service with context.
type PackageServiceError struct {
	// Operation is the operation that failed (e.g., "create_package", "request_url_check")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for PackageServiceError.
func (e *PackageServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("package service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("package service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *PackageServiceError) Unwrap() error {
	return e.Err
}

// NewPackageServiceError creates a new PackageServiceError.
// Not-found sentinels are returned directly without wrapping.
func NewPackageServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, store.ErrPackageNotFound):
		return store.ErrPackageNotFound
	case errors.Is(err, store.ErrUserNotFound):
		return store.ErrUserNotFound
	}

	return &PackageServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
