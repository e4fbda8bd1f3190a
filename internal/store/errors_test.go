package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("lookup: %w", ErrNotFound), true},
		{"ErrPackageNotFound", ErrPackageNotFound, true},
		{"wrapped ErrTagNotFound", fmt.Errorf("lookup: %w", ErrTagNotFound), true},
		{"ErrUserNotFound", ErrUserNotFound, true},
		{"ErrDuplicate", ErrDuplicate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(fmt.Errorf("insert tag: %w", ErrDuplicate)))
	assert.False(t, IsDuplicateError(ErrNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("package", "attach_tag", "failed to attach tag", cause)

	assert.Equal(t, "attach_tag operation on package failed: failed to attach tag: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("tag", "find_or_create", "empty name", nil)
	assert.Equal(t, "find_or_create operation on tag failed: empty name", bare.Error())
}

func TestEntityErrorsWrapNotFound(t *testing.T) {
	assert.Equal(t, "entity not found: package", ErrPackageNotFound.Error())
	assert.True(t, errors.Is(ErrTagNotFound, ErrNotFound))
}
