package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	u, err := NewUser("  Jane@Example.COM ", " Jane ")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane", u.Name)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, u.CreatedAt, u.UpdatedAt)
}

func TestNewUserRequiresEmail(t *testing.T) {
	t.Parallel()

	_, err := NewUser("   ", "Jane")
	assert.ErrorIs(t, err, ErrEmptyEmail)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	u := &User{Email: "a@example.com"}
	assert.ErrorIs(t, u.Validate(), ErrEmptyUserID)

	u.ID = uuid.New()
	assert.NoError(t, u.Validate())
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"minimum length", strings.Repeat("a", MinPasswordLength), nil},
		{"maximum length", strings.Repeat("a", MaxPasswordLength), nil},
		{"too short", strings.Repeat("a", MinPasswordLength-1), ErrPasswordTooShort},
		{"too long", strings.Repeat("a", MaxPasswordLength+1), ErrPasswordTooLong},
		{"empty", "", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
