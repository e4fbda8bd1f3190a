package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID = errors.New("user ID cannot be empty")
	ErrEmptyEmail  = errors.New("email cannot be empty")
)

// Password length limits. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 72
)

// Password validation errors
var (
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least %d characters long",
		ErrValidation, MinPasswordLength)
	ErrPasswordTooLong = fmt.Errorf("%w: password must be at most %d characters long",
		ErrValidation, MaxPasswordLength)
)

// User is a registered platform account. Authors and contributors may be
// linked to a user; only linked people receive notifications.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	// HashedPassword is empty for users created only to be linked to
	// authors and contributors; such users cannot log in.
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	return nil
}

// ValidatePassword checks a plaintext password against the length limits.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(password) > MaxPasswordLength:
		return ErrPasswordTooLong
	}
	return nil
}

// NewUser creates a new User with a fresh ID and timestamps.
// Returns an error if validation fails.
func NewUser(email, name string) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}
