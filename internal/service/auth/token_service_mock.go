package auth

import (
	"context"

	"github.com/google/uuid"
)

// MockTokenService is a function-field TokenService for handler and middleware tests.
type MockTokenService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*Claims, error)
}

var _ TokenService = (*MockTokenService)(nil)

// GenerateToken delegates to GenerateTokenFn, or returns a fixed token.
func (m *MockTokenService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return "mock-token-" + userID.String(), nil
}

// ValidateToken delegates to ValidateTokenFn, or rejects every token.
func (m *MockTokenService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return nil, ErrInvalidToken
}
