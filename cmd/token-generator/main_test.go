package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/config"
	"github.com/phrazzld/pkgwatch/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteToken(t *testing.T) {
	t.Parallel()

	cfg := config.AuthConfig{
		JWTSecret:            "token-generator-secret-32-chars-long!",
		TokenLifetimeMinutes: 10,
	}
	userID := uuid.New()
	var out bytes.Buffer

	require.NoError(t, writeToken(cfg, userID, &out))

	tokens, err := auth.NewTokenService(cfg)
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestRunRejectsBadUser(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	assert.ErrorContains(t, run([]string{"-user", "nope"}, &out), "non-nil UUID")
	assert.ErrorContains(t, run([]string{"-user", uuid.Nil.String()}, &out), "non-nil UUID")
	assert.Empty(t, out.String())
}
