package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/phrazzld/pkgwatch/internal/config"
	"github.com/phrazzld/pkgwatch/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  slog.Level
		known bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := logger.ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, "level for %q", tt.in)
		assert.Equal(t, tt.known, ok, "known for %q", tt.in)
	}
}

func TestSetupWithWriter(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	buf := &logger.TestLogBuffer{}
	l, err := logger.SetupWithWriter(config.ServerConfig{LogLevel: "warn"}, buf)
	require.NoError(t, err)
	require.NotNil(t, l)

	l.Info("hidden")
	l.Warn("visible", "package_id", "abc")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "visible", entries[0]["msg"])
	assert.Equal(t, "abc", entries[0]["package_id"])

	// Setup installs the logger as the process default
	slog.Error("through default")
	logger.AssertLogContains(t, buf, "through default")
}

func TestContextLogger(t *testing.T) {
	buf, l := logger.NewTestLogger(t)

	ctx := logger.WithLogger(context.Background(), l.With("task_id", "t-1"))
	logger.FromContext(ctx).Info("from context")
	logger.AssertLogContains(t, buf, `"task_id":"t-1"`)

	fallback := slog.New(slog.DiscardHandler)
	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.Same(t, slog.Default(), logger.FromContextOrDefault(context.Background(), nil))
	assert.Equal(t, context.Background(), logger.WithLogger(context.Background(), nil))
}
