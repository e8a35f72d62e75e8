package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devschro/next-precedent/internal/config"
)

func TestSetupReturnsLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: level})
		require.NoError(t, err, "level %q", level)
		require.NotNil(t, logger, "level %q", level)
	}
}

func TestSetupInvalidLevelFallsBack(t *testing.T) {
	logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: "shouty"})
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestFromContextRoundTrip(t *testing.T) {
	base := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := WithLogger(context.Background(), base)

	assert.Same(t, base, FromContext(ctx))
	assert.Same(t, base, FromContextOrDefault(ctx, nil))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	ctx := context.Background()

	assert.Same(t, slog.Default(), FromContext(ctx))

	def := slog.New(slog.NewTextHandler(os.Stderr, nil))
	assert.Same(t, def, FromContextOrDefault(ctx, def))
}
