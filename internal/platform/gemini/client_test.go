package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devschro/next-precedent/internal/config"
	"github.com/devschro/next-precedent/internal/generation"
)

func testLLMConfig(maxRetries int) config.LLMConfig {
	return config.LLMConfig{
		GeminiAPIKey:      "test-key",
		ModelName:         "gemini-2.0-flash",
		EmbeddingModel:    "text-embedding-004",
		EmbeddingDims:     768,
		MaxRetries:        maxRetries,
		RetryDelaySeconds: 1,
	}
}

func TestWithRetrySuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	result, err := withRetry(context.Background(), slog.Default(), testLLMConfig(3),
		func(ctx context.Context) (string, error) {
			calls++
			return "output", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "output", result)
	assert.Equal(t, 1, calls)
}

func TestWithRetryPermanentErrorNotRetried(t *testing.T) {
	t.Parallel()

	permanentErrs := []error{
		fmt.Errorf("%w: blocked", generation.ErrContentBlocked),
		fmt.Errorf("%w: garbage", generation.ErrInvalidResponse),
		fmt.Errorf("%w: bad input", generation.ErrInvalidConfig),
	}

	for _, permErr := range permanentErrs {
		calls := 0
		_, err := withRetry(context.Background(), slog.Default(), testLLMConfig(3),
			func(ctx context.Context) (string, error) {
				calls++
				return "", permErr
			})

		assert.ErrorIs(t, err, permErr)
		assert.Equal(t, 1, calls, "permanent errors must not be retried")
	}
}

func TestWithRetryTransientErrorExhaustsRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	_, err := withRetry(context.Background(), slog.Default(), testLLMConfig(0),
		func(ctx context.Context) (string, error) {
			calls++
			return "", fmt.Errorf("%w: connection reset", generation.ErrTransientFailure)
		})

	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Equal(t, 1, calls)
}

func TestWithRetryCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := withRetry(ctx, slog.Default(), testLLMConfig(2),
		func(ctx context.Context) (string, error) {
			return "", fmt.Errorf("%w: timeout", generation.ErrTransientFailure)
		})

	assert.ErrorIs(t, err, generation.ErrTransientFailure)
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.LLMConfig)
	}{
		{"missing API key", func(c *config.LLMConfig) { c.GeminiAPIKey = "" }},
		{"missing model name", func(c *config.LLMConfig) { c.ModelName = "" }},
		{"missing embedding model", func(c *config.LLMConfig) { c.EmbeddingModel = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testLLMConfig(0)
			tt.mutate(&cfg)

			_, err := NewClient(context.Background(), slog.Default(), cfg)
			assert.ErrorIs(t, err, generation.ErrInvalidConfig)
		})
	}
}

func TestNewClientNilLogger(t *testing.T) {
	t.Parallel()

	_, err := NewClient(context.Background(), nil, testLLMConfig(0))
	assert.Error(t, err)
}
