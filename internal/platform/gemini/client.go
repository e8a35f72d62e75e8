package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"google.golang.org/genai"

	"github.com/devschro/next-precedent/internal/config"
	"github.com/devschro/next-precedent/internal/generation"
)

// provider is recorded in model info alongside every generated output.
const provider = "google"

// Client implements the generation.Generator and generation.Embedder
// interfaces using Google's Gemini API.
type Client struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client
}

// NewClient creates a new Gemini-backed Client with the provided dependencies.
//
// Returns a properly initialized Client or an error if initialization fails.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.EmbeddingModel == "" {
		return nil, fmt.Errorf("%w: embedding model cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Client{
		logger: logger.With(slog.String("component", "gemini_client")),
		config: cfg,
		client: client,
	}, nil
}

// Ensure Client satisfies the generation boundary interfaces.
var (
	_ generation.Generator = (*Client)(nil)
	_ generation.Embedder  = (*Client)(nil)
)

// Generate implements generation.Generator.Generate
// It requests JSON-mode output and returns the raw response text, retrying
// transient API errors with exponential backoff.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", generation.ErrInvalidConfig)
	}

	return withRetry(ctx, c.logger, c.config, func(ctx context.Context) (string, error) {
		cfg := &genai.GenerateContentConfig{
			Temperature:      genai.Ptr(c.config.Temperature),
			ResponseMIMEType: "application/json",
		}

		resp, err := c.client.Models.GenerateContent(ctx, c.config.ModelName, genai.Text(prompt), cfg)
		if err != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}

		if resp == nil || len(resp.Candidates) == 0 {
			return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
		}

		if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return "", fmt.Errorf("%w: generation stopped by safety filters", generation.ErrContentBlocked)
		}

		text := resp.Text()
		if text == "" {
			return "", fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
		}

		return text, nil
	})
}

// EmbedText implements generation.Embedder.EmbedText
func (c *Client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", generation.ErrInvalidConfig)
	}

	raw, err := withRetry(ctx, c.logger, c.config, func(ctx context.Context) ([]float32, error) {
		resp, err := c.client.Models.EmbedContent(ctx, c.config.EmbeddingModel, genai.Text(text), nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}

		if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
			return nil, fmt.Errorf("%w: empty embedding response", generation.ErrInvalidResponse)
		}

		return resp.Embeddings[0].Values, nil
	})
	if err != nil {
		return nil, err
	}

	if c.config.EmbeddingDims > 0 && len(raw) != c.config.EmbeddingDims {
		return nil, fmt.Errorf("%w: embedding has %d dimensions, expected %d",
			generation.ErrInvalidResponse, len(raw), c.config.EmbeddingDims)
	}

	return raw, nil
}

// ModelInfo implements generation.Generator.ModelInfo
func (c *Client) ModelInfo() generation.ModelInfo {
	return generation.ModelInfo{
		Provider: provider,
		Model:    c.config.ModelName,
	}
}

// withRetry runs call with exponential backoff and jitter for transient
// errors. Permanent errors (content blocked, malformed response, invalid
// input) are returned immediately without retrying.
func withRetry[T any](
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
	call func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	maxRetries := cfg.MaxRetries
	baseDelaySeconds := cfg.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		result, err := call(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) ||
			errors.Is(err, generation.ErrInvalidConfig) {
			logger.WarnContext(ctx, "permanent model error, not retrying",
				slog.String("error", err.Error()))
			return zero, err
		}

		if attempt >= maxRetries {
			break
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		logger.InfoContext(ctx, "retrying model call after delay",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}

	return zero, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		generation.ErrTransientFailure, maxRetries, lastErr)
}
