package generation

import "context"

// Generator defines the interface for producing structured model output from
// a prompt. This interface serves as a boundary between the application core
// and external AI/LLM services, following the hexagonal architecture pattern.
type Generator interface {
	// Generate sends the prompt to the language model and returns the raw
	// response text. The implementation is expected to request JSON-mode
	// output; callers remain responsible for parsing and validating it.
	//
	// Returns an error if generation fails (see errors.go for specific types).
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelInfo returns provider and model identifiers describing the
	// backing model, for recording alongside generated output.
	ModelInfo() ModelInfo
}

// Embedder defines the interface for computing embedding vectors from text.
type Embedder interface {
	// EmbedText returns the embedding vector for the given text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// ModelInfo identifies the provider and model that produced an output.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
