package driven

import "context"

// LLMService provides language model operations for query expansion.
// This is an optional service - when nil, queries run unexpanded.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI (GPT models)
//   - Anthropic (Claude)
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ExpandQuery produces up to n reformulations of a search query
	// for multi-query retrieval. The original query is not included
	// in the result.
	ExpandQuery(ctx context.Context, query string, n int) ([]string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
