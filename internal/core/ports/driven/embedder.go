package driven

import "context"

// Embedder generates vector embeddings for text. The engine treats any
// failure, transient or permanent, as a per-call error; retry policy
// belongs to the caller, never inside the engine.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// The result has one vector per input, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable without running
	// inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
