package driven

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// VectorIndex is the cosine-similarity index over chunk embeddings.
//
// Vectors are L2-normalized on insertion by the index itself, so the
// stored dot product equals cosine similarity. Dimensionality is fixed
// at construction; inserting or querying with a mismatched vector is a
// configuration error. Implementations must be safe for concurrent
// readers; the engine serializes writers.
type VectorIndex interface {
	// Add stores a chunk's embedding. The owning document is derived
	// from the chunk ID.
	Add(ctx context.Context, chunkID string, vector []float32) error

	// RemoveDocument drops every vector belonging to the document's
	// chunks. Removing an unknown document is a no-op.
	RemoveDocument(ctx context.Context, documentID string) error

	// Search returns at most k nearest neighbors, descending by
	// cosine similarity, ties broken by ascending chunk ID.
	Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredHit, error)

	// Len returns the number of stored vectors.
	Len() int

	// Dimensions returns the fixed vector size.
	Dimensions() int

	// ChunkIDs returns every stored chunk ID in ascending order,
	// used by consistency verification.
	ChunkIDs() []string

	// Close releases resources.
	Close() error
}
