package driven

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// LexicalIndex is the BM25 inverted index over chunk text.
//
// Implementations must be safe for concurrent readers; the engine
// serializes all writers and keeps this index in lockstep with the
// vector index, so callers never mutate it directly.
type LexicalIndex interface {
	// Add indexes a chunk's text.
	Add(ctx context.Context, chunk domain.Chunk) error

	// RemoveDocument drops every posting belonging to the document's
	// chunks and updates the collection statistics. Removing an
	// unknown document is a no-op.
	RemoveDocument(ctx context.Context, documentID string) error

	// Search scores the query against the index and returns at most
	// k hits, descending by raw BM25 score, ties broken by ascending
	// chunk ID.
	Search(ctx context.Context, query string, k int) ([]domain.ScoredHit, error)

	// Len returns the number of indexed chunks.
	Len() int

	// Terms returns the vocabulary size.
	Terms() int

	// ChunkIDs returns every indexed chunk ID in ascending order,
	// used by consistency verification.
	ChunkIDs() []string

	// Close releases resources.
	Close() error
}
