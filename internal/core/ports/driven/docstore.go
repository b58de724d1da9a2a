package driven

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// DocumentStore persists documents and their chunks, including the
// chunk embeddings so the in-memory indexes can be rebuilt at startup.
type DocumentStore interface {
	// SaveDocument stores or replaces a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores the chunks for a document, replacing any
	// prior set.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document in sequence
	// order. A document with no chunks yields an empty slice.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks. Deleting an
	// unknown document is a no-op.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents ordered by ID.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
