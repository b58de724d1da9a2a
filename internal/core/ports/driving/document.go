package driving

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// DocumentService exposes read access to the ingested collection.
type DocumentService interface {
	// List returns all documents ordered by ID.
	List(ctx context.Context) ([]domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetContent returns the document's raw text.
	GetContent(ctx context.Context, documentID string) (string, error)

	// GetChunks returns the document's chunks in sequence order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)
}
