package driving

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// RetrievalService is the engine's primary surface: ingest documents,
// remove them, and answer queries with an assembled context window.
type RetrievalService interface {
	// Ingest chunks, embeds, persists, and indexes a document. It is
	// idempotent per document ID: any prior version is removed from
	// both indexes first, so no orphaned chunks survive an update.
	Ingest(ctx context.Context, doc domain.Document) (*domain.IngestResult, error)

	// Remove deletes a document and its chunks from the store and
	// both indexes together. Returns domain.ErrNotFound for an
	// unknown ID.
	Remove(ctx context.Context, documentID string) error

	// Query runs the full retrieval pipeline and assembles a context
	// window. An empty question or an empty index yields an empty
	// window, not an error.
	Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.ContextWindow, error)
}
