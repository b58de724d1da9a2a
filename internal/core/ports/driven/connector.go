package driven

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// Connector fetches documents from a data source for bulk ingestion.
// Each connector type (filesystem, github) implements this interface.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks the connector is properly configured: the path
	// exists, the token works, and so on. Returns nil if ready.
	Validate(ctx context.Context) error

	// Fetch streams every document from the source. Both channels
	// are closed when the walk completes or the context is
	// cancelled. Documents carry their stable ID, raw text content,
	// and content hash; the engine decides what to (re)ingest.
	Fetch(ctx context.Context) (<-chan domain.Document, <-chan error)
}

// WatchConnector is a Connector that can additionally emit documents
// as the underlying source changes.
type WatchConnector interface {
	Connector

	// Watch streams changed documents until the context is
	// cancelled. Both channels are closed on return.
	Watch(ctx context.Context) (<-chan domain.Document, <-chan error)
}

// TokenProvider supplies access tokens for authenticated API calls.
// The GitHub connector reads a personal access token through it.
type TokenProvider interface {
	// GetToken returns a valid access token, or an error when none
	// is configured.
	GetToken(ctx context.Context) (string, error)
}
