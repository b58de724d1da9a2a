package driving

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
)

// SyncService drives connectors: it pulls documents from a source and
// feeds them through the retrieval engine's Ingest operation.
type SyncService interface {
	// Sync runs one pass over the connector's documents, skipping
	// those whose content hash is unchanged unless force is set.
	Sync(ctx context.Context, conn driven.Connector, force bool) (*domain.SyncReport, error)

	// Watch runs an initial Sync and then keeps ingesting documents
	// the connector reports as changed, until the context is
	// cancelled. Requires a WatchConnector.
	Watch(ctx context.Context, conn driven.WatchConnector) error
}
