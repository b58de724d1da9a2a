package driving

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// AdminService exposes collection maintenance operations.
type AdminService interface {
	// Stats reports the current collection state.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// Verify checks the lockstep invariant between the two indexes.
	// Documents with a violation are quarantined: treated as
	// un-ingested and excluded from queries until re-ingested. The
	// returned error wraps domain.ErrConsistency when violations
	// were found.
	Verify(ctx context.Context) (*domain.ConsistencyReport, error)

	// Rebuild repopulates both in-memory indexes from the document
	// store, clearing any quarantine. Called at startup when a
	// durable store is configured.
	Rebuild(ctx context.Context) error
}
