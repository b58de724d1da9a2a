package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
	"github.com/winnowlabs/winnow/internal/core/ports/driving"
	"github.com/winnowlabs/winnow/internal/logger"
)

var _ driving.SyncService = (*SyncService)(nil)

// SyncService pulls documents out of a connector and feeds them
// through the engine's Ingest, skipping documents whose content is
// unchanged since the last run. One pass runs at a time; a second
// caller gets ErrSyncInProgress instead of an interleaved report.
type SyncService struct {
	engine  driving.RetrievalService
	store   driven.DocumentStore
	running atomic.Bool
}

func NewSyncService(engine driving.RetrievalService, store driven.DocumentStore) (*SyncService, error) {
	if engine == nil || store == nil {
		return nil, fmt.Errorf("%w: sync service requires an engine and a store", domain.ErrConfiguration)
	}
	return &SyncService{engine: engine, store: store}, nil
}

// Sync runs one pass over the connector's documents. Unchanged
// documents (same content hash) are skipped unless force is set.
// Individual ingest failures are counted and logged, not fatal;
// cancellation aborts the run.
func (s *SyncService) Sync(ctx context.Context, conn driven.Connector, force bool) (*domain.SyncReport, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: connector is nil", domain.ErrInvalidInput)
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: another run is active", domain.ErrSyncInProgress)
	}
	defer s.running.Store(false)

	start := time.Now()
	report := &domain.SyncReport{
		RunID:  uuid.NewString(),
		Source: conn.Type(),
	}

	logger.Section("Sync")
	logger.Info("Source: %s (run %s)", report.Source, report.RunID)

	if err := conn.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate %s connector: %w", conn.Type(), err)
	}

	docsCh, errsCh := conn.Fetch(ctx)
	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			logger.Warn("Fetch error from %s: %v", conn.Type(), err)
			report.Failed++

		case doc, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			s.ingestOne(ctx, doc, force, report)
		}
	}

	report.Duration = time.Since(start)
	logger.Info("Sync complete: %d ingested, %d skipped, %d failed in %s",
		report.Ingested, report.Skipped, report.Failed, report.Duration.Round(time.Millisecond))
	return report, nil
}

// Watch runs an initial full sync and then keeps ingesting documents
// the connector reports as changed, until the context is cancelled.
func (s *SyncService) Watch(ctx context.Context, conn driven.WatchConnector) error {
	if conn == nil {
		return fmt.Errorf("%w: connector is nil", domain.ErrInvalidInput)
	}

	if _, err := s.Sync(ctx, conn, false); err != nil {
		return err
	}

	logger.Section("Watch")
	logger.Info("Watching %s for changes", conn.Type())

	docsCh, errsCh := conn.Watch(ctx)
	for docsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			logger.Warn("Watch error from %s: %v", conn.Type(), err)

		case doc, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			if _, err := s.engine.Ingest(ctx, doc); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logger.Warn("Watch: ingest %s failed: %v", doc.ID, err)
			} else {
				logger.Info("Watch: re-ingested %s", doc.ID)
			}
		}
	}
	return nil
}

// ingestOne handles a single fetched document, updating the report.
func (s *SyncService) ingestOne(ctx context.Context, doc domain.Document, force bool, report *domain.SyncReport) {
	if !force && s.unchanged(ctx, &doc) {
		logger.Debug("Skipping %s: content unchanged", doc.ID)
		report.Skipped++
		return
	}

	if _, err := s.engine.Ingest(ctx, doc); err != nil {
		logger.Warn("Ingest %s failed: %v", doc.ID, err)
		report.Failed++
		return
	}
	report.Ingested++
}

// unchanged reports whether the stored version of the document carries
// the same content hash as the fetched one.
func (s *SyncService) unchanged(ctx context.Context, doc *domain.Document) bool {
	existing, err := s.store.GetDocument(ctx, doc.ID)
	if err != nil {
		return false
	}

	hash := doc.ContentHash
	if hash == "" {
		hash = domain.HashContent(doc.Content)
	}
	return existing.ContentHash == hash
}
