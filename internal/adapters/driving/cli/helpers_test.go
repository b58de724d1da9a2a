package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/winnowlabs/winnow/internal/adapters/driven/storage/memory"
	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
	"github.com/winnowlabs/winnow/internal/core/services"
)

// Shared mocks for command tests. Each implements a driving port with
// canned data; error variants return assert.AnError so tests can
// check wrapping without caring about the cause.

// mockRetrievalService implements driving.RetrievalService.
type mockRetrievalService struct{}

func (m *mockRetrievalService) Ingest(_ context.Context, doc domain.Document) (*domain.IngestResult, error) {
	return &domain.IngestResult{
		DocumentID: doc.ID,
		Chunks:     3,
		Duration:   5 * time.Millisecond,
	}, nil
}

func (m *mockRetrievalService) Remove(_ context.Context, _ string) error {
	return nil
}

func (m *mockRetrievalService) Query(_ context.Context, _ string, _ domain.QueryOptions) (*domain.ContextWindow, error) {
	return &domain.ContextWindow{
		Snippets: []domain.Snippet{
			{
				DocumentID: "doc-1",
				ChunkID:    "doc-1:00000",
				Text:       "The scheduler assigns work to idle replicas first.",
				Start:      0,
				End:        50,
				Score:      0.92,
			},
			{
				DocumentID: "doc-2",
				ChunkID:    "doc-2:00001",
				Text:       "Replicas report their queue depth every second.",
				Start:      120,
				End:        167,
				Score:      0.54,
			},
		},
		Size:   97,
		Budget: 2000,
	}, nil
}

type mockRetrievalServiceError struct{}

func (m *mockRetrievalServiceError) Ingest(_ context.Context, _ domain.Document) (*domain.IngestResult, error) {
	return nil, assert.AnError
}

func (m *mockRetrievalServiceError) Remove(_ context.Context, _ string) error {
	return assert.AnError
}

func (m *mockRetrievalServiceError) Query(_ context.Context, _ string, _ domain.QueryOptions) (*domain.ContextWindow, error) {
	return nil, assert.AnError
}

type mockRetrievalServiceNotFound struct {
	mockRetrievalService
}

func (m *mockRetrievalServiceNotFound) Remove(_ context.Context, documentID string) error {
	return fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
}

// mockAdminService implements driving.AdminService.
type mockAdminService struct{}

func (m *mockAdminService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return &domain.IndexStats{
		Documents:      2,
		Chunks:         8,
		Terms:          120,
		Vectors:        8,
		Dimensions:     4,
		EmbeddingModel: "test-embed",
	}, nil
}

func (m *mockAdminService) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	return &domain.ConsistencyReport{}, nil
}

func (m *mockAdminService) Rebuild(_ context.Context) error {
	return nil
}

// mockAdminServiceDrift reports a lockstep violation.
type mockAdminServiceDrift struct{}

func (m *mockAdminServiceDrift) Stats(_ context.Context) (*domain.IndexStats, error) {
	return &domain.IndexStats{
		Documents:   2,
		Chunks:      8,
		Terms:       120,
		Vectors:     7,
		Dimensions:  4,
		Quarantined: 1,
	}, nil
}

func (m *mockAdminServiceDrift) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	report := &domain.ConsistencyReport{
		LexicalOnly: []string{"doc-1:00002"},
		Quarantined: []string{"doc-1"},
	}
	return report, fmt.Errorf("%w: 1 chunk missing from the vector index", domain.ErrConsistency)
}

func (m *mockAdminServiceDrift) Rebuild(_ context.Context) error {
	return nil
}

type mockAdminServiceError struct{}

func (m *mockAdminServiceError) Stats(_ context.Context) (*domain.IndexStats, error) {
	return nil, assert.AnError
}

func (m *mockAdminServiceError) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	return nil, assert.AnError
}

func (m *mockAdminServiceError) Rebuild(_ context.Context) error {
	return assert.AnError
}

// mockDocumentService implements driving.DocumentService.
type mockDocumentService struct{}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Document{
		{ID: "doc-1", Source: "filesystem", UpdatedAt: now},
		{ID: "doc-2", Source: "cli", UpdatedAt: now},
	}, nil
}

func (m *mockDocumentService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:          documentID,
		Content:     "This is the content of the test document.",
		Source:      "filesystem",
		ContentHash: domain.HashContent("This is the content of the test document."),
		Metadata:    map[string]string{"filename": "test.md"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return "This is the content of the test document.", nil
}

func (m *mockDocumentService) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	return []domain.Chunk{
		{ID: domain.ChunkID(documentID, 0), DocumentID: documentID, Seq: 0, Start: 0, End: 20},
		{ID: domain.ChunkID(documentID, 1), DocumentID: documentID, Seq: 1, Start: 15, End: 41},
	}, nil
}

type mockDocumentServiceEmpty struct{}

func (m *mockDocumentServiceEmpty) List(_ context.Context) ([]domain.Document, error) {
	return []domain.Document{}, nil
}

func (m *mockDocumentServiceEmpty) Get(_ context.Context, documentID string) (*domain.Document, error) {
	return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
}

func (m *mockDocumentServiceEmpty) GetContent(_ context.Context, documentID string) (string, error) {
	return "", fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
}

func (m *mockDocumentServiceEmpty) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
}

type mockDocumentServiceError struct{}

func (m *mockDocumentServiceError) List(_ context.Context) ([]domain.Document, error) {
	return nil, assert.AnError
}

func (m *mockDocumentServiceError) Get(_ context.Context, _ string) (*domain.Document, error) {
	return nil, assert.AnError
}

func (m *mockDocumentServiceError) GetContent(_ context.Context, _ string) (string, error) {
	return "", assert.AnError
}

func (m *mockDocumentServiceError) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, assert.AnError
}

// mockSyncService implements driving.SyncService and records the
// connector type it was handed.
type mockSyncService struct {
	syncedType string
}

func (m *mockSyncService) Sync(_ context.Context, conn driven.Connector, _ bool) (*domain.SyncReport, error) {
	m.syncedType = conn.Type()
	return &domain.SyncReport{
		RunID:    "run-1",
		Source:   conn.Type(),
		Ingested: 2,
		Skipped:  1,
		Duration: 10 * time.Millisecond,
	}, nil
}

func (m *mockSyncService) Watch(_ context.Context, conn driven.WatchConnector) error {
	m.syncedType = conn.Type()
	return context.Canceled
}

type mockSyncServiceError struct{}

func (m *mockSyncServiceError) Sync(_ context.Context, _ driven.Connector, _ bool) (*domain.SyncReport, error) {
	return nil, assert.AnError
}

func (m *mockSyncServiceError) Watch(_ context.Context, _ driven.WatchConnector) error {
	return assert.AnError
}

// setupTestServices installs happy-path mocks for every service and
// returns a cleanup that restores whatever was there before.
func setupTestServices() func() {
	oldRetrieval := retrievalService
	oldAdmin := adminService
	oldDocuments := documentService
	oldSync := syncService
	oldSettings := settingsService
	oldConfig := configStore

	store := memory.NewConfigStore()
	settings, _ := services.NewSettingsService(store)

	retrievalService = &mockRetrievalService{}
	adminService = &mockAdminService{}
	documentService = &mockDocumentService{}
	syncService = &mockSyncService{}
	settingsService = settings
	configStore = store

	return func() {
		retrievalService = oldRetrieval
		adminService = oldAdmin
		documentService = oldDocuments
		syncService = oldSync
		settingsService = oldSettings
		configStore = oldConfig
	}
}
