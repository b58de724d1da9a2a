package mcp

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	window *domain.ContextWindow
	result *domain.IngestResult
	err    error
}

func (m *mockRetrievalService) Ingest(_ context.Context, _ domain.Document) (*domain.IngestResult, error) {
	return m.result, m.err
}

func (m *mockRetrievalService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockRetrievalService) Query(_ context.Context, _ string, _ domain.QueryOptions) (*domain.ContextWindow, error) {
	if m.window == nil && m.err == nil {
		return &domain.ContextWindow{}, nil
	}
	return m.window, m.err
}

// mockAdminService is a mock implementation of driving.AdminService.
type mockAdminService struct {
	stats  *domain.IndexStats
	report *domain.ConsistencyReport
	err    error
}

func (m *mockAdminService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockAdminService) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	return m.report, m.err
}

func (m *mockAdminService) Rebuild(_ context.Context) error {
	return m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	chunks    []domain.Chunk
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return m.chunks, m.err
}
