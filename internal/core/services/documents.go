package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
	"github.com/winnowlabs/winnow/internal/core/ports/driving"
)

var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes read access to the ingested collection. All
// writes go through the engine so the indexes stay in lockstep with
// the store.
type DocumentService struct {
	store driven.DocumentStore
}

func NewDocumentService(store driven.DocumentStore) (*DocumentService, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: document service requires a store", domain.ErrConfiguration)
	}
	return &DocumentService{store: store}, nil
}

// List returns all documents ordered by ID.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx)
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: document ID is empty", domain.ErrInvalidInput)
	}
	return s.store.GetDocument(ctx, documentID)
}

// GetContent returns the document's raw text. Chunk texts are not
// stitched back together here; overlap would duplicate the seams.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

// GetChunks returns the document's chunks in sequence order.
func (s *DocumentService) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("%w: document ID is empty", domain.ErrInvalidInput)
	}
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.store.GetChunks(ctx, documentID)
}
