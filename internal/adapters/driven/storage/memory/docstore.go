package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// It backs the ":memory:" storage path, where nothing survives the
// process.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// SaveDocument stores or replaces a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks stores the chunks for a document, replacing any prior set.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	grouped := make(map[string][]domain.Chunk)
	for _, chunk := range chunks {
		grouped[chunk.DocumentID] = append(grouped[chunk.DocumentID], chunk)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for docID, group := range grouped {
		sort.Slice(group, func(i, j int) bool { return group[i].Seq < group[j].Seq })
		s.chunks[docID] = group
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetChunk retrieves a single chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	docID, _, err := domain.ParseChunkID(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chunk := range s.chunks[docID] {
		if chunk.ID == id {
			return &chunk, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document in sequence order.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.chunks[documentID]
	chunks := make([]domain.Chunk, len(stored))
	copy(chunks, stored)
	return chunks, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}

// ListDocuments returns all documents ordered by ID.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// CountDocuments returns the number of stored documents.
func (s *DocumentStore) CountDocuments(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents), nil
}

// CountChunks returns the number of stored chunks.
func (s *DocumentStore) CountChunks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, chunks := range s.chunks {
		total += len(chunks)
	}
	return total, nil
}

// Close is a no-op for the in-memory store.
func (s *DocumentStore) Close() error {
	return nil
}
