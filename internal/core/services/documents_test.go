package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

func newDocumentFixture(t *testing.T) (*DocumentService, *mockStore) {
	t.Helper()
	store := newMockStore()
	svc, err := NewDocumentService(store)
	require.NoError(t, err)
	return svc, store
}

func seedDocument(t *testing.T, store *mockStore, id, content string, chunks int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: id, Content: content}))
	for seq := 0; seq < chunks; seq++ {
		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{{
			ID:         domain.ChunkID(id, seq),
			DocumentID: id,
			Seq:        seq,
			Text:       content,
		}}))
	}
}

func TestNewDocumentService_RequiresStore(t *testing.T) {
	_, err := NewDocumentService(nil)

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestDocumentService_List(t *testing.T) {
	svc, store := newDocumentFixture(t)
	seedDocument(t, store, "beta", "second", 1)
	seedDocument(t, store, "alpha", "first", 1)

	docs, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "alpha", docs[0].ID)
	assert.Equal(t, "beta", docs[1].ID)
}

func TestDocumentService_Get(t *testing.T) {
	svc, store := newDocumentFixture(t)
	seedDocument(t, store, "alpha", "first", 1)

	doc, err := svc.Get(context.Background(), "alpha")

	require.NoError(t, err)
	assert.Equal(t, "alpha", doc.ID)
}

func TestDocumentService_GetUnknown(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	_, err := svc.Get(context.Background(), "ghost")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_GetEmptyID(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	_, err := svc.Get(context.Background(), "  ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_GetContent(t *testing.T) {
	svc, store := newDocumentFixture(t)
	seedDocument(t, store, "alpha", "the raw document text", 2)

	content, err := svc.GetContent(context.Background(), "alpha")

	require.NoError(t, err)
	assert.Equal(t, "the raw document text", content)
}

func TestDocumentService_GetChunksInSequenceOrder(t *testing.T) {
	svc, store := newDocumentFixture(t)
	seedDocument(t, store, "alpha", "text", 3)

	chunks, err := svc.GetChunks(context.Background(), "alpha")

	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for seq, chunk := range chunks {
		assert.Equal(t, seq, chunk.Seq)
		assert.Equal(t, domain.ChunkID("alpha", seq), chunk.ID)
	}
}

func TestDocumentService_GetChunksUnknownDocument(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	_, err := svc.GetChunks(context.Background(), "ghost")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
