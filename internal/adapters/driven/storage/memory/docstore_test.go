package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

func memChunk(documentID string, seq int) domain.Chunk {
	return domain.Chunk{
		ID:         domain.ChunkID(documentID, seq),
		DocumentID: documentID,
		Seq:        seq,
		Text:       fmt.Sprintf("chunk %d", seq),
		Start:      seq * 10,
		End:        seq*10 + 10,
		Embedding:  []float32{float32(seq), 0.5},
	}
}

func TestNewDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.documents)
	assert.NotNil(t, store.chunks)
}

func TestDocumentStore_SaveDocument_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:          "notes.md",
		Content:     "Cats are small domesticated mammals.",
		Source:      "filesystem",
		ContentHash: domain.HashContent("Cats are small domesticated mammals."),
		Metadata:    map[string]string{"path": "/notes/notes.md"},
	}

	err := store.SaveDocument(ctx, doc)
	require.NoError(t, err)

	saved, err := store.GetDocument(ctx, "notes.md")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, saved.ID)
	assert.Equal(t, doc.Content, saved.Content)
	assert.Equal(t, doc.Source, saved.Source)
	assert.Equal(t, doc.ContentHash, saved.ContentHash)
	assert.Equal(t, "/notes/notes.md", saved.Metadata["path"])
}

func TestDocumentStore_SaveDocument_Update(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	err := store.SaveDocument(ctx, &domain.Document{ID: "notes.md", Content: "original"})
	require.NoError(t, err)

	err = store.SaveDocument(ctx, &domain.Document{ID: "notes.md", Content: "updated"})
	require.NoError(t, err)

	saved, err := store.GetDocument(ctx, "notes.md")
	require.NoError(t, err)
	assert.Equal(t, "updated", saved.Content)

	count, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store := NewDocumentStore()

	doc, err := store.GetDocument(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, doc)
}

func TestDocumentStore_SaveChunks_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	err := store.SaveChunks(ctx, []domain.Chunk{
		memChunk("notes.md", 0),
		memChunk("notes.md", 1),
	})
	require.NoError(t, err)

	saved, err := store.GetChunks(ctx, "notes.md")
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, domain.ChunkID("notes.md", 0), saved[0].ID)
	assert.Equal(t, domain.ChunkID("notes.md", 1), saved[1].ID)
}

func TestDocumentStore_SaveChunks_Empty(t *testing.T) {
	store := NewDocumentStore()

	assert.NoError(t, store.SaveChunks(context.Background(), []domain.Chunk{}))
	assert.NoError(t, store.SaveChunks(context.Background(), nil))
}

func TestDocumentStore_SaveChunks_ReplacesPriorSet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	err := store.SaveChunks(ctx, []domain.Chunk{
		memChunk("notes.md", 0),
		memChunk("notes.md", 1),
		memChunk("notes.md", 2),
	})
	require.NoError(t, err)

	err = store.SaveChunks(ctx, []domain.Chunk{memChunk("notes.md", 0)})
	require.NoError(t, err)

	saved, err := store.GetChunks(ctx, "notes.md")
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestDocumentStore_SaveChunks_SortsBySequence(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	err := store.SaveChunks(ctx, []domain.Chunk{
		memChunk("notes.md", 2),
		memChunk("notes.md", 0),
		memChunk("notes.md", 1),
	})
	require.NoError(t, err)

	saved, err := store.GetChunks(ctx, "notes.md")
	require.NoError(t, err)
	require.Len(t, saved, 3)
	for seq, chunk := range saved {
		assert.Equal(t, seq, chunk.Seq)
	}
}

func TestDocumentStore_SaveChunks_MultipleDocuments(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	err := store.SaveChunks(ctx, []domain.Chunk{
		memChunk("a.md", 0),
		memChunk("b.md", 0),
		memChunk("a.md", 1),
	})
	require.NoError(t, err)

	aChunks, err := store.GetChunks(ctx, "a.md")
	require.NoError(t, err)
	assert.Len(t, aChunks, 2)

	bChunks, err := store.GetChunks(ctx, "b.md")
	require.NoError(t, err)
	assert.Len(t, bChunks, 1)
}

func TestDocumentStore_GetChunks_UnknownDocument(t *testing.T) {
	store := NewDocumentStore()

	chunks, err := store.GetChunks(context.Background(), "nonexistent")

	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_GetChunks_ReturnsCopy(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{memChunk("notes.md", 0)}))

	retrieved, err := store.GetChunks(ctx, "notes.md")
	require.NoError(t, err)
	retrieved[0].Text = "mutated"

	stored, err := store.GetChunks(ctx, "notes.md")
	require.NoError(t, err)
	assert.Equal(t, "chunk 0", stored[0].Text)
}

func TestDocumentStore_GetChunk_Success(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		memChunk("notes.md", 0),
		memChunk("notes.md", 1),
	}))

	retrieved, err := store.GetChunk(ctx, domain.ChunkID("notes.md", 1))

	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, 1, retrieved.Seq)
	assert.Equal(t, "chunk 1", retrieved.Text)
}

func TestDocumentStore_GetChunk_NotFound(t *testing.T) {
	store := NewDocumentStore()

	chunk, err := store.GetChunk(context.Background(), domain.ChunkID("ghost", 0))

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, chunk)
}

func TestDocumentStore_GetChunk_MalformedID(t *testing.T) {
	store := NewDocumentStore()

	_, err := store.GetChunk(context.Background(), "no-separator")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_DeleteDocument_CascadesChunks(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "notes.md", Content: "text"}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{memChunk("notes.md", 0)}))

	err := store.DeleteDocument(ctx, "notes.md")
	require.NoError(t, err)

	_, err = store.GetDocument(ctx, "notes.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.GetChunks(ctx, "notes.md")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_DeleteDocument_NonExistent(t *testing.T) {
	store := NewDocumentStore()

	assert.NoError(t, store.DeleteDocument(context.Background(), "nonexistent"))
}

func TestDocumentStore_ListDocuments_Empty(t *testing.T) {
	store := NewDocumentStore()

	docs, err := store.ListDocuments(context.Background())

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStore_ListDocuments_OrderedByID(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	for _, id := range []string{"zebra.md", "alpha.md", "mango.md"} {
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: id}))
	}

	docs, err := store.ListDocuments(ctx)

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "alpha.md", docs[0].ID)
	assert.Equal(t, "mango.md", docs[1].ID)
	assert.Equal(t, "zebra.md", docs[2].ID)
}

func TestDocumentStore_Counts(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "a.md"}))
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "b.md"}))
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		memChunk("a.md", 0),
		memChunk("a.md", 1),
		memChunk("b.md", 0),
	}))

	docs, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, docs)

	chunks, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, chunks)
}

func TestDocumentStore_Close(t *testing.T) {
	store := NewDocumentStore()

	assert.NoError(t, store.Close())
}

func TestDocumentStore_Concurrency_MixedOperations(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("doc-%02d.md", i)
		require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: id}))
		require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{memChunk(id, 0)}))
	}

	var wg sync.WaitGroup
	numOperations := 100

	wg.Add(numOperations)
	for i := 0; i < numOperations; i++ {
		go func(id int) {
			defer wg.Done()
			docID := fmt.Sprintf("doc-%02d.md", id%10)
			switch id % 5 {
			case 0:
				_ = store.SaveDocument(ctx, &domain.Document{ID: docID})
			case 1:
				_ = store.SaveChunks(ctx, []domain.Chunk{memChunk(docID, 0)})
			case 2:
				_, _ = store.GetDocument(ctx, docID)
			case 3:
				_, _ = store.GetChunks(ctx, docID)
			case 4:
				_, _ = store.ListDocuments(ctx)
			}
		}(i)
	}
	wg.Wait()

	// Should not panic or deadlock.
	count, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}
