// Package flat provides an exact in-memory vector index. Every search
// scans all stored vectors, which keeps results reproducible and is
// fast enough well past the corpus sizes a single workstation holds.
package flat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index stores L2-normalized vectors keyed by chunk ID. Cosine
// similarity reduces to a dot product against the normalized copies.
type Index struct {
	mu sync.RWMutex

	dims      int
	vectors   map[string][]float32
	docChunks map[string][]string
}

// New creates an empty index for vectors of the given dimensionality.
// The dimensionality is fixed for the life of the index.
func New(dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: vector dimensions must be positive, got %d", domain.ErrConfiguration, dims)
	}
	return &Index{
		dims:      dims,
		vectors:   make(map[string][]float32),
		docChunks: make(map[string][]string),
	}, nil
}

// Add stores a normalized copy of the vector under the chunk ID.
// Re-adding an existing ID replaces the stored vector.
func (idx *Index) Add(_ context.Context, chunkID string, vector []float32) error {
	if len(vector) != idx.dims {
		return fmt.Errorf("%w: vector has %d dimensions, index expects %d", domain.ErrConfiguration, len(vector), idx.dims)
	}

	docID, _, err := domain.ParseChunkID(chunkID)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	_, replacing := idx.vectors[chunkID]
	idx.vectors[chunkID] = normalize(vector)
	if !replacing {
		idx.docChunks[docID] = append(idx.docChunks[docID], chunkID)
	}
	return nil
}

// RemoveDocument drops every vector whose chunk ID belongs to the
// document. Removing an unknown document is a no-op.
func (idx *Index) RemoveDocument(_ context.Context, documentID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, chunkID := range idx.docChunks[documentID] {
		delete(idx.vectors, chunkID)
	}
	delete(idx.docChunks, documentID)
	return nil
}

// Search returns at most k hits by cosine similarity, descending,
// ties broken by ascending chunk ID. An empty index yields no hits
// and no error.
func (idx *Index) Search(_ context.Context, vector []float32, k int) ([]domain.ScoredHit, error) {
	if len(vector) != idx.dims {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d", domain.ErrConfiguration, len(vector), idx.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	query := normalize(vector)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.vectors) == 0 {
		return nil, nil
	}

	hits := make([]domain.ScoredHit, 0, len(idx.vectors))
	for chunkID, stored := range idx.vectors {
		hits = append(hits, domain.ScoredHit{
			ChunkID: chunkID,
			Score:   float64(dot(query, stored)),
			Source:  domain.HitSourceVector,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Dimensions returns the fixed vector dimensionality.
func (idx *Index) Dimensions() int {
	return idx.dims
}

// ChunkIDs returns every stored chunk ID in ascending order.
func (idx *Index) ChunkIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids := make([]string, 0, len(idx.vectors))
	for id := range idx.vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close drops the index contents.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.vectors = make(map[string][]float32)
	idx.docChunks = make(map[string][]string)
	return nil
}

// normalize returns an L2-normalized copy. A zero vector is returned
// as a zero copy rather than dividing by zero.
func normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
