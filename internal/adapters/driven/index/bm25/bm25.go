// Package bm25 provides an in-memory BM25 inverted index over chunk
// text. It is the lexical half of hybrid retrieval.
package bm25

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.LexicalIndex = (*Index)(nil)

// Default BM25 parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Config holds the scoring parameters. Zero values adopt the package
// defaults.
type Config struct {
	// K1 controls term-frequency saturation.
	K1 float64

	// B controls length normalization.
	B float64

	// Stopwords are excluded from indexing and querying.
	Stopwords []string
}

// Index is a thread-safe BM25 inverted index. Readers may run
// concurrently; writers are expected to be serialized by the engine.
type Index struct {
	mu sync.RWMutex

	k1        float64
	b         float64
	stopwords map[string]struct{}

	postings   map[string]map[string]int // term -> chunkID -> term frequency
	chunkTerms map[string][]string       // chunkID -> distinct terms
	chunkLens  map[string]int            // chunkID -> token count
	docChunks  map[string][]string       // documentID -> chunk IDs
	totalLen   int
}

// New creates an empty index with the given configuration.
func New(cfg Config) *Index {
	if cfg.K1 == 0 {
		cfg.K1 = DefaultK1
	}
	if cfg.B == 0 {
		cfg.B = DefaultB
	}

	stop := make(map[string]struct{}, len(cfg.Stopwords))
	for _, w := range cfg.Stopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	return &Index{
		k1:         cfg.K1,
		b:          cfg.B,
		stopwords:  stop,
		postings:   make(map[string]map[string]int),
		chunkTerms: make(map[string][]string),
		chunkLens:  make(map[string]int),
		docChunks:  make(map[string][]string),
	}
}

// Add indexes a chunk's text. Re-adding an existing chunk ID replaces
// its postings.
func (idx *Index) Add(_ context.Context, chunk domain.Chunk) error {
	tokens := idx.tokenize(chunk.Text)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.chunkLens[chunk.ID]; ok {
		idx.removeChunkLocked(chunk.ID)
	}

	freqs := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freqs[tok]++
	}

	terms := make([]string, 0, len(freqs))
	for term, tf := range freqs {
		plist, ok := idx.postings[term]
		if !ok {
			plist = make(map[string]int)
			idx.postings[term] = plist
		}
		plist[chunk.ID] = tf
		terms = append(terms, term)
	}

	idx.chunkTerms[chunk.ID] = terms
	idx.chunkLens[chunk.ID] = len(tokens)
	idx.docChunks[chunk.DocumentID] = append(idx.docChunks[chunk.DocumentID], chunk.ID)
	idx.totalLen += len(tokens)

	return nil
}

// RemoveDocument drops every posting belonging to the document's
// chunks. Removing an unknown document is a no-op.
func (idx *Index) RemoveDocument(_ context.Context, documentID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, chunkID := range idx.docChunks[documentID] {
		idx.removeChunkLocked(chunkID)
	}
	delete(idx.docChunks, documentID)

	return nil
}

// removeChunkLocked erases one chunk's postings. Caller holds the
// write lock. The docChunks entry is left to the caller because
// removal is always document-scoped or a replace-in-place.
func (idx *Index) removeChunkLocked(chunkID string) {
	for _, term := range idx.chunkTerms[chunkID] {
		plist := idx.postings[term]
		delete(plist, chunkID)
		if len(plist) == 0 {
			delete(idx.postings, term)
		}
	}
	idx.totalLen -= idx.chunkLens[chunkID]
	delete(idx.chunkTerms, chunkID)
	delete(idx.chunkLens, chunkID)
}

// Search scores the query against the index and returns at most k
// hits, descending by raw BM25 score, ties broken by ascending chunk
// ID. An empty query or empty index yields no hits and no error.
func (idx *Index) Search(_ context.Context, query string, k int) ([]domain.ScoredHit, error) {
	if k <= 0 {
		return nil, nil
	}

	tokens := idx.tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.chunkLens)
	if n == 0 {
		return nil, nil
	}
	avgLen := float64(idx.totalLen) / float64(n)

	scores := make(map[string]float64)
	for _, term := range tokens {
		plist, ok := idx.postings[term]
		if !ok {
			continue
		}
		df := float64(len(plist))
		idf := math.Log(1 + (float64(n)-df+0.5)/(df+0.5))
		for chunkID, tf := range plist {
			length := float64(idx.chunkLens[chunkID])
			norm := 1 - idx.b + idx.b*length/avgLen
			scores[chunkID] += idf * (float64(tf) * (idx.k1 + 1)) / (float64(tf) + idx.k1*norm)
		}
	}

	hits := make([]domain.ScoredHit, 0, len(scores))
	for chunkID, score := range scores {
		hits = append(hits, domain.ScoredHit{
			ChunkID: chunkID,
			Score:   score,
			Source:  domain.HitSourceLexical,
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

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunkLens)
}

// Terms returns the vocabulary size.
func (idx *Index) Terms() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.postings)
}

// ChunkIDs returns every indexed chunk ID in ascending order.
func (idx *Index) ChunkIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids := make([]string, 0, len(idx.chunkLens))
	for id := range idx.chunkLens {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close drops the index contents.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.postings = make(map[string]map[string]int)
	idx.chunkTerms = make(map[string][]string)
	idx.chunkLens = make(map[string]int)
	idx.docChunks = make(map[string][]string)
	idx.totalLen = 0
	return nil
}

// tokenize lowercases the text, splits on any rune that is not a
// letter or digit, and drops stopwords.
func (idx *Index) tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	if len(idx.stopwords) == 0 {
		return fields
	}

	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := idx.stopwords[f]; !stop {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
