package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
	"github.com/winnowlabs/winnow/internal/core/ports/driving"
)

// Compile-time checks that the mocks satisfy the ports.
var (
	_ driven.Embedder          = (*mockEmbedder)(nil)
	_ driven.DocumentStore     = (*mockStore)(nil)
	_ driven.LLMService        = (*mockLLM)(nil)
	_ driven.Connector         = (*mockConnector)(nil)
	_ driven.WatchConnector    = (*mockWatchConnector)(nil)
	_ driven.ConfigStore       = (*mockConfigStore)(nil)
	_ driving.RetrievalService = (*mockRetrieval)(nil)
)

// embedVocabulary is the mock embedding space: one dimension per term,
// so texts sharing terms land near each other in cosine space. The
// last dimension is reserved for out-of-vocabulary texts.
var embedVocabulary = []string{"cat", "mammal", "fur", "fish", "scale", "whisker", "ocean"}

// mockEmbedder embeds text as term counts over embedVocabulary. It is
// deterministic and cheap, which is all the engine requires of a
// provider.
type mockEmbedder struct {
	mu      sync.Mutex
	dims    int
	badDims int // when set, vectors come back with this size instead
	err     error
	calls   int
	batches [][]string
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dims: len(embedVocabulary) + 1}
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.batches = append(m.batches, append([]string(nil), texts...))
	if m.err != nil {
		return nil, m.err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.vectorFor(text)
	}
	return out, nil
}

func (m *mockEmbedder) vectorFor(text string) []float32 {
	dims := m.dims
	if m.badDims > 0 {
		dims = m.badDims
	}

	v := make([]float32, dims)
	lower := strings.ToLower(text)
	hit := false
	for i, term := range embedVocabulary {
		if i >= dims {
			break
		}
		if n := strings.Count(lower, term); n > 0 {
			v[i] = float32(n)
			hit = true
		}
	}
	if !hit && dims > 0 {
		v[dims-1] = 1
	}
	return v
}

func (m *mockEmbedder) Dimensions() int { return m.dims }

func (m *mockEmbedder) ModelName() string { return "mock-embed" }

func (m *mockEmbedder) Ping(context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockStore is an in-memory document store with per-operation failure
// injection.
type mockStore struct {
	mu     sync.Mutex
	docs   map[string]domain.Document
	chunks map[string]domain.Chunk

	saveDocErr    error
	saveChunksErr error
	getChunkErr   error
	deleteErr     error
}

func newMockStore() *mockStore {
	return &mockStore{
		docs:   make(map[string]domain.Document),
		chunks: make(map[string]domain.Chunk),
	}
}

func (m *mockStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveDocErr != nil {
		return m.saveDocErr
	}
	m.docs[doc.ID] = *doc
	return nil
}

func (m *mockStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveChunksErr != nil {
		return m.saveChunksErr
	}
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *mockStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getChunkErr != nil {
		return nil, m.getChunkErr
	}
	chunk, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

func (m *mockStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Chunk
	for _, c := range m.chunks {
		if c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (m *mockStore) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.docs, id)
	for cid, c := range m.chunks {
		if c.DocumentID == id {
			delete(m.chunks, cid)
		}
	}
	return nil
}

func (m *mockStore) ListDocuments(context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) CountDocuments(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs), nil
}

func (m *mockStore) CountChunks(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks), nil
}

func (m *mockStore) Close() error { return nil }

// forget drops a chunk from the store while leaving the indexes alone,
// simulating divergence between store and indexes.
func (m *mockStore) forget(chunkID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chunks, chunkID)
}

// stripEmbedding clears a stored chunk's embedding in place.
func (m *mockStore) stripEmbedding(chunkID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.chunks[chunkID]
	c.Embedding = nil
	m.chunks[chunkID] = c
}

// mockLLM returns canned query expansions.
type mockLLM struct {
	mu         sync.Mutex
	expansions []string
	err        error
	calls      int
}

func (m *mockLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return "", nil
}

func (m *mockLLM) ExpandQuery(context.Context, string, int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.expansions, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

func (m *mockLLM) Ping(context.Context) error { return nil }

func (m *mockLLM) Close() error { return nil }

// mockConnector streams a fixed set of documents and errors. When
// block is set, Fetch holds every document back until the channel is
// closed, so cancellation paths are deterministic.
type mockConnector struct {
	typeName    string
	docs        []domain.Document
	errs        []error
	validateErr error
	block       chan struct{}
}

func (m *mockConnector) Type() string {
	if m.typeName == "" {
		return "mock"
	}
	return m.typeName
}

func (m *mockConnector) Validate(context.Context) error { return m.validateErr }

func (m *mockConnector) Fetch(ctx context.Context) (<-chan domain.Document, <-chan error) {
	return m.stream(ctx, m.docs, m.errs)
}

func (m *mockConnector) stream(ctx context.Context, docs []domain.Document, errs []error) (<-chan domain.Document, <-chan error) {
	docsCh := make(chan domain.Document)
	errsCh := make(chan error)

	go func() {
		defer close(docsCh)
		defer close(errsCh)

		if m.block != nil {
			select {
			case <-m.block:
			case <-ctx.Done():
				return
			}
		}
		for _, err := range errs {
			select {
			case errsCh <- err:
			case <-ctx.Done():
				return
			}
		}
		for _, doc := range docs {
			select {
			case docsCh <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()

	return docsCh, errsCh
}

// mockWatchConnector additionally streams watch events.
type mockWatchConnector struct {
	mockConnector
	watchDocs []domain.Document
}

func (m *mockWatchConnector) Watch(ctx context.Context) (<-chan domain.Document, <-chan error) {
	return m.stream(ctx, m.watchDocs, nil)
}

// gateConnector signals when a sync run has entered Validate and holds
// it there until released, so overlapping runs can be sequenced.
type gateConnector struct {
	mockConnector
	entered chan struct{}
	release chan struct{}
}

func (g *gateConnector) Validate(ctx context.Context) error {
	close(g.entered)
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mockRetrieval records Ingest calls so connector flows can be tested
// without a live engine. failIDs makes specific documents fail.
type mockRetrieval struct {
	mu       sync.Mutex
	ingested []domain.Document
	failIDs  map[string]error
}

func newMockRetrieval() *mockRetrieval {
	return &mockRetrieval{failIDs: make(map[string]error)}
}

func (m *mockRetrieval) Ingest(_ context.Context, doc domain.Document) (*domain.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failIDs[doc.ID]; ok {
		return nil, err
	}
	m.ingested = append(m.ingested, doc)
	return &domain.IngestResult{DocumentID: doc.ID, Chunks: 1}, nil
}

func (m *mockRetrieval) Remove(context.Context, string) error { return nil }

func (m *mockRetrieval) Query(context.Context, string, domain.QueryOptions) (*domain.ContextWindow, error) {
	return &domain.ContextWindow{}, nil
}

func (m *mockRetrieval) ingestedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.ingested))
	for _, doc := range m.ingested {
		ids = append(ids, doc.ID)
	}
	return ids
}

// mockConfigStore is a map-backed config store.
type mockConfigStore struct {
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	if v, ok := m.values[key].(string); ok {
		return v
	}
	return ""
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	if v, ok := m.values[key].(bool); ok {
		return v
	}
	return false
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	switch v := m.values[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *mockConfigStore) Save() error { return nil }

func (m *mockConfigStore) Load() error { return nil }

func (m *mockConfigStore) Path() string { return "/tmp/mock-config.toml" }
