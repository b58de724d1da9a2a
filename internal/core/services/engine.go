package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
	"github.com/winnowlabs/winnow/internal/core/ports/driving"
	"github.com/winnowlabs/winnow/internal/logger"
)

// Ensure Engine implements the interfaces.
var (
	_ driving.RetrievalService = (*Engine)(nil)
	_ driving.AdminService     = (*Engine)(nil)
)

// Engine orchestrates the retrieval pipeline end to end: chunk, embed,
// persist, index on ingest; embed, search, fuse, assemble on query.
//
// The engine is the only writer to the two indexes and mutates them
// together, keeping them in lockstep. Queries hold a read lock across
// both searches and hydration, so a query always observes one
// consistent snapshot; ingest and remove take the write lock and are
// fully serialized. Embedding provider calls never run under either
// lock.
type Engine struct {
	cfg      domain.Config
	store    driven.DocumentStore
	lexical  driven.LexicalIndex
	vector   driven.VectorIndex
	embedder driven.Embedder
	pipeline driven.PostProcessorPipeline
	llm      driven.LLMService

	mu sync.RWMutex

	// qmu guards quarantined separately because queries update it
	// while holding only the read lock.
	qmu         sync.Mutex
	quarantined map[string]struct{}
}

// NewEngine validates the configuration and wires the engine. The LLM
// service is optional and enables query expansion; everything else is
// required.
func NewEngine(
	cfg domain.Config,
	store driven.DocumentStore,
	lexical driven.LexicalIndex,
	vector driven.VectorIndex,
	embedder driven.Embedder,
	pipeline driven.PostProcessorPipeline,
	llm driven.LLMService,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil || lexical == nil || vector == nil || embedder == nil || pipeline == nil {
		return nil, fmt.Errorf("%w: engine requires a store, both indexes, an embedder, and a pipeline",
			domain.ErrConfiguration)
	}
	if d := embedder.Dimensions(); d > 0 && d != vector.Dimensions() {
		return nil, fmt.Errorf("%w: embedder produces %d-dimensional vectors, vector index expects %d",
			domain.ErrConfiguration, d, vector.Dimensions())
	}

	return &Engine{
		cfg:         cfg,
		store:       store,
		lexical:     lexical,
		vector:      vector,
		embedder:    embedder,
		pipeline:    pipeline,
		llm:         llm,
		quarantined: make(map[string]struct{}),
	}, nil
}

// Ingest chunks, embeds, persists, and indexes a document. Re-ingesting
// an existing ID removes the prior version first, so no orphaned chunks
// survive a content update. On any failure or cancellation the document
// ends up fully absent rather than half-indexed.
func (e *Engine) Ingest(ctx context.Context, doc domain.Document) (*domain.IngestResult, error) {
	start := time.Now()

	doc.ID = strings.TrimSpace(doc.ID)
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: document ID is empty", domain.ErrInvalidInput)
	}

	logger.Section("Ingest")
	logger.Debug("Document: %s (%d bytes)", doc.ID, len(doc.Content))

	doc.ContentHash = domain.HashContent(doc.Content)
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	// Chunking and embedding run before the write lock: chunking is
	// pure and embedding is the slow provider call.
	chunks, err := e.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("Chunks: %d", len(chunks))

	if err := e.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// A cancellation that arrived while waiting for the lock must not
	// start mutating; past this point the document commits or rolls
	// back as a whole.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	replaced := false
	if _, err := e.store.GetDocument(ctx, doc.ID); err == nil {
		replaced = true
		logger.Debug("Replacing prior version of %s", doc.ID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check existing document: %w", err)
	}

	if err := e.removeLocked(ctx, doc.ID); err != nil {
		return nil, err
	}

	if err := e.indexLocked(ctx, &doc, chunks); err != nil {
		e.rollbackLocked(doc.ID)
		return nil, err
	}

	e.clearQuarantine(doc.ID)

	logger.Info("Ingested %s: %d chunks in %s",
		doc.ID, len(chunks), time.Since(start).Round(time.Millisecond))

	return &domain.IngestResult{
		DocumentID: doc.ID,
		Chunks:     len(chunks),
		Replaced:   replaced,
		Duration:   time.Since(start),
	}, nil
}

// Remove deletes a document from the store and both indexes together.
func (e *Engine) Remove(ctx context.Context, documentID string) error {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return fmt.Errorf("%w: document ID is empty", domain.ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.store.GetDocument(ctx, documentID); err != nil {
		return err
	}
	if err := e.removeLocked(ctx, documentID); err != nil {
		return err
	}
	e.clearQuarantine(documentID)

	logger.Info("Removed document %s", documentID)
	return nil
}

// Query runs the retrieval pipeline: expand, embed, search both
// indexes with over-fetch, fuse, and assemble a context window under
// the budget. An empty question or empty index yields an empty window.
func (e *Engine) Query(ctx context.Context, question string, opts domain.QueryOptions) (*domain.ContextWindow, error) {
	logger.Section("Query")

	k := opts.K
	if k <= 0 {
		k = e.cfg.Query.K
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = e.cfg.Query.ContextBudget
	}

	question = strings.TrimSpace(question)
	if question == "" {
		logger.Debug("Empty question, returning empty window")
		return &domain.ContextWindow{Budget: budget}, nil
	}
	logger.Debug("Question: %q (k=%d, budget=%d)", question, k, budget)

	variants := e.expandQuestion(ctx, question)
	fetchK := k * e.cfg.Query.OverFetch
	logger.Debug("Over-fetching %d candidates per index across %d variant(s)", fetchK, len(variants))

	// Embed every variant before taking the read lock; provider calls
	// never run under it.
	vectors, err := e.embedVariants(ctx, variants)
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) || !e.cfg.Query.LexicalFallback {
			return nil, err
		}
		logger.Warn("Embedding failed, degrading to lexical-only retrieval: %v", err)
		vectors = nil
	}

	e.mu.RLock()
	fused, chunks, err := e.searchLocked(ctx, variants, vectors, fetchK, k)
	e.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	window := assembleWindow(fused, chunks, budget, e.cfg.Query.OverlapTolerance)
	logger.Info("Window: %d snippets, %d/%d characters", len(window.Snippets), window.Size, budget)
	return window, nil
}

// searchLocked runs both index searches for every query variant, fuses
// and merges the rankings, truncates to k, and hydrates the surviving
// candidates from the store. The caller holds the read lock, which is
// what makes the index views and the hydrated chunks one consistent
// snapshot.
func (e *Engine) searchLocked(
	ctx context.Context, variants []string, vectors [][]float32, fetchK, k int,
) ([]domain.FusedHit, map[string]domain.Chunk, error) {
	rankings := make([][]domain.FusedHit, 0, len(variants))

	for i, variant := range variants {
		lexHits, err := e.lexical.Search(ctx, variant, fetchK)
		if err != nil {
			return nil, nil, fmt.Errorf("lexical search: %w", err)
		}

		var vecHits []domain.ScoredHit
		if vectors != nil {
			vecHits, err = e.vector.Search(ctx, vectors[i], fetchK)
			if err != nil {
				return nil, nil, fmt.Errorf("vector search: %w", err)
			}
		}

		lexHits = e.dropQuarantined(lexHits)
		vecHits = e.dropQuarantined(vecHits)

		rankings = append(rankings, fuseHits(normalizeScores(lexHits), normalizeScores(vecHits), e.cfg.Fusion))
	}

	fused := mergeFused(rankings...)
	if len(fused) > k {
		fused = fused[:k]
	}

	chunks := make(map[string]domain.Chunk, len(fused))
	for _, f := range fused {
		chunk, err := e.store.GetChunk(ctx, f.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Indexed but missing from the store: the lockstep
				// invariant is broken for this document. Quarantine it
				// and keep the query alive.
				e.quarantineChunk(f.ChunkID)
				continue
			}
			return nil, nil, fmt.Errorf("hydrate chunk %s: %w", f.ChunkID, err)
		}
		chunks[f.ChunkID] = *chunk
	}

	return fused, chunks, nil
}

// Stats reports the current collection state.
func (e *Engine) Stats(ctx context.Context) (*domain.IndexStats, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	docs, err := e.store.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	chunks, err := e.store.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	e.qmu.Lock()
	quarantined := len(e.quarantined)
	e.qmu.Unlock()

	return &domain.IndexStats{
		Documents:      docs,
		Chunks:         chunks,
		Terms:          e.lexical.Terms(),
		Vectors:        e.vector.Len(),
		Dimensions:     e.vector.Dimensions(),
		EmbeddingModel: e.embedder.ModelName(),
		Quarantined:    quarantined,
	}, nil
}

// Verify cross-checks the two indexes. A chunk ID present in only one
// index violates the lockstep invariant; such documents are
// quarantined so queries stop serving them. A dirty report also
// returns an error wrapping domain.ErrConsistency.
func (e *Engine) Verify(_ context.Context) (*domain.ConsistencyReport, error) {
	e.mu.RLock()
	lexIDs := e.lexical.ChunkIDs()
	vecIDs := e.vector.ChunkIDs()
	e.mu.RUnlock()

	lexSet := make(map[string]struct{}, len(lexIDs))
	for _, id := range lexIDs {
		lexSet[id] = struct{}{}
	}
	vecSet := make(map[string]struct{}, len(vecIDs))
	for _, id := range vecIDs {
		vecSet[id] = struct{}{}
	}

	report := &domain.ConsistencyReport{}
	for _, id := range lexIDs {
		if _, ok := vecSet[id]; !ok {
			report.LexicalOnly = append(report.LexicalOnly, id)
		}
	}
	for _, id := range vecIDs {
		if _, ok := lexSet[id]; !ok {
			report.VectorOnly = append(report.VectorOnly, id)
		}
	}

	if report.Clean() {
		logger.Debug("Verify: indexes in lockstep (%d chunks)", len(lexIDs))
		return report, nil
	}

	affected := make(map[string]struct{})
	for _, id := range report.LexicalOnly {
		if docID, _, err := domain.ParseChunkID(id); err == nil {
			affected[docID] = struct{}{}
		}
	}
	for _, id := range report.VectorOnly {
		if docID, _, err := domain.ParseChunkID(id); err == nil {
			affected[docID] = struct{}{}
		}
	}

	e.qmu.Lock()
	for docID := range affected {
		e.quarantined[docID] = struct{}{}
	}
	e.qmu.Unlock()

	report.Quarantined = make([]string, 0, len(affected))
	for docID := range affected {
		report.Quarantined = append(report.Quarantined, docID)
	}
	sort.Strings(report.Quarantined)

	logger.Warn("Verify: %d lexical-only, %d vector-only chunk(s); quarantined %d document(s)",
		len(report.LexicalOnly), len(report.VectorOnly), len(report.Quarantined))

	return report, fmt.Errorf("%w: %d chunk(s) present in only one index",
		domain.ErrConsistency, len(report.LexicalOnly)+len(report.VectorOnly))
}

// Rebuild empties both indexes and repopulates them from the store
// using the persisted embeddings, then re-derives the quarantine set.
// A document whose chunks cannot be restored is quarantined rather
// than failing the whole rebuild.
func (e *Engine) Rebuild(ctx context.Context) error {
	logger.Section("Rebuild")

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.clearIndexesLocked(ctx); err != nil {
		return err
	}

	e.qmu.Lock()
	e.quarantined = make(map[string]struct{})
	e.qmu.Unlock()

	docs, err := e.store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	restored := 0
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		docID := docs[i].ID

		chunks, err := e.store.GetChunks(ctx, docID)
		if err != nil {
			return fmt.Errorf("load chunks for %s: %w", docID, err)
		}

		if err := e.restoreLocked(ctx, chunks); err != nil {
			logger.Warn("Rebuild: quarantining %s: %v", docID, err)
			e.rollbackLocked(docID)
			e.quarantineDoc(docID)
			continue
		}
		restored++
	}

	logger.Info("Rebuild: restored %d of %d document(s)", restored, len(docs))
	return nil
}

// embedChunks fills in chunk embeddings with one batched provider
// call, bounded by the configured per-call timeout. There is no retry
// here; retry policy belongs to the caller.
func (e *Engine) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	ectx, cancel := e.embedContext(ctx)
	defer cancel()

	vectors, err := e.embedder.EmbedBatch(ectx, texts)
	if err != nil {
		return fmt.Errorf("%w: embed %d chunk(s): %w", domain.ErrProvider, len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
			domain.ErrProvider, len(vectors), len(chunks))
	}

	want := e.vector.Dimensions()
	for i, v := range vectors {
		if len(v) != want {
			return fmt.Errorf("%w: chunk %s embedding has %d dimensions, index expects %d",
				domain.ErrConfiguration, chunks[i].ID, len(v), want)
		}
		chunks[i].Embedding = v
	}
	return nil
}

// embedVariants embeds every query variant with one batched call under
// the configured timeout.
func (e *Engine) embedVariants(ctx context.Context, variants []string) ([][]float32, error) {
	ectx, cancel := e.embedContext(ctx)
	defer cancel()

	vectors, err := e.embedder.EmbedBatch(ectx, variants)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrProvider, err)
	}
	if len(vectors) != len(variants) {
		return nil, fmt.Errorf("%w: embedder returned %d vectors for %d queries",
			domain.ErrProvider, len(vectors), len(variants))
	}

	want := e.vector.Dimensions()
	for _, v := range vectors {
		if len(v) != want {
			return nil, fmt.Errorf("%w: query embedding has %d dimensions, index expects %d",
				domain.ErrConfiguration, len(v), want)
		}
	}
	return vectors, nil
}

// embedContext derives the provider-call context. A caller deadline
// still applies; the configured timeout only tightens it.
func (e *Engine) embedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.EmbedTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.EmbedTimeout)
}

// expandQuestion returns the question plus any LLM reformulations.
// Expansion is best-effort: an unavailable or failing LLM leaves the
// original question alone.
func (e *Engine) expandQuestion(ctx context.Context, question string) []string {
	variants := []string{question}
	if !e.cfg.Query.ExpandQueries || e.llm == nil {
		return variants
	}

	expanded, err := e.llm.ExpandQuery(ctx, question, e.cfg.Query.ExpansionCount)
	if err != nil {
		logger.Warn("Query expansion failed: %v (using original query)", err)
		return variants
	}
	for _, v := range expanded {
		v = strings.TrimSpace(v)
		if v != "" && !strings.EqualFold(v, question) {
			variants = append(variants, v)
		}
	}

	logger.Debug("Query variants: %d", len(variants))
	return variants
}

// indexLocked persists and indexes a freshly chunked document. The
// caller holds the write lock and has already removed any prior
// version.
func (e *Engine) indexLocked(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if err := e.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := e.store.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	for _, chunk := range chunks {
		if err := e.lexical.Add(ctx, chunk); err != nil {
			return fmt.Errorf("index chunk %s: %w", chunk.ID, err)
		}
		if err := e.vector.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return fmt.Errorf("add vector %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// restoreLocked re-indexes persisted chunks using their stored
// embeddings. A chunk without an embedding means the store and the
// indexes disagree about this document.
func (e *Engine) restoreLocked(ctx context.Context, chunks []domain.Chunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no stored embedding", domain.ErrConsistency, chunk.ID)
		}
		if err := e.lexical.Add(ctx, chunk); err != nil {
			return fmt.Errorf("index chunk %s: %w", chunk.ID, err)
		}
		if err := e.vector.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
			return fmt.Errorf("add vector %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// removeLocked drops a document from both indexes and the store. The
// caller holds the write lock. Unknown documents are a no-op.
func (e *Engine) removeLocked(ctx context.Context, documentID string) error {
	if err := e.lexical.RemoveDocument(ctx, documentID); err != nil {
		return fmt.Errorf("remove from lexical index: %w", err)
	}
	if err := e.vector.RemoveDocument(ctx, documentID); err != nil {
		return fmt.Errorf("remove from vector index: %w", err)
	}
	if err := e.store.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// rollbackLocked erases whatever part of a failed ingestion reached
// the store or indexes, leaving the document fully un-ingested. It
// runs on a fresh context because the incoming one may already be
// cancelled, and reports problems through the log so the original
// failure stays what the caller sees.
func (e *Engine) rollbackLocked(documentID string) {
	ctx := context.Background()
	if err := e.lexical.RemoveDocument(ctx, documentID); err != nil {
		logger.Warn("Rollback: lexical index cleanup for %s failed: %v", documentID, err)
	}
	if err := e.vector.RemoveDocument(ctx, documentID); err != nil {
		logger.Warn("Rollback: vector index cleanup for %s failed: %v", documentID, err)
	}
	if err := e.store.DeleteDocument(ctx, documentID); err != nil {
		logger.Warn("Rollback: store cleanup for %s failed: %v", documentID, err)
	}
}

// clearIndexesLocked empties both indexes through document removal so
// a rebuild starts from a blank slate.
func (e *Engine) clearIndexesLocked(ctx context.Context) error {
	docIDs := make(map[string]struct{})
	for _, ids := range [][]string{e.lexical.ChunkIDs(), e.vector.ChunkIDs()} {
		for _, id := range ids {
			if docID, _, err := domain.ParseChunkID(id); err == nil {
				docIDs[docID] = struct{}{}
			}
		}
	}

	for docID := range docIDs {
		if err := e.lexical.RemoveDocument(ctx, docID); err != nil {
			return fmt.Errorf("clear lexical index: %w", err)
		}
		if err := e.vector.RemoveDocument(ctx, docID); err != nil {
			return fmt.Errorf("clear vector index: %w", err)
		}
	}
	return nil
}

// dropQuarantined filters out hits whose owning document is
// quarantined.
func (e *Engine) dropQuarantined(hits []domain.ScoredHit) []domain.ScoredHit {
	e.qmu.Lock()
	defer e.qmu.Unlock()

	if len(e.quarantined) == 0 || len(hits) == 0 {
		return hits
	}

	out := hits[:0]
	for _, h := range hits {
		if docID, _, err := domain.ParseChunkID(h.ChunkID); err == nil {
			if _, bad := e.quarantined[docID]; bad {
				continue
			}
		}
		out = append(out, h)
	}
	return out
}

func (e *Engine) quarantineChunk(chunkID string) {
	docID, _, err := domain.ParseChunkID(chunkID)
	if err != nil {
		return
	}

	e.qmu.Lock()
	defer e.qmu.Unlock()
	if _, ok := e.quarantined[docID]; !ok {
		logger.Warn("Consistency violation: chunk %s indexed but not stored; quarantining document %s",
			chunkID, docID)
		e.quarantined[docID] = struct{}{}
	}
}

func (e *Engine) quarantineDoc(documentID string) {
	e.qmu.Lock()
	defer e.qmu.Unlock()
	e.quarantined[documentID] = struct{}{}
}

func (e *Engine) clearQuarantine(documentID string) {
	e.qmu.Lock()
	defer e.qmu.Unlock()
	delete(e.quarantined, documentID)
}
