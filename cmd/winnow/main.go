// Command winnow ingests documents into a hybrid keyword and vector
// index and assembles cited context windows from them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/winnowlabs/winnow/internal/adapters/driven/ai"
	"github.com/winnowlabs/winnow/internal/adapters/driven/config/file"
	"github.com/winnowlabs/winnow/internal/adapters/driven/index/bm25"
	"github.com/winnowlabs/winnow/internal/adapters/driven/index/flat"
	"github.com/winnowlabs/winnow/internal/adapters/driven/storage/memory"
	"github.com/winnowlabs/winnow/internal/adapters/driven/storage/sqlite"
	"github.com/winnowlabs/winnow/internal/adapters/driving/cli"
	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
	"github.com/winnowlabs/winnow/internal/core/services"
	"github.com/winnowlabs/winnow/internal/logger"
	"github.com/winnowlabs/winnow/internal/postprocessors"
	"github.com/winnowlabs/winnow/internal/postprocessors/chunker"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "winnow: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	settingsService, err := services.NewSettingsService(configStore)
	if err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	docStore, err := openDocumentStore(settings.Storage.Path)
	if err != nil {
		return fmt.Errorf("open document store: %w", err)
	}
	defer docStore.Close() //nolint:errcheck

	documentService, err := services.NewDocumentService(docStore)
	if err != nil {
		return err
	}

	wired := cli.Services{
		Documents: documentService,
		Settings:  settingsService,
		Config:    configStore,
	}

	// The engine needs an embedding provider. Until one is configured
	// the config, document, and version commands still work; the rest
	// explain how to finish setup when run.
	engine, cleanup, err := buildEngine(ctx, settingsService, settings, docStore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "winnow: retrieval engine unavailable: %v\n", err)
	} else if engine != nil {
		defer cleanup()

		syncService, err := services.NewSyncService(engine, docStore)
		if err != nil {
			return err
		}

		wired.Retrieval = engine
		wired.Admin = engine
		wired.Sync = syncService
	}

	cli.SetServices(wired)
	cli.SetVersion(version)

	return cli.Execute()
}

// openDocumentStore selects the store backend from the configured
// path. The literal ":memory:" keeps everything in process memory.
func openDocumentStore(path string) (driven.DocumentStore, error) {
	if path == ":memory:" {
		return memory.NewDocumentStore(), nil
	}
	return sqlite.NewStore(path)
}

// buildEngine assembles the retrieval engine from settings. It returns
// a nil engine when no embedding provider is configured yet. Providers
// are not pinged here; an unreachable provider surfaces on first use.
// The cleanup function closes the adapters the engine was built on.
func buildEngine(
	ctx context.Context,
	settingsService *services.SettingsService,
	settings *domain.Settings,
	docStore driven.DocumentStore,
) (*services.Engine, func(), error) {
	embedder, err := ai.CreateEmbedder(&settings.Embedding)
	if err != nil {
		return nil, nil, err
	}
	if embedder == nil {
		return nil, nil, nil
	}

	cfg, err := settingsService.EngineConfig()
	if err != nil {
		embedder.Close() //nolint:errcheck
		return nil, nil, err
	}

	dims := cfg.Dimensions
	if dims == 0 {
		dims = embedder.Dimensions()
	}

	vector, err := flat.New(dims)
	if err != nil {
		embedder.Close() //nolint:errcheck
		return nil, nil, fmt.Errorf("%w; set embedding.dimensions for model %q",
			err, settings.Embedding.Model)
	}

	lexical := bm25.New(bm25.Config{
		K1:        cfg.BM25.K1,
		B:         cfg.BM25.B,
		Stopwords: cfg.BM25.Stopwords,
	})

	chunkProcessor, err := chunker.New(cfg.Chunking)
	if err != nil {
		embedder.Close() //nolint:errcheck
		return nil, nil, err
	}

	// The LLM is optional; without it queries skip expansion.
	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "winnow: query expansion disabled: %v\n", err)
		llm = nil
	}

	engine, err := services.NewEngine(cfg, docStore, lexical, vector, embedder,
		postprocessors.NewPipeline(chunkProcessor), llm)
	if err != nil {
		embedder.Close() //nolint:errcheck
		return nil, nil, err
	}

	cleanup := func() {
		if llm != nil {
			llm.Close() //nolint:errcheck
		}
		embedder.Close() //nolint:errcheck
		vector.Close()   //nolint:errcheck
		lexical.Close()  //nolint:errcheck
	}

	checkEmbeddingState(ctx, docStore, embedder)

	// The indexes live in memory and start empty; restore them from
	// the persisted chunks.
	if err := engine.Rebuild(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "winnow: index rebuild failed: %v\n", err)
	}

	return engine, cleanup, nil
}

// checkEmbeddingState records which embedding model produced the
// stored vectors and warns when the configured model no longer
// matches. Vectors from a different model score meaninglessly against
// fresh query embeddings, so the fix is re-ingesting.
func checkEmbeddingState(ctx context.Context, docStore driven.DocumentStore, embedder driven.Embedder) {
	store, ok := docStore.(*sqlite.Store)
	if !ok {
		return
	}

	model := embedder.ModelName()

	recorded, err := store.GetState(ctx, sqlite.StateEmbeddingModel)
	if errors.Is(err, domain.ErrNotFound) {
		recordEmbeddingState(ctx, store, model, embedder.Dimensions())
		return
	}
	if err != nil {
		logger.Warn("read embedding state: %v", err)
		return
	}

	if recorded != model {
		fmt.Fprintf(os.Stderr,
			"winnow: embedding model changed from %q to %q; re-ingest your documents to refresh stored vectors\n",
			recorded, model)
		recordEmbeddingState(ctx, store, model, embedder.Dimensions())
	}
}

func recordEmbeddingState(ctx context.Context, store *sqlite.Store, model string, dims int) {
	if err := store.SetState(ctx, sqlite.StateEmbeddingModel, model); err != nil {
		logger.Warn("record embedding model: %v", err)
		return
	}
	if err := store.SetState(ctx, sqlite.StateEmbeddingDimensions, strconv.Itoa(dims)); err != nil {
		logger.Warn("record embedding dimensions: %v", err)
	}
}
