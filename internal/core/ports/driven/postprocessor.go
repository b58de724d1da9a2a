package driven

import (
	"context"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// PostProcessor processes document content to produce chunks.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks. A creating
	// processor (the chunker) receives nil chunks and returns new
	// ones; a modifying processor receives and returns chunks.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order and
	// returns the final chunks.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
