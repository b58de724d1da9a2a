// Package chunker splits document text into overlapping passages with
// stable positional identity.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// lookbackDivisor bounds how far before the size limit a separator cut
// may land. A cut earlier than size/lookbackDivisor before the limit
// would produce undersized chunks, so it is passed over in favor of
// lower-priority separators or a hard cut.
const lookbackDivisor = 4

// Processor splits text at preferred separators, falling back to hard
// cuts at the size limit. Boundaries are a pure function of the input
// text and configuration, which keeps re-ingestion stable.
type Processor struct {
	size       int
	overlap    int
	separators []string
	lookback   int
}

// New creates a chunker. A zero Size or nil Separators adopt the
// domain defaults. Overlap must be strictly less than the chunk size;
// invalid combinations are rejected here rather than corrected.
func New(cfg domain.ChunkingConfig) (*Processor, error) {
	if cfg.Size == 0 {
		cfg.Size = domain.DefaultChunkSize
	}
	if cfg.Separators == nil {
		cfg.Separators = domain.DefaultSeparators()
	}

	if cfg.Size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfiguration, cfg.Size)
	}
	if cfg.Overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", domain.ErrConfiguration, cfg.Overlap)
	}
	if cfg.Overlap >= cfg.Size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be strictly less than chunk size %d", domain.ErrConfiguration, cfg.Overlap, cfg.Size)
	}

	return &Processor{
		size:       cfg.Size,
		overlap:    cfg.Overlap,
		separators: cfg.Separators,
		lookback:   cfg.Size / lookbackDivisor,
	}, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks. Input chunks are
// ignored; this processor always chunks from the raw content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	return p.Chunk(doc.ID, doc.Content), nil
}

// Chunk splits text into overlapping pieces numbered from 0. Each
// chunk's Start/End offsets slice back to the exact text span, which
// citations rely on. Empty or whitespace-only input yields no chunks.
func (p *Processor) Chunk(documentID, text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	chunks := make([]domain.Chunk, 0, len(text)/(p.size-p.overlap)+1)

	start := 0
	for seq := 0; start < len(text); seq++ {
		end := p.cut(text, start)

		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(documentID, seq),
			DocumentID: documentID,
			Seq:        seq,
			Text:       text[start:end],
			Start:      start,
			End:        end,
		})

		if end == len(text) {
			break
		}

		next := end - p.overlap
		if next <= start {
			// A separator cut near the window start combined with a
			// large overlap must still advance.
			next = start + 1
		}
		start = next
	}

	return chunks
}

// cut picks the end offset for a chunk starting at start. A full-size
// chunk prefers the highest-priority separator whose end lands within
// the lookback window before the size limit; with no such separator
// the chunk is cut hard at the limit. The final chunk runs to the end
// of the text.
func (p *Processor) cut(text string, start int) int {
	limit := start + p.size
	if limit >= len(text) {
		return len(text)
	}

	window := text[start:limit]
	for _, sep := range p.separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := idx + len(sep)
		if cut >= len(window)-p.lookback {
			return start + cut
		}
	}
	return limit
}
