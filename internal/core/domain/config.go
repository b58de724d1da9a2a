package domain

import (
	"fmt"
	"time"
)

// Default configuration values.
const (
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 200
	DefaultBM25K1           = 1.5
	DefaultBM25B            = 0.75
	DefaultLexicalWeight    = 0.4
	DefaultVectorWeight     = 0.6
	DefaultOverFetch        = 3
	DefaultK                = 16
	DefaultContextBudget    = 6000
	DefaultOverlapTolerance = 0.5
	DefaultEmbedTimeout     = 30 * time.Second
	DefaultExpansionCount   = 2
)

// DefaultSeparators is the split priority for the chunker, tried
// highest-priority first: paragraph break, line break, sentence end,
// word boundary.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", ". ", " "}
}

// ChunkingConfig controls how documents are split into chunks.
type ChunkingConfig struct {
	// Size is the target chunk size in characters.
	Size int

	// Overlap is how many trailing characters each chunk repeats
	// from its predecessor. Must be strictly less than Size.
	Overlap int

	// Separators is the split priority list, tried in order.
	Separators []string
}

// BM25Config holds the lexical scoring parameters.
type BM25Config struct {
	// K1 controls term-frequency saturation.
	K1 float64

	// B controls document-length normalization.
	B float64

	// Stopwords are excluded from indexing and querying. May be empty.
	Stopwords []string
}

// FusionConfig weights the two retrieval methods. The weights need not
// sum to 1; fused scores are relative, not probabilities.
type FusionConfig struct {
	// LexicalWeight scales the normalized BM25 score.
	LexicalWeight float64

	// VectorWeight scales the normalized cosine similarity.
	VectorWeight float64
}

// QueryConfig controls the retrieval pipeline per query.
type QueryConfig struct {
	// K is the default number of fused results to target.
	K int

	// OverFetch multiplies K when searching each index, giving the
	// fusion stage enough candidates.
	OverFetch int

	// ContextBudget caps the context window size in characters.
	ContextBudget int

	// OverlapTolerance is the fraction of span overlap above which a
	// candidate chunk is dropped as a near-duplicate of an
	// already-selected chunk from the same document.
	OverlapTolerance float64

	// LexicalFallback, when true, lets a query degrade to
	// lexical-only retrieval if the embedding provider fails.
	// Off by default: provider failure fails the query.
	LexicalFallback bool

	// ExpandQueries enables LLM multi-query expansion.
	ExpandQueries bool

	// ExpansionCount is how many extra query variants to request.
	ExpansionCount int
}

// Config is the full validated engine configuration.
type Config struct {
	Chunking ChunkingConfig
	BM25     BM25Config
	Fusion   FusionConfig
	Query    QueryConfig

	// Dimensions is the embedding dimensionality, fixed for the life
	// of the vector index. Zero means "adopt the provider's value".
	Dimensions int

	// EmbedTimeout bounds each embedding provider call.
	EmbedTimeout time.Duration
}

// DefaultConfig returns a configuration with all defaults applied.
func DefaultConfig() Config {
	return Config{
		Chunking: ChunkingConfig{
			Size:       DefaultChunkSize,
			Overlap:    DefaultChunkOverlap,
			Separators: DefaultSeparators(),
		},
		BM25: BM25Config{
			K1: DefaultBM25K1,
			B:  DefaultBM25B,
		},
		Fusion: FusionConfig{
			LexicalWeight: DefaultLexicalWeight,
			VectorWeight:  DefaultVectorWeight,
		},
		Query: QueryConfig{
			K:                DefaultK,
			OverFetch:        DefaultOverFetch,
			ContextBudget:    DefaultContextBudget,
			OverlapTolerance: DefaultOverlapTolerance,
			ExpansionCount:   DefaultExpansionCount,
		},
		EmbedTimeout: DefaultEmbedTimeout,
	}
}

// Validate checks the configuration once, up front. Invalid
// combinations are rejected with ErrConfiguration, never corrected.
func (c Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrConfiguration, c.Chunking.Overlap)
	}
	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunk overlap %d must be less than chunk size %d",
			ErrConfiguration, c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.BM25.K1 < 0 {
		return fmt.Errorf("%w: bm25 k1 must not be negative, got %g", ErrConfiguration, c.BM25.K1)
	}
	if c.BM25.B < 0 || c.BM25.B > 1 {
		return fmt.Errorf("%w: bm25 b must be in [0,1], got %g", ErrConfiguration, c.BM25.B)
	}
	if c.Fusion.LexicalWeight < 0 || c.Fusion.VectorWeight < 0 {
		return fmt.Errorf("%w: fusion weights must not be negative (lexical=%g, vector=%g)",
			ErrConfiguration, c.Fusion.LexicalWeight, c.Fusion.VectorWeight)
	}
	if c.Fusion.LexicalWeight+c.Fusion.VectorWeight <= 0 {
		return fmt.Errorf("%w: fusion weights must sum to a positive number", ErrConfiguration)
	}
	if c.Query.K <= 0 {
		return fmt.Errorf("%w: k must be positive, got %d", ErrConfiguration, c.Query.K)
	}
	if c.Query.OverFetch < 1 {
		return fmt.Errorf("%w: over-fetch factor must be at least 1, got %d", ErrConfiguration, c.Query.OverFetch)
	}
	if c.Query.ContextBudget <= 0 {
		return fmt.Errorf("%w: context budget must be positive, got %d", ErrConfiguration, c.Query.ContextBudget)
	}
	if c.Query.OverlapTolerance < 0 || c.Query.OverlapTolerance > 1 {
		return fmt.Errorf("%w: overlap tolerance must be in [0,1], got %g",
			ErrConfiguration, c.Query.OverlapTolerance)
	}
	if c.Query.ExpandQueries && c.Query.ExpansionCount <= 0 {
		return fmt.Errorf("%w: expansion count must be positive when expansion is enabled", ErrConfiguration)
	}
	if c.Dimensions < 0 {
		return fmt.Errorf("%w: dimensions must not be negative, got %d", ErrConfiguration, c.Dimensions)
	}
	if c.EmbedTimeout < 0 {
		return fmt.Errorf("%w: embed timeout must not be negative", ErrConfiguration)
	}
	return nil
}
