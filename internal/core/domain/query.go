package domain

// Source tags for scored hits.
const (
	HitSourceLexical = "lexical"
	HitSourceVector  = "vector"
)

// QueryOptions configures a single query. Zero values fall back to the
// engine configuration.
type QueryOptions struct {
	// K is the number of fused results to target before assembly.
	K int

	// Budget overrides the configured context budget in characters.
	Budget int
}

// ScoredHit is a raw result from one index, ephemeral to a query.
type ScoredHit struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// Score is on the index's own scale: BM25 mass for the lexical
	// index, cosine similarity for the vector index.
	Score float64

	// Normalized is the score rescaled to [0,1] within its own
	// result list by max-normalization.
	Normalized float64

	// Source tags the producing index.
	Source string
}

// FusedHit is a chunk's combined ranking after fusion, ephemeral to a
// query.
type FusedHit struct {
	// ChunkID identifies the chunk.
	ChunkID string

	// Score is the weighted combination of the normalized per-index
	// scores. An index that did not return the chunk contributes 0.
	Score float64

	// Lexical and Vector are the normalized per-index contributions
	// before weighting.
	Lexical float64
	Vector  float64
}
