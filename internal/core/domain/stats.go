package domain

import "time"

// IngestResult summarises a single document ingestion.
type IngestResult struct {
	// DocumentID is the ingested document.
	DocumentID string

	// Chunks is how many chunks were produced and indexed.
	Chunks int

	// Replaced is true when a prior version of the document was
	// removed first.
	Replaced bool

	// Duration is the wall time of the ingestion.
	Duration time.Duration
}

// IndexStats reports the current collection state.
type IndexStats struct {
	// Documents is the number of ingested documents.
	Documents int

	// Chunks is the number of stored chunks.
	Chunks int

	// Terms is the lexical index vocabulary size.
	Terms int

	// Vectors is the vector index entry count. Equal to Chunks when
	// the lockstep invariant holds.
	Vectors int

	// Dimensions is the embedding dimensionality.
	Dimensions int

	// EmbeddingModel is the provider's model name, if configured.
	EmbeddingModel string

	// Quarantined is the number of documents excluded from queries
	// after a failed consistency check.
	Quarantined int
}

// ConsistencyReport is the outcome of a lockstep verification pass.
type ConsistencyReport struct {
	// LexicalOnly lists chunk IDs present in the lexical index but
	// missing from the vector index.
	LexicalOnly []string

	// VectorOnly lists chunk IDs present in the vector index but
	// missing from the lexical index.
	VectorOnly []string

	// Quarantined lists document IDs now excluded from queries.
	Quarantined []string
}

// Clean reports whether the verification found no violations.
func (r *ConsistencyReport) Clean() bool {
	return len(r.LexicalOnly) == 0 && len(r.VectorOnly) == 0
}

// SyncReport summarises one connector run over a source.
type SyncReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// Source labels the connector ("filesystem", "github").
	Source string

	// Ingested is how many documents were (re)ingested.
	Ingested int

	// Skipped is how many documents were unchanged and left alone.
	Skipped int

	// Failed is how many documents errored.
	Failed int

	// Duration is the wall time of the run.
	Duration time.Duration
}
