package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrConfiguration indicates an invalid configuration combination:
	// a dimensionality mismatch, chunk overlap >= chunk size, a
	// non-positive fusion weight sum, and the like. Raised at
	// construction or on the first offending call, never silently
	// corrected.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrProvider indicates an embedding or LLM call failed or timed
	// out. Surfaced per call; index state is never corrupted by it.
	ErrProvider = errors.New("provider failure")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConsistency indicates the lockstep invariant was violated: a
	// chunk present in one index but not the other. The affected
	// document is quarantined until re-ingested.
	ErrConsistency = errors.New("index consistency violation")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbeddingUnavailable indicates no embedding provider is
	// configured. Vector retrieval is disabled without one.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates no LLM provider is configured.
	// Query expansion is disabled without one.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrSyncInProgress indicates a connector sync is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
