package domain

import (
	"crypto/md5" //nolint:gosec // Content fingerprint, not a security boundary.
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Document represents an ingested document. It is immutable once
// ingested; re-ingesting the same ID replaces it wholesale, including
// every chunk derived from it.
type Document struct {
	// ID is the stable identifier, derived by connectors from the
	// source path or URI. Re-ingestion under the same ID replaces
	// the prior content.
	ID string

	// Content is the full raw text as ingested. All chunk offsets
	// refer to this string.
	Content string

	// Source labels where the document came from ("filesystem",
	// "github", "cli").
	Source string

	// ContentHash is the MD5 hex digest of Content, used by
	// connectors for change detection.
	ContentHash string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last replaced.
	UpdatedAt time.Time
}

// Chunk is a bounded contiguous span of a document's text, the unit of
// indexing and retrieval. Chunks are immutable; they are created only
// during ingestion and destroyed only when the owning document is
// removed or re-ingested.
type Chunk struct {
	// ID is the deterministic chunk identifier: document ID plus
	// zero-padded sequence. See ChunkID.
	ID string

	// DocumentID links back to the owning Document.
	DocumentID string

	// Seq is the 0-based position of the chunk within the document.
	Seq int

	// Text is the chunk's span of the document content.
	Text string

	// Start is the byte offset of Text within the document content.
	Start int

	// End is the byte offset one past the last byte of Text.
	End int

	// Embedding is the vector representation, populated at ingest.
	Embedding []float32
}

// ChunkID builds the deterministic identifier for a chunk. The sequence
// is zero-padded so that lexicographic order matches position order,
// which keeps tie-breaking by ascending chunk ID stable across runs.
func ChunkID(documentID string, seq int) string {
	return fmt.Sprintf("%s:%05d", documentID, seq)
}

// ParseChunkID splits a chunk identifier into its document ID and
// sequence. The sequence is the suffix after the last colon, so
// document IDs are free to contain colons themselves.
func ParseChunkID(chunkID string) (documentID string, seq int, err error) {
	i := strings.LastIndex(chunkID, ":")
	if i < 0 {
		return "", 0, fmt.Errorf("%w: malformed chunk id %q", ErrInvalidInput, chunkID)
	}
	seq, err = strconv.Atoi(chunkID[i+1:])
	if err != nil || seq < 0 {
		return "", 0, fmt.Errorf("%w: malformed chunk id %q", ErrInvalidInput, chunkID)
	}
	return chunkID[:i], seq, nil
}

// HashContent returns the MD5 hex digest used for document change
// detection.
func HashContent(content string) string {
	sum := md5.Sum([]byte(content)) //nolint:gosec // Fingerprint only.
	return hex.EncodeToString(sum[:])
}
