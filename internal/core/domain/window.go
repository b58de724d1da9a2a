package domain

import (
	"fmt"
	"strings"
)

// Snippet is one cited passage inside a context window.
type Snippet struct {
	// DocumentID identifies the source document.
	DocumentID string

	// ChunkID identifies the underlying chunk.
	ChunkID string

	// Text is the passage, always a complete chunk (never truncated).
	Text string

	// Start and End are the passage's byte offsets within the
	// document content.
	Start int
	End   int

	// Score is the fused relevance score that selected this passage.
	Score float64
}

// ContextWindow is the bounded, deduplicated set of passages handed to
// the generation collaborator. Snippets are ordered by document ID and
// then start offset so citations read coherently; fused rank decided
// inclusion, not presentation order.
type ContextWindow struct {
	// Snippets are the included passages in presentation order.
	Snippets []Snippet

	// Size is the total character count of all snippet texts.
	Size int

	// Budget is the configured size cap the window was assembled
	// under. Size never exceeds it.
	Budget int
}

// Empty reports whether the window contains no passages.
func (w *ContextWindow) Empty() bool {
	return len(w.Snippets) == 0
}

// Documents returns the distinct document IDs cited by the window, in
// presentation order.
func (w *ContextWindow) Documents() []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, s := range w.Snippets {
		if _, ok := seen[s.DocumentID]; ok {
			continue
		}
		seen[s.DocumentID] = struct{}{}
		ids = append(ids, s.DocumentID)
	}
	return ids
}

// Prompt renders the window plus the question into the handoff string
// for the generation step. Each passage is labelled and cited with its
// document and offsets; the engine does not know how the answer is
// produced beyond this contract.
func (w *ContextWindow) Prompt(question string) string {
	var b strings.Builder

	b.WriteString("Answer the question using only the passages below. Cite passages by their labels.\n\n")
	for i, s := range w.Snippets {
		fmt.Fprintf(&b, "[Doc %d] (%s, chars %d-%d)\n%s\n\n", i+1, s.DocumentID, s.Start, s.End, s.Text)
	}
	fmt.Fprintf(&b, "Question: %s\n", question)

	return b.String()
}
