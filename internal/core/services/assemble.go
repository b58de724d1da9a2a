package services

import (
	"sort"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// assembleWindow walks fused results in rank order, appending each
// hydrated chunk while it fits the budget. An over-budget chunk is
// skipped whole, never truncated, and the walk continues so smaller
// lower-ranked chunks can still fill the remaining space. Candidates
// whose span overlaps an already-selected chunk of the same document
// by more than the tolerance are dropped as near-duplicates of the
// overlap window. The returned window is ordered by document ID and
// start offset; fused rank decided inclusion only.
func assembleWindow(fused []domain.FusedHit, chunks map[string]domain.Chunk, budget int, tolerance float64) *domain.ContextWindow {
	var selected []domain.Snippet
	size := 0

	for _, f := range fused {
		chunk, ok := chunks[f.ChunkID]
		if !ok {
			continue
		}
		if size+len(chunk.Text) > budget {
			continue
		}
		if overlapsSelected(selected, chunk, tolerance) {
			continue
		}

		selected = append(selected, domain.Snippet{
			DocumentID: chunk.DocumentID,
			ChunkID:    chunk.ID,
			Text:       chunk.Text,
			Start:      chunk.Start,
			End:        chunk.End,
			Score:      f.Score,
		})
		size += len(chunk.Text)
	}

	sort.Slice(selected, func(i, j int) bool {
		if selected[i].DocumentID != selected[j].DocumentID {
			return selected[i].DocumentID < selected[j].DocumentID
		}
		return selected[i].Start < selected[j].Start
	})

	return &domain.ContextWindow{
		Snippets: selected,
		Size:     size,
		Budget:   budget,
	}
}

// overlapsSelected reports whether the candidate's offset range
// overlaps any already-selected snippet from the same document by more
// than the tolerance fraction of the shorter span.
func overlapsSelected(selected []domain.Snippet, c domain.Chunk, tolerance float64) bool {
	for _, s := range selected {
		if s.DocumentID != c.DocumentID {
			continue
		}
		overlap := overlapLen(s.Start, s.End, c.Start, c.End)
		if overlap == 0 {
			continue
		}
		shorter := min(s.End-s.Start, c.End-c.Start)
		if shorter <= 0 {
			continue
		}
		if float64(overlap)/float64(shorter) > tolerance {
			return true
		}
	}
	return false
}

func overlapLen(aStart, aEnd, bStart, bEnd int) int {
	lo := max(aStart, bStart)
	hi := min(aEnd, bEnd)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
