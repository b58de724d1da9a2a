package services

import (
	"sort"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// normalizeScores rescales one result list into [0,1] by dividing by
// the list maximum. An empty list or a non-positive maximum yields all
// zeros, so a degenerate list cannot dominate fusion. Negative raw
// scores (possible for cosine similarity) clamp to zero.
func normalizeScores(hits []domain.ScoredHit) []domain.ScoredHit {
	if len(hits) == 0 {
		return hits
	}

	maxScore := hits[0].Score
	for _, h := range hits[1:] {
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}

	out := make([]domain.ScoredHit, len(hits))
	copy(out, hits)
	for i := range out {
		if maxScore <= 0 || out[i].Score <= 0 {
			out[i].Normalized = 0
			continue
		}
		out[i].Normalized = out[i].Score / maxScore
	}
	return out
}

// fuseHits merges two normalized result lists into one ranking over
// the union of their chunk IDs. A chunk absent from one list
// contributes zero for that term rather than being skipped, so a chunk
// both methods agree on strictly outranks an equally strong
// single-method match. Ordered by descending fused score, ties broken
// by ascending chunk ID.
func fuseHits(lexical, vector []domain.ScoredHit, weights domain.FusionConfig) []domain.FusedHit {
	byID := make(map[string]*domain.FusedHit, len(lexical)+len(vector))

	for _, h := range lexical {
		byID[h.ChunkID] = &domain.FusedHit{ChunkID: h.ChunkID, Lexical: h.Normalized}
	}
	for _, h := range vector {
		f, ok := byID[h.ChunkID]
		if !ok {
			f = &domain.FusedHit{ChunkID: h.ChunkID}
			byID[h.ChunkID] = f
		}
		f.Vector = h.Normalized
	}

	fused := make([]domain.FusedHit, 0, len(byID))
	for _, f := range byID {
		f.Score = weights.LexicalWeight*f.Lexical + weights.VectorWeight*f.Vector
		fused = append(fused, *f)
	}

	sortFused(fused)
	return fused
}

// mergeFused combines the fused rankings of multiple query variants,
// keeping each chunk's best score across variants.
func mergeFused(lists ...[]domain.FusedHit) []domain.FusedHit {
	if len(lists) == 1 {
		return lists[0]
	}

	best := make(map[string]domain.FusedHit)
	for _, list := range lists {
		for _, f := range list {
			if cur, ok := best[f.ChunkID]; !ok || f.Score > cur.Score {
				best[f.ChunkID] = f
			}
		}
	}

	merged := make([]domain.FusedHit, 0, len(best))
	for _, f := range best {
		merged = append(merged, f)
	}
	sortFused(merged)
	return merged
}

func sortFused(fused []domain.FusedHit) {
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].ChunkID < fused[j].ChunkID
	})
}
