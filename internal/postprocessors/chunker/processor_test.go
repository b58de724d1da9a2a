package chunker

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

func mustNew(t *testing.T, cfg domain.ChunkingConfig) *Processor {
	t.Helper()
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestNew(t *testing.T) {
	t.Run("zero config adopts defaults", func(t *testing.T) {
		p := mustNew(t, domain.ChunkingConfig{})
		if p.size != domain.DefaultChunkSize {
			t.Errorf("expected size %d, got %d", domain.DefaultChunkSize, p.size)
		}
		if len(p.separators) == 0 {
			t.Error("expected default separators")
		}
	})

	t.Run("overlap equal to size rejected", func(t *testing.T) {
		_, err := New(domain.ChunkingConfig{Size: 100, Overlap: 100})
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("overlap above size rejected", func(t *testing.T) {
		_, err := New(domain.ChunkingConfig{Size: 100, Overlap: 150})
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("negative overlap rejected", func(t *testing.T) {
		_, err := New(domain.ChunkingConfig{Size: 100, Overlap: -1})
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("negative size rejected", func(t *testing.T) {
		_, err := New(domain.ChunkingConfig{Size: -5})
		if !errors.Is(err, domain.ErrConfiguration) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("zero overlap is valid", func(t *testing.T) {
		p := mustNew(t, domain.ChunkingConfig{Size: 100, Overlap: 0})
		if p.overlap != 0 {
			t.Errorf("expected overlap 0, got %d", p.overlap)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{})
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got %q", p.Name())
	}
}

func TestProcessor_Process_NilDocument(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{})
	_, err := p.Process(context.Background(), nil, nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

func TestChunk_EmptyAndWhitespace(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{})

	if chunks := p.Chunk("doc", ""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty text, got %d", len(chunks))
	}
	if chunks := p.Chunk("doc", "  \n\t \n "); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace text, got %d", len(chunks))
	}
}

func TestChunk_SmallText(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{Size: 100, Overlap: 20})
	text := "A single small passage."

	chunks := p.Chunk("doc", text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	c := chunks[0]
	if c.ID != domain.ChunkID("doc", 0) {
		t.Errorf("expected ID %q, got %q", domain.ChunkID("doc", 0), c.ID)
	}
	if c.Seq != 0 || c.Start != 0 || c.End != len(text) {
		t.Errorf("unexpected chunk geometry: seq=%d start=%d end=%d", c.Seq, c.Start, c.End)
	}
	if c.Text != text {
		t.Errorf("expected text to match input")
	}
}

func TestChunk_PrefersParagraphBreak(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{Size: 40, Overlap: 5})

	// Paragraph break at offset 33, inside the lookback window
	// (cut 35 >= 40-10). The first chunk must end right after it.
	text := strings.Repeat("a", 33) + "\n\n" + strings.Repeat("b", 40)

	chunks := p.Chunk("doc", text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0].End != 35 {
		t.Errorf("expected first cut after paragraph break at 35, got %d", chunks[0].End)
	}
	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Error("expected first chunk to end with the paragraph break")
	}
}

func TestChunk_FallsBackToLowerPrioritySeparator(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{Size: 40, Overlap: 5})

	// Line break at offset 20 falls outside the lookback window and
	// must be skipped; the sentence end at offset 31 is inside it.
	text := strings.Repeat("a", 20) + "\n" + strings.Repeat("b", 10) + ". " +
		strings.Repeat("c", 7) + strings.Repeat("d", 20)

	chunks := p.Chunk("doc", text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if chunks[0].End != 33 {
		t.Errorf("expected first cut after sentence end at 33, got %d", chunks[0].End)
	}
	if !strings.HasSuffix(chunks[0].Text, ". ") {
		t.Error("expected first chunk to end with the sentence separator")
	}
}

func TestChunk_HardCutWithoutSeparator(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{Size: 40, Overlap: 10})
	text := strings.Repeat("0123456789", 10) // 100 chars, no separators

	chunks := p.Chunk("doc", text)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}

	wantBounds := [][2]int{{0, 40}, {30, 70}, {60, 100}}
	for i, want := range wantBounds {
		if chunks[i].Start != want[0] || chunks[i].End != want[1] {
			t.Errorf("chunk %d: expected bounds %v, got [%d,%d)", i, want, chunks[i].Start, chunks[i].End)
		}
	}
}

func TestChunk_SeparatorOutsideLookbackIgnored(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{Size: 40, Overlap: 5})

	// The only separator sits at the start of the window, far outside
	// the lookback region, so the chunker falls back to a hard cut.
	text := "aa\n\n" + strings.Repeat("c", 60)

	chunks := p.Chunk("doc", text)
	if chunks[0].End != 40 {
		t.Errorf("expected hard cut at 40, got %d", chunks[0].End)
	}
}

func TestChunk_OverlapRepeatsTrailingText(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{Size: 40, Overlap: 10})
	text := strings.Repeat("0123456789", 10)

	chunks := p.Chunk("doc", text)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		curr := chunks[i]
		if curr.Start != prev.End-10 {
			t.Errorf("chunk %d: expected start %d, got %d", i, prev.End-10, curr.Start)
		}
		tail := prev.Text[len(prev.Text)-10:]
		head := curr.Text[:10]
		if tail != head {
			t.Errorf("chunk %d: overlap mismatch, tail %q head %q", i, tail, head)
		}
	}
}

func TestChunk_OffsetsSliceBackToSource(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{Size: 50, Overlap: 10})
	text := "First paragraph about cats.\n\nSecond paragraph about mammals and their fur. Third thought, on warmth in winter, follows here."

	chunks := p.Chunk("doc", text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if text[c.Start:c.End] != c.Text {
			t.Errorf("chunk %d: offsets [%d,%d) do not slice back to chunk text", i, c.Start, c.End)
		}
		if c.Seq != i {
			t.Errorf("chunk %d: expected seq %d, got %d", i, i, c.Seq)
		}
		if c.ID != domain.ChunkID("doc", i) {
			t.Errorf("chunk %d: unexpected ID %q", i, c.ID)
		}
	}
	if last := chunks[len(chunks)-1]; last.End != len(text) {
		t.Errorf("expected final chunk to reach end of text, got %d of %d", last.End, len(text))
	}
}

func TestChunk_Deterministic(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{Size: 60, Overlap: 15})
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)

	first := p.Chunk("doc", text)
	second := p.Chunk("doc", text)
	if !reflect.DeepEqual(first, second) {
		t.Error("expected identical chunk sequences for identical input")
	}
}

func TestChunk_ExtremeOverlapStillTerminates(t *testing.T) {
	p := mustNew(t, domain.ChunkingConfig{Size: 10, Overlap: 9})
	text := strings.Repeat("z", 50)

	chunks := p.Chunk("doc", text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if last := chunks[len(chunks)-1]; last.End != len(text) {
		t.Errorf("expected final chunk to reach end of text, got %d", last.End)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start <= chunks[i-1].Start {
			t.Fatalf("chunk %d does not advance: start %d after %d", i, chunks[i].Start, chunks[i-1].Start)
		}
	}
}
