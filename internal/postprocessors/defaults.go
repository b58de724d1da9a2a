package postprocessors

import (
	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
	"github.com/winnowlabs/winnow/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
//   - separators ([]string): Split points in priority order
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	ccfg := domain.DefaultConfig().Chunking

	if size, ok := lookupInt(cfg, "chunk_size"); ok {
		ccfg.Size = size
	}
	if overlap, ok := lookupInt(cfg, "overlap"); ok {
		ccfg.Overlap = overlap
	}
	if seps, ok := lookupStrings(cfg, "separators"); ok {
		ccfg.Separators = seps
	}

	return chunker.New(ccfg)
}

// lookupInt extracts an int from generic config, reporting whether the
// key was present. Handles int, int64, and float64 values that may
// come from TOML/JSON parsing.
func lookupInt(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// lookupStrings extracts a string slice from generic config. TOML and
// JSON both decode arrays as []any, so each element is asserted
// individually.
func lookupStrings(cfg map[string]any, key string) ([]string, bool) {
	val, ok := cfg[key]
	if !ok {
		return nil, false
	}

	switch v := val.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
