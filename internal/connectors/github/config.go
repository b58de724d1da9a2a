package github

import (
	"fmt"
	"strings"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// Config identifies the repository slice a connector fetches.
type Config struct {
	// Owner and Repo name the repository.
	Owner string
	Repo  string

	// Ref is the branch, tag, or commit to fetch from. Empty means the
	// repository's default branch.
	Ref string

	// Patterns are glob patterns for file filtering, matched against
	// both the base name and the full path. Empty means all files.
	Patterns []string
}

// ParseRepo parses an "owner/repo" or "owner/repo@ref" specifier into
// a Config. The "github:" prefix used on the command line is accepted
// and stripped.
func ParseRepo(spec string) (Config, error) {
	s := strings.TrimPrefix(spec, "github:")

	var ref string
	if at := strings.LastIndex(s, "@"); at >= 0 {
		s, ref = s[:at], s[at+1:]
		if ref == "" {
			return Config{}, fmt.Errorf("%w: github repository %q has an empty ref", domain.ErrInvalidInput, spec)
		}
	}

	owner, repo, ok := strings.Cut(s, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Config{}, fmt.Errorf("%w: github repository %q is not owner/repo", domain.ErrInvalidInput, spec)
	}

	return Config{Owner: owner, Repo: repo, Ref: ref}, nil
}

// Slug returns the owner/repo form of the configured repository.
func (c Config) Slug() string {
	return c.Owner + "/" + c.Repo
}
