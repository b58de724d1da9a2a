package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
)

var _ driven.Connector = (*Connector)(nil)

const connectorType = "github"

// Connector fetches text files from a single GitHub repository via the
// tree and blob APIs. It does not support watching; there are no
// webhooks in a CLI.
type Connector struct {
	cfg    Config
	client *Client
}

// New creates a GitHub connector for the configured repository.
func New(cfg Config, tokenProvider driven.TokenProvider) *Connector {
	return &Connector{
		cfg:    cfg,
		client: NewClient(tokenProvider),
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return connectorType
}

// Validate checks the token works and the repository is accessible.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.client.ValidateCredentials(ctx); err != nil {
		if IsUnauthorized(err) {
			return fmt.Errorf("%w: github token rejected", domain.ErrConfiguration)
		}
		return fmt.Errorf("github: validate credentials: %w", err)
	}

	if _, err := c.client.GetRepository(ctx, c.cfg.Owner, c.cfg.Repo); err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: repository %s not found or not accessible", domain.ErrNotFound, c.cfg.Slug())
		}
		return fmt.Errorf("github: check repository %s: %w", c.cfg.Slug(), err)
	}

	return nil
}

// Fetch streams every matching file in the repository tree. Both
// channels close when the fetch finishes or the context is cancelled.
// Files that cannot be fetched are reported on the error channel and
// skipped; a rate limit error aborts the fetch.
func (c *Connector) Fetch(ctx context.Context) (<-chan domain.Document, <-chan error) {
	docs := make(chan domain.Document)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		repo, err := c.client.GetRepository(ctx, c.cfg.Owner, c.cfg.Repo)
		if err != nil {
			sendErr(ctx, errs, fmt.Errorf("get repository %s: %w", c.cfg.Slug(), err))
			return
		}

		ref := c.cfg.Ref
		if ref == "" {
			ref = repo.GetDefaultBranch()
		}

		tree, err := c.client.GetTree(ctx, c.cfg.Owner, c.cfg.Repo, ref)
		if err != nil {
			sendErr(ctx, errs, fmt.Errorf("get tree %s@%s: %w", c.cfg.Slug(), ref, err))
			return
		}
		if tree.GetTruncated() {
			// Trees over 100k entries come back incomplete.
			sendErr(ctx, errs, fmt.Errorf("github: tree for %s@%s is truncated, some files will be missing", c.cfg.Slug(), ref))
		}

		for _, entry := range tree.Entries {
			if ctx.Err() != nil {
				return
			}
			if !c.wants(entry) {
				continue
			}

			path := entry.GetPath()
			content, err := fetchBlobContent(ctx, c.client, c.cfg.Owner, c.cfg.Repo, entry.GetSHA())
			if err != nil {
				if IsRateLimited(err) {
					sendErr(ctx, errs, err)
					return
				}
				sendErr(ctx, errs, fmt.Errorf("fetch %s: %w", path, err))
				continue
			}

			select {
			case docs <- c.buildDocument(ref, path, entry.GetSHA(), content):
			case <-ctx.Done():
				return
			}
		}
	}()

	return docs, errs
}

// wants reports whether a tree entry should be fetched.
func (c *Connector) wants(entry *gh.TreeEntry) bool {
	if entry.GetType() != "blob" {
		return false
	}
	path := entry.GetPath()
	if !matchesPatterns(path, c.cfg.Patterns) || isBinaryExtension(path) {
		return false
	}
	return entry.GetSize() <= maxBlobSize
}

// buildDocument converts a fetched blob into a document.
func (c *Connector) buildDocument(ref, path, sha string, content []byte) domain.Document {
	text := string(content)
	id := documentID(c.cfg.Owner, c.cfg.Repo, ref, path)
	return domain.Document{
		ID:          id,
		Content:     text,
		Source:      connectorType,
		ContentHash: domain.HashContent(text),
		Metadata: map[string]string{
			"owner":    c.cfg.Owner,
			"repo":     c.cfg.Repo,
			"ref":      ref,
			"path":     path,
			"sha":      sha,
			"mime":     detectFileMIMEType(path),
			"html_url": ResolveWebURL(id),
		},
	}
}

func sendErr(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}
