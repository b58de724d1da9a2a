// Package filesystem streams text files from a local directory tree
// into the ingest pipeline, with optional fsnotify-based watching.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
)

var _ driven.WatchConnector = (*Connector)(nil)

const connectorType = "filesystem"

// debounceInterval is how long a burst of filesystem events must be
// quiet before the affected files are re-read. Editors fire several
// writes for a single save.
const debounceInterval = 200 * time.Millisecond

// Connector walks a directory tree and emits one document per text
// file. Hidden files and directories (dot-prefixed, relative to the
// root) are skipped. When an extension filter is set only matching
// files are emitted; otherwise files are screened by MIME type.
type Connector struct {
	root string
	exts map[string]struct{}
}

// New creates a filesystem connector rooted at root. Extensions may be
// given with or without the leading dot and are matched case
// insensitively; an empty list means every text-like file.
func New(root string, extensions []string) *Connector {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}

	return &Connector{root: root, exts: exts}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return connectorType
}

// Root returns the absolute root path the connector walks.
func (c *Connector) Root() string {
	return c.root
}

// Validate checks that the root path exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.checkRoot()
}

// Fetch walks the tree and streams a document for every matching file.
// Both channels close when the walk finishes or the context is
// cancelled. Unreadable files are reported on the error channel and
// the walk continues.
func (c *Connector) Fetch(ctx context.Context) (<-chan domain.Document, <-chan error) {
	docs := make(chan domain.Document)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.checkRoot(); err != nil {
			errs <- err
			return
		}

		walkErr := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if d.IsDir() {
				if path != c.root && c.hidden(path) {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || c.hidden(path) || !c.wants(path) {
				return nil
			}

			doc, err := c.readDocument(path)
			if err != nil {
				sendErr(ctx, errs, err)
				return nil
			}

			select {
			case docs <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if walkErr != nil && ctx.Err() == nil {
			sendErr(ctx, errs, fmt.Errorf("walk %s: %w", c.root, walkErr))
		}
	}()

	return docs, errs
}

// Watch emits a document whenever a matching file is created or
// modified under the root, until the context is cancelled. Rapid
// bursts of events for the same file are coalesced. Deletes and
// renames are dropped: Watch streams content to re-ingest, it does not
// signal removal.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.Document, <-chan error) {
	docs := make(chan domain.Document)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.checkRoot(); err != nil {
			errs <- err
			return
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			errs <- fmt.Errorf("create watcher: %w", err)
			return
		}
		defer watcher.Close()

		if err := c.watchTree(watcher); err != nil {
			errs <- fmt.Errorf("watch %s: %w", c.root, err)
			return
		}

		c.watchLoop(ctx, watcher, docs, errs)
	}()

	return docs, errs
}

// watchTree registers the root and every non-hidden subdirectory.
// fsnotify watches are not recursive.
func (c *Connector) watchTree(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.root && c.hidden(path) {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, docs chan<- domain.Document, errs chan<- error) {
	pending := make(map[string]struct{})
	timer := time.NewTimer(debounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if path, keep := c.screen(watcher, event); keep {
				pending[path] = struct{}{}
				timer.Reset(debounceInterval)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			sendErr(ctx, errs, fmt.Errorf("watch: %w", err))

		case <-timer.C:
			for path := range pending {
				doc, err := c.readDocument(path)
				if err != nil {
					sendErr(ctx, errs, err)
					continue
				}
				select {
				case docs <- doc:
				case <-ctx.Done():
					return
				}
			}
			pending = make(map[string]struct{})
		}
	}
}

// screen decides whether a filesystem event should produce a document.
// Newly created directories are added to the watch set as a side
// effect.
func (c *Connector) screen(watcher *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return "", false
	}
	if c.hidden(event.Name) {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// Already gone; a create immediately followed by a delete is
		// not worth reporting.
		return "", false
	}
	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			_ = watcher.Add(event.Name)
		}
		return "", false
	}
	if !info.Mode().IsRegular() || !c.wants(event.Name) {
		return "", false
	}
	return event.Name, true
}

// checkRoot verifies the configured root is an existing directory.
func (c *Connector) checkRoot() error {
	info, err := os.Stat(c.root)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: root path %q does not exist", domain.ErrInvalidInput, c.root)
	}
	if err != nil {
		return fmt.Errorf("stat root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root path %q is not a directory", domain.ErrInvalidInput, c.root)
	}
	return nil
}

// readDocument reads a file into a document. The absolute path doubles
// as the document ID, so re-ingesting the same file replaces the
// earlier version.
func (c *Connector) readDocument(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}

	content := string(data)
	name := filepath.Base(path)
	return domain.Document{
		ID:          path,
		Content:     content,
		Source:      connectorType,
		ContentHash: domain.HashContent(content),
		Metadata: map[string]string{
			"filename":  name,
			"extension": strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")),
			"mime":      detectMIMEType(name),
		},
	}, nil
}

// hidden reports whether any path component below the root starts with
// a dot. The root itself may live inside a hidden directory.
func (c *Connector) hidden(path string) bool {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// wants reports whether a file should be ingested: by the extension
// filter when one is set, otherwise by MIME type.
func (c *Connector) wants(path string) bool {
	if len(c.exts) > 0 {
		_, ok := c.exts[strings.ToLower(filepath.Ext(path))]
		return ok
	}
	return isTextMIME(detectMIMEType(filepath.Base(path)))
}

func sendErr(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}

// mimeByExt covers source and markup extensions the platform MIME
// database misses or misassigns (.ts is registered as MPEG transport
// stream on most systems).
var mimeByExt = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".ts":       "text/typescript",
	".tsx":      "text/typescript-jsx",
	".jsx":      "text/javascript-jsx",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".sh":       "text/x-shellscript",
	".bash":     "text/x-shellscript",
	".sql":      "text/x-sql",
}

// detectMIMEType maps a file name to a MIME type. Files without an
// extension are assumed to be plain text; unknown extensions fall back
// to application/octet-stream.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "text/plain"
	}
	if mt, ok := mimeByExt[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		// Strip parameters such as "; charset=utf-8".
		if i := strings.Index(mt, ";"); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		return mt
	}
	return "application/octet-stream"
}

// isTextMIME reports whether content with the given MIME type can be
// indexed as text.
func isTextMIME(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/javascript":
		return true
	}
	return false
}
