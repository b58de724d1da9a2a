package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/winnowlabs/winnow/internal/connectors/filesystem"
	"github.com/winnowlabs/winnow/internal/connectors/github"
	"github.com/winnowlabs/winnow/internal/core/domain"
	"github.com/winnowlabs/winnow/internal/core/ports/driven"
)

var (
	ingestWatch bool
	ingestForce bool
	ingestExts  []string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path|github:owner/repo[@ref]]...",
	Short: "Ingest documents from local paths or GitHub repositories",
	Long: `Ingests documents into the retrieval indexes.

Local arguments may be files or directories. Directories are walked
recursively, skipping hidden entries and binary files; --ext narrows
the walk to specific extensions. Arguments prefixed with "github:"
fetch a repository's text files through the GitHub API and need a
personal access token ('winnow config set github.token').

Unchanged documents are skipped by content hash; --force re-ingests
them anyway. With --watch the command keeps running and re-ingests
files as they change on disk; watch mode takes a single local
directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep watching a directory for changes")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "re-ingest documents even when unchanged")
	ingestCmd.Flags().StringSliceVar(&ingestExts, "ext", nil, "file extensions to include (default: all text files)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if retrievalService == nil || syncService == nil {
		return errors.New("retrieval engine not configured; run 'winnow config set embedding.provider ollama' first")
	}

	if ingestWatch {
		return runIngestWatch(cmd, args)
	}

	ctx := context.Background()
	for _, arg := range args {
		if err := ingestOne(ctx, cmd, arg); err != nil {
			return err
		}
	}
	return nil
}

// ingestOne dispatches a single argument: a GitHub repo spec, a local
// directory, or a single file.
func ingestOne(ctx context.Context, cmd *cobra.Command, arg string) error {
	if strings.HasPrefix(arg, "github:") {
		conn, err := githubConnector(arg)
		if err != nil {
			return err
		}
		return syncConnector(ctx, cmd, conn)
	}

	path := filesystem.ResolveLocalPath(arg)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: path %q does not exist", domain.ErrInvalidInput, path)
	}
	if info.IsDir() {
		return syncConnector(ctx, cmd, filesystem.New(path, ingestExts))
	}
	return ingestFile(ctx, cmd, path)
}

// syncConnector runs one sync pass over a connector and prints the
// report.
func syncConnector(ctx context.Context, cmd *cobra.Command, conn driven.Connector) error {
	cmd.Printf("Ingesting from %s...\n", conn.Type())

	report, err := syncService.Sync(ctx, conn, ingestForce)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("  %d ingested, %d skipped, %d failed (%s)\n",
		report.Ingested, report.Skipped, report.Failed,
		report.Duration.Round(time.Millisecond))
	if report.Failed > 0 {
		cmd.Println(styleWarn.Render("  Some documents failed; re-run with --verbose for details."))
	}
	return nil
}

// ingestFile reads a single file and hands it to the engine directly.
func ingestFile(ctx context.Context, cmd *cobra.Command, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	res, err := retrievalService.Ingest(ctx, domain.Document{
		ID:      path,
		Content: string(content),
		Source:  "cli",
		Metadata: map[string]string{
			"filename": filepath.Base(path),
		},
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	verb := "ingested"
	if res.Replaced {
		verb = "replaced"
	}
	cmd.Printf("  %s: %d chunks %s (%s)\n",
		res.DocumentID, res.Chunks, verb, res.Duration.Round(time.Millisecond))
	return nil
}

// runIngestWatch runs an initial sync and then follows filesystem
// changes until interrupted.
func runIngestWatch(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: watch mode takes exactly one directory", domain.ErrInvalidInput)
	}
	if strings.HasPrefix(args[0], "github:") {
		return fmt.Errorf("%w: watch mode requires a local directory", domain.ErrInvalidInput)
	}

	conn := filesystem.New(filesystem.ResolveLocalPath(args[0]), ingestExts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.Printf("Watching %s (ctrl-c to stop)...\n", conn.Root())

	if err := syncService.Watch(ctx, conn); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("Watch stopped.")
	return nil
}

// githubConnector builds a GitHub connector from a repo spec, using the
// configured token.
func githubConnector(spec string) (*github.Connector, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}

	cfg, err := github.ParseRepo(spec)
	if err != nil {
		return nil, err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return github.New(cfg, github.StaticToken(settings.GitHub.Token)), nil
}
