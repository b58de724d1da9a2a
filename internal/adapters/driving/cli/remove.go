package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

var removeCmd = &cobra.Command{
	Use:   "remove [doc-id]",
	Short: "Remove a document from the store and both indexes",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval engine not configured; run 'winnow config set embedding.provider ollama' first")
	}

	docID := args[0]
	ctx := context.Background()

	if err := retrievalService.Remove(ctx, docID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no document with ID %q; 'winnow document list' shows what is ingested", docID)
		}
		return fmt.Errorf("remove failed: %w", err)
	}

	cmd.Printf("Removed document: %s\n", docID)
	return nil
}
