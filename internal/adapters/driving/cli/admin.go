package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that both indexes are in lockstep",
	Long: `Compares the keyword and vector indexes chunk by chunk. Documents
with chunks present in only one index are quarantined: they are
excluded from query results until re-ingested.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("retrieval engine not configured; run 'winnow config set embedding.provider ollama' first")
	}

	ctx := context.Background()

	stats, err := adminService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	cmd.Println(styleTitle.Render("Collection"))
	cmd.Printf("  Documents:  %d\n", stats.Documents)
	cmd.Printf("  Chunks:     %d\n", stats.Chunks)
	cmd.Printf("  Terms:      %d\n", stats.Terms)
	cmd.Printf("  Vectors:    %d\n", stats.Vectors)
	cmd.Printf("  Dimensions: %d\n", stats.Dimensions)
	if stats.EmbeddingModel != "" {
		cmd.Printf("  Model:      %s\n", stats.EmbeddingModel)
	}
	if stats.Quarantined > 0 {
		cmd.Println(styleWarn.Render(fmt.Sprintf("  Quarantined: %d (run 'winnow verify' for details)", stats.Quarantined)))
	}

	return nil
}

func runVerify(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("retrieval engine not configured; run 'winnow config set embedding.provider ollama' first")
	}

	ctx := context.Background()

	report, err := adminService.Verify(ctx)
	if report != nil && report.Clean() {
		cmd.Println("Indexes are in lockstep.")
		return nil
	}
	if report == nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if len(report.LexicalOnly) > 0 {
		cmd.Println(styleWarn.Render("Chunks only in the keyword index:"))
		for _, id := range report.LexicalOnly {
			cmd.Printf("  %s\n", id)
		}
	}
	if len(report.VectorOnly) > 0 {
		cmd.Println(styleWarn.Render("Chunks only in the vector index:"))
		for _, id := range report.VectorOnly {
			cmd.Printf("  %s\n", id)
		}
	}
	if len(report.Quarantined) > 0 {
		cmd.Println()
		cmd.Println("Quarantined documents (excluded from queries until re-ingested):")
		for _, id := range report.Quarantined {
			cmd.Printf("  %s\n", id)
		}
	}

	return err
}
