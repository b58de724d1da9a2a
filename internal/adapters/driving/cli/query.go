package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/winnowlabs/winnow/internal/core/domain"
)

// previewLimit caps the snippet preview length in table output.
const previewLimit = 200

var (
	queryK          int
	queryBudget     int
	queryJSON       bool
	queryShowPrompt bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Retrieve a cited context window for a question",
	Long: `Runs hybrid retrieval across the ingested documents. Keyword (BM25)
and semantic scores are fused; the winning passages are assembled into
a budgeted context window, each cited with its document and byte
offsets.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "k", "k", 0, "fused results to target (0 = configured default)")
	queryCmd.Flags().IntVar(&queryBudget, "budget", 0, "context budget in characters (0 = configured default)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the window as JSON")
	queryCmd.Flags().BoolVar(&queryShowPrompt, "show-prompt", false, "print the rendered generation prompt instead")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]

	if retrievalService == nil {
		return errors.New("retrieval engine not configured; run 'winnow config set embedding.provider ollama' first")
	}

	ctx := context.Background()
	opts := domain.QueryOptions{
		K:      queryK,
		Budget: queryBudget,
	}

	window, err := retrievalService.Query(ctx, question, opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryShowPrompt {
		cmd.Println(window.Prompt(question))
		return nil
	}
	if queryJSON {
		return outputWindowJSON(cmd, window)
	}
	return outputWindowTable(cmd, window)
}

func outputWindowJSON(cmd *cobra.Command, window *domain.ContextWindow) error {
	data, err := json.MarshalIndent(window, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal window: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputWindowTable(cmd *cobra.Command, window *domain.ContextWindow) error {
	if window.Empty() {
		cmd.Println("No matching passages.")
		return nil
	}

	header := fmt.Sprintf("Context window: %d passages, %d/%d chars",
		len(window.Snippets), window.Size, window.Budget)
	cmd.Println(styleTitle.Render(header))
	cmd.Println()

	for i, s := range window.Snippets {
		location := fmt.Sprintf("chars %d-%d", s.Start, s.End)
		score := fmt.Sprintf("%.3f", s.Score)
		cmd.Printf("  [%d] %s %s %s\n", i+1,
			styleLabel.Render(s.DocumentID),
			styleMuted.Render(location),
			styleScore.Render(score))
		cmd.Printf("      %s\n", preview(s.Text))
		cmd.Println()
	}

	return nil
}

// preview flattens a snippet to one line, capped for table output.
func preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) <= previewLimit {
		return flat
	}
	return flat[:previewLimit] + "..."
}
