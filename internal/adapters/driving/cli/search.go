package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
	searchMode  string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the vector index",
	Long: `Embeds the query and returns the most similar indexed paths.
The mode flag restricts which record kinds are searched: origin matches
raw content, summarize matches generated summaries, all matches both.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 uses the configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "search mode: origin, summarize or all")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()
	// Zero values defer to the configured defaults.
	opts := domain.SearchOptions{
		Limit: searchLimit,
		Mode:  domain.SearchMode(searchMode),
	}

	results, err := searchService.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

// searchRow is the JSON shape of one result. Vectors stay out of the
// output.
type searchRow struct {
	Path       string  `json:"path"`
	Kind       string  `json:"kind"`
	Similarity float64 `json:"similarity"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	rows := make([]searchRow, 0, len(results))
	for i := range results {
		rows = append(rows, searchRow{
			Path:       results[i].Item.Path,
			Kind:       results[i].Item.Kind.String(),
			Similarity: results[i].Similarity,
		})
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, results[i].Item.Path, results[i].Similarity)
		cmd.Printf("      Kind: %s\n", results[i].Item.Kind)
		cmd.Println()
	}

	return nil
}
