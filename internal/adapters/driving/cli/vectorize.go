package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driving"
)

var vectorizeCmd = &cobra.Command{
	Use:   "vectorize [root]",
	Short: "Vectorise a file tree",
	Long: `Walks the tree rooted at the given directory and embeds every
pending path. Files are embedded from their raw content and, where
enabled, from a generated summary; directories receive aggregate
vectors once their children are done.`,
	Args: cobra.ExactArgs(1),
	RunE: runVectorize,
}

func init() {
	rootCmd.AddCommand(vectorizeCmd)
}

func runVectorize(cmd *cobra.Command, args []string) error {
	if vectorizeService == nil {
		return errors.New("vectorize service not configured")
	}

	root := args[0]
	cmd.Printf("Vectorising %s...\n", root)

	report, err := vectorizeWithProgress(cmd, vectorizeService, root)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("vectorize failed: %w", err)
	}

	return nil
}

// vectorizeWithProgress runs vectorisation while displaying progress updates.
func vectorizeWithProgress(
	cmd *cobra.Command,
	orch driving.VectorizeOrchestrator,
	root string,
) (*domain.VectorizeReport, error) {
	unsubscribe := orch.SubscribeStatus(func(path string, status domain.PathStatus) {
		log.Debug("%s: %s", path, status)
	})
	defer unsubscribe()

	type outcome struct {
		report *domain.VectorizeReport
		err    error
	}

	// Run in goroutine so progress can be polled
	resultCh := make(chan outcome, 1)
	go func() {
		report, err := orch.VectorizeAll(cmd.Context(), root)
		resultCh <- outcome{report: report, err: err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastCount := 0
	for {
		select {
		case result := <-resultCh:
			return result.report, result.err
		case <-ticker.C:
			status := orch.Status()
			if status.Processed > lastCount {
				cmd.Printf("\rProcessing... %d paths", status.Processed)
				lastCount = status.Processed
			}
		}
	}
}

// printReport writes the run summary and any per-path failures.
func printReport(cmd *cobra.Command, report *domain.VectorizeReport) {
	cmd.Printf("\rProcessed %d paths (%d errors).\n", report.Processed, report.Errors)
	for _, failure := range report.Failures {
		cmd.Printf("  %s: %s\n", failure.Path, failure.Err)
	}
}
