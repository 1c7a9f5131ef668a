package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show where a path stands in the vectorisation lifecycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if vectorizeService == nil {
		return errors.New("vectorize service not configured")
	}

	path := domain.NormalisePath(args[0])
	status := vectorizeService.PathStatus(path)
	cmd.Printf("%s: %s\n", path, status)

	if run := vectorizeService.Status(); run.Running {
		cmd.Printf("A run is in progress: %d paths processed, %d errors.\n", run.Processed, run.Errors)
	}

	return nil
}
