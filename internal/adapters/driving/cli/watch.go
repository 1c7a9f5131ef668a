package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canopy-labs/canopy-cli/internal/connectors/filesystem"
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Watch a file tree and invalidate changed paths",
	Long: `Follows the tree rooted at the given directory and drops the stored
records of any path that changes, together with its ancestor
aggregates. The next vectorise run re-embeds what was invalidated.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if vectorizeService == nil {
		return errors.New("vectorize service not configured")
	}

	root := args[0]
	cmd.Printf("Watching %s. Press Ctrl+C to stop.\n", root)

	watcher := filesystem.NewWatcher(vectorizeService, currentExclusions, log)
	if err := watcher.Watch(cmd.Context(), root); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	return nil
}
