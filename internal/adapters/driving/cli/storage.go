package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Inspect and manage the vector store",
	Long:  `Count stored embedding records or clear the store entirely.`,
}

var storageCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count stored records",
	RunE:  runStorageCount,
}

var storageClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored records",
	Long:  `Removes every embedding record and resets path statuses. The next vectorise run starts from scratch.`,
	RunE:  runStorageClear,
}

// clearYes skips the confirmation prompt.
var clearYes bool

func init() {
	storageClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")

	storageCmd.AddCommand(storageCountCmd)
	storageCmd.AddCommand(storageClearCmd)
	rootCmd.AddCommand(storageCmd)
}

func runStorageCount(cmd *cobra.Command, _ []string) error {
	if storageService == nil {
		return errors.New("storage service not configured")
	}

	ctx := context.Background()

	count, err := storageService.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	cmd.Printf("%d records stored.\n", count)
	return nil
}

func runStorageClear(cmd *cobra.Command, _ []string) error {
	if storageService == nil {
		return errors.New("storage service not configured")
	}

	if !clearYes {
		cmd.Print("Remove all stored records? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n') //nolint:errcheck // empty answer aborts
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	ctx := context.Background()

	if err := storageService.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear storage: %w", err)
	}

	cmd.Println("Storage cleared.")
	return nil
}
