// Package cli implements the cobra command-line interface for Canopy.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/canopy-labs/canopy-cli/internal/adapters/driven/ai"
	configfile "github.com/canopy-labs/canopy-cli/internal/adapters/driven/config/file"
	"github.com/canopy-labs/canopy-cli/internal/adapters/driven/storage/sqlite"
	"github.com/canopy-labs/canopy-cli/internal/connectors/filesystem"
	"github.com/canopy-labs/canopy-cli/internal/core/domain"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driven"
	"github.com/canopy-labs/canopy-cli/internal/core/ports/driving"
	"github.com/canopy-labs/canopy-cli/internal/core/services"
	"github.com/canopy-labs/canopy-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flag values.
var (
	verbose   bool
	dataDir   string
	configDir string
)

// Application services. Execute wires them before any command runs;
// tests substitute them directly.
var (
	log              driven.Logger = logger.Default()
	vectorizeService driving.VectorizeOrchestrator
	searchService    driving.SearchService
	storageService   driving.StorageService
	settingsService  driving.SettingsService

	// currentExclusions mirrors the exclusion list the services were
	// wired with, for commands that construct watchers.
	currentExclusions domain.ExclusionList

	vectorStore *sqlite.Store
	aiServices  *ai.InitResult
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "Semantic vector index over a local file tree",
	Long: `Canopy builds a semantic vector index over a local file tree.

Files are embedded from their raw content and from generated summaries,
and each directory carries aggregate vectors summarising its subtree.
The index answers similarity queries from the command line or over MCP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostic output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for the vector store (default ~/.canopy/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory for configuration (default ~/.canopy)")
}

// Execute wires the application services and runs the root command.
// Wiring happens after flag parsing so --verbose, --data-dir and
// --config can influence it; tests that drive rootCmd directly keep
// whatever services they injected.
func Execute(ctx context.Context) error {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return initServices(cmd)
	}
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// initServices builds the full service graph from configuration. An
// unreachable AI provider degrades to a warning so commands that do
// not need it still work.
func initServices(cmd *cobra.Command) error {
	log = logger.New(verbose, cmd.ErrOrStderr())

	configStore, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	settingsService = services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	currentExclusions = settings.Vectorize.Exclusions

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	vectorStore = store

	prompts, err := configfile.NewPromptStore(promptDirFor(configDir))
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	aiServices = ai.InitServices(*settings, prompts)
	for _, warning := range aiServices.Warnings {
		log.Warn("%s", warning)
	}

	tree := filesystem.New(settings.Vectorize.Exclusions)
	tracker := services.NewStatusTracker(settings.Vectorize.Exclusions)

	vectorizeService = services.NewVectorizeOrchestrator(
		tree, store,
		aiServices.EmbeddingService, aiServices.SummarizerService,
		tracker, settings.Kinds, settings.Vectorize.Workers, log,
	)
	searchService = services.NewSearchService(store, aiServices.EmbeddingService, settings.Search, log)
	storageService = services.NewStorageService(store, tracker, log)

	return nil
}

// closeServices releases provider connections and the vector store.
func closeServices() {
	if aiServices != nil {
		aiServices.Close()
	}
	if vectorStore != nil {
		vectorStore.Close() //nolint:errcheck
	}
}

// promptDirFor places prompts under the chosen config directory, or
// the default location when none was chosen.
func promptDirFor(configDir string) string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "prompts")
}
