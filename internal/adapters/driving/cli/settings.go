package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/canopy-labs/canopy-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure embedding kinds, AI providers, and other options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Set the default search mode",
	Long: `Set the default search mode to control which record kinds are searched.

Available modes:
  origin     - Match raw file content
  summarize  - Match generated summaries
  all        - Match both`,
	RunE: runSettingsMode,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used for vectorisation and search.`,
	RunE:  runSettingsEmbedding,
}

var settingsSummarizerCmd = &cobra.Command{
	Use:   "summarizer",
	Short: "Configure summariser provider",
	Long:  `Configure the language model that generates file summaries for summary embeddings.`,
	RunE:  runSettingsSummarizer,
}

var settingsWorkersCmd = &cobra.Command{
	Use:   "workers [n]",
	Short: "Set the vectorisation worker pool size",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsWorkers,
}

var settingsExclusionsCmd = &cobra.Command{
	Use:   "exclusions [pattern...]",
	Short: "Replace the exclusion pattern list",
	Long: `Replaces the list of glob patterns for paths skipped during
vectorisation. Called with no patterns, clears the list.`,
	RunE: runSettingsExclusions,
}

var settingsKindCmd = &cobra.Command{
	Use:   "kind [kind] [on|off]",
	Short: "Switch an embedding kind on or off",
	Long: `Enables or disables one embedding kind. Valid kinds are origin,
summarize, vs_origin and vs_summarize.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsKind,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsSummarizerCmd)
	settingsCmd.AddCommand(settingsWorkersCmd)
	settingsCmd.AddCommand(settingsExclusionsCmd)
	settingsCmd.AddCommand(settingsKindCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	// Embedding settings
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Summariser settings
	cmd.Println("[Summarizer]")
	cmd.Printf("  Provider: %s\n", settings.Summarizer.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Summarizer.Model)
	if settings.Summarizer.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Summarizer.BaseURL)
	}
	if settings.Summarizer.Provider.RequiresAPIKey() {
		if settings.Summarizer.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Summarizer.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status = "configured"
	if !settings.Summarizer.IsConfigured() {
		status = "not configured"
	}
	if !settings.Kinds.NeedsSummarizer() {
		status += " (not required by enabled kinds)"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Kind switches
	cmd.Println("[Kinds]")
	for _, kind := range append(domain.FileKinds(), domain.DirectoryKinds()...) {
		state := "off"
		if settings.Kinds.Enabled(kind) {
			state = "on"
		}
		cmd.Printf("  %s: %s\n", kind, state)
	}
	cmd.Println()

	// Vectorise settings
	cmd.Println("[Vectorize]")
	cmd.Printf("  Workers: %d\n", settings.Vectorize.Workers)
	if len(settings.Vectorize.Exclusions) > 0 {
		cmd.Printf("  Exclusions: %s\n", strings.Join(settings.Vectorize.Exclusions, ", "))
	} else {
		cmd.Printf("  Exclusions: (none)\n")
	}
	cmd.Println()

	// Search settings
	cmd.Println("[Search]")
	cmd.Printf("  Default mode: %s\n", settings.Search.DefaultMode.Description())
	cmd.Printf("  Default limit: %d\n", settings.Search.DefaultLimit)
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'canopy settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Canopy Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Embedding Provider
	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Println("Every search and vectorise run embeds content, so an embedding provider is required.")
	cmd.Println()

	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	// Step 2: Summariser Provider (if needed)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Kinds.NeedsSummarizer() {
		cmd.Println("Step 2: Configure Summariser Provider")
		cmd.Println("-------------------------------------")
		cmd.Println("The summarize kind is enabled, so a summariser provider is required.")
		cmd.Println()

		if err := configureSummarizerProvider(cmd, reader); err != nil {
			return err
		}
	} else {
		cmd.Println("Step 2: Summariser Provider (skipped)")
		cmd.Println("-------------------------------------")
		cmd.Println("Not required while the summarize kind is disabled.")
		cmd.Println()
	}

	// Step 3: Default Search Mode
	cmd.Println("Step 3: Select Default Search Mode")
	cmd.Println("----------------------------------")
	modes := domain.AllSearchModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	modeIdx := parseChoice(input, len(modes), 1)
	selectedMode := modes[modeIdx-1]

	if err := settingsService.SetSearchMode(selectedMode); err != nil {
		return fmt.Errorf("failed to set search mode: %w", err)
	}
	cmd.Printf("Set search mode to: %s\n\n", selectedMode.Description())

	// Final validation
	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsMode(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select Default Search Mode")
	cmd.Println("--------------------------")
	modes := domain.AllSearchModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print("\nEnter choice: ")
	input := readLine(reader)
	idx := parseChoice(input, len(modes), 0)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selectedMode := modes[idx-1]
	if err := settingsService.SetSearchMode(selectedMode); err != nil {
		return fmt.Errorf("failed to set search mode: %w", err)
	}

	cmd.Printf("Search mode set to: %s\n", selectedMode.Description())

	// Every mode embeds the query, so warn if embedding is unset
	settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
	if settings != nil && !settings.Embedding.IsConfigured() {
		cmd.Println("\nNote: searching requires an embedding provider.")
		cmd.Println("Run 'canopy settings embedding' to configure.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsSummarizer(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureSummarizerProvider(cmd, reader)
}

func runSettingsWorkers(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid worker count %q", args[0])
	}

	if err := settingsService.SetWorkers(n); err != nil {
		return fmt.Errorf("failed to set workers: %w", err)
	}

	cmd.Printf("Worker pool size set to %d.\n", n)
	return nil
}

func runSettingsExclusions(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetExclusions(args); err != nil {
		return fmt.Errorf("failed to set exclusions: %w", err)
	}

	if len(args) == 0 {
		cmd.Println("Exclusion list cleared.")
		return nil
	}

	cmd.Printf("Exclusions set: %s\n", strings.Join(args, ", "))
	return nil
}

func runSettingsKind(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	kind := domain.Kind(args[0])

	var enabled bool
	switch strings.ToLower(args[1]) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("invalid state %q, expected on or off", args[1])
	}

	if err := settingsService.SetKindEnabled(kind, enabled); err != nil {
		return fmt.Errorf("failed to set kind: %w", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	cmd.Printf("Kind %s %s.\n", kind, state)
	return nil
}

//nolint:dupl // Similar to configureSummarizerProvider but for embeddings - intentional for CLI flow clarity
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

//nolint:dupl // Similar to configureEmbeddingProvider but for the summariser - intentional for CLI flow clarity
func configureSummarizerProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Summariser Provider")
	providers := domain.AllSummarizerProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultSummarizerModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetSummarizerProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure summariser provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateSummarizerConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("summariser configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Summariser provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
