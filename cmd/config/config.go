// Package config implements the config command for inspecting and
// validating the effective configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harwood/paralegal/internal/config"
)

var configFile string

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and validate the effective configuration",
		Long: `Show the effective configuration and validate it.

The effective configuration is the merge of built-in defaults, the config
file (explicit via --config or discovered), and PARALEGAL_* environment
variables.`,
		Example: `  # Show the discovered configuration
  paralegal config

  # Validate a specific config file
  paralegal config --config paralegal.yaml`,
		Args: cobra.NoArgs,
		RunE: runConfig,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")

	return cmd
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	source := cfg.Source
	if source == "" {
		source = "built-in defaults and environment"
	}
	fmt.Printf("🔍 Validating configuration: %s\n", source)

	printEffectiveConfig(cfg)

	fmt.Println("\n✅ Configuration is valid!")
	return nil
}

func printEffectiveConfig(cfg *config.Config) {
	// Analyzer configuration
	fmt.Println("\n📄 Analyzer:")
	rulesFile := cfg.Analyzer.RulesFile
	if rulesFile == "" {
		rulesFile = "(embedded defaults)"
	}
	fmt.Printf("   Rules file: %s\n", rulesFile)
	fmt.Printf("   Max document size: %d bytes\n", cfg.Analyzer.MaxDocumentBytes)
	fmt.Printf("   Analysis timeout: %s\n", cfg.Analyzer.AnalysisTimeout)
	fmt.Printf("   Components: %s\n", strings.Join(enabledComponents(cfg), ", "))
	scheduling := "sequential"
	if cfg.Analyzer.ParallelProcessing {
		scheduling = "parallel"
	}
	fmt.Printf("   Scheduling: %s\n", scheduling)

	// Cache configuration
	if cfg.Analyzer.EnableCaching {
		fmt.Println("\n💾 Cache:")
		fmt.Printf("   Max entries: %d\n", cfg.Cache.MaxEntries)
		fmt.Printf("   TTL: %s\n", cfg.Cache.TTL)
	} else {
		fmt.Println("\n💾 Cache: disabled")
	}

	// Store configuration
	fmt.Println("\n🗄️  Store:")
	fmt.Printf("   Path: %s\n", cfg.Store.Path)

	// Logging configuration
	fmt.Println("\n📝 Logging:")
	fmt.Printf("   Format: %s\n", cfg.Logging.Format)
	fmt.Printf("   Debug: %v\n", cfg.Logging.Debug)
}

func enabledComponents(cfg *config.Config) []string {
	components := []string{}

	if cfg.Analyzer.EnableClassification {
		components = append(components, "classification")
	}
	if cfg.Analyzer.EnableContradictionDetection {
		components = append(components, "contradiction detection")
	}
	if cfg.Analyzer.EnableRemedyGeneration {
		components = append(components, "remedy generation")
	}

	return components
}

// Run executes the config command.
func Run(args []string) error {
	cmd := NewConfigCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
