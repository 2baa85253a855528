// Package analyze implements the analyze command for running the document
// analysis pipeline over a plain text file.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harwood/paralegal/internal/analyzer"
	"github.com/harwood/paralegal/internal/cache"
	"github.com/harwood/paralegal/internal/config"
	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/internal/report"
	"github.com/harwood/paralegal/internal/rules"
	"github.com/harwood/paralegal/internal/store"
	"github.com/harwood/paralegal/pkg/logger"
	"github.com/harwood/paralegal/pkg/pathutil"
)

var (
	configFile   string
	rulesFile    string
	documentID   string
	documentType string
	jurisdiction string
	docVersion   string
	outputPath   string
	outputFormat string
	noStore      bool
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a legal document for issues and remedies",
		Long: `Analyze a plain text legal document.

The pipeline classifies the document, detects contradictions and other
legal issues, and compiles suggested remedies. A summary is printed to
stdout and the full result is stored for later listing and reporting.`,
		Example: `  # Analyze a contract and store the result
  paralegal analyze contract.txt

  # Provide document metadata used for classification hints and caching
  paralegal analyze lease.txt --document-type lease --jurisdiction CA

  # Write the full result to a file without storing it
  paralegal analyze contract.txt --no-store --output result.json

  # Use a custom rules file
  paralegal analyze contract.txt --rules rules/strict.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "Rules file overriding the embedded defaults")
	cmd.Flags().StringVar(&documentID, "document-id", "", "Document identifier (defaults to the file name)")
	cmd.Flags().StringVar(&documentType, "document-type", "", "Expected document type (contract, lease, will, ...)")
	cmd.Flags().StringVar(&jurisdiction, "jurisdiction", "", "Jurisdiction the document falls under")
	cmd.Flags().StringVar(&docVersion, "document-version", "", "Document version identifier")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the full result to a file")
	cmd.Flags().StringVar(&outputFormat, "format", "json", "Format for --output (json or yaml)")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Skip storing the result")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	documentPath, err := pathutil.ValidateDocumentPath(args[0])
	if err != nil {
		return fmt.Errorf("invalid document path: %w", err)
	}
	data, err := os.ReadFile(documentPath) //nolint:gosec // path validated above
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	a, err := buildAnalyzer(cfg, log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cfg.Analyzer.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Analyzer.AnalysisTimeout)
		defer cancel()
	}

	result, err := a.Analyze(ctx, string(data), documentMetadata(documentPath))
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", documentPath, err)
	}

	if !noStore {
		if err := persistResult(cfg.Store.Path, result, log); err != nil {
			return err
		}
	}

	renderer, err := report.GetRenderer("text", log)
	if err != nil {
		return err
	}
	if err := renderer.Render(os.Stdout, result); err != nil {
		return fmt.Errorf("rendering summary: %w", err)
	}

	if outputPath != "" {
		target, err := pathutil.ValidateOutputPath(outputPath)
		if err != nil {
			return fmt.Errorf("invalid output path: %w", err)
		}
		encoded, err := encodeResult(outputFormat, result)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, encoded, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", outputPath, err)
		}
		log.Info("Wrote analysis result", "path", outputPath, "format", outputFormat)
	}

	if result.Status == models.StatusFailed {
		return fmt.Errorf("analysis failed: %s", result.ErrorMessage)
	}

	return nil
}

// buildAnalyzer assembles the analyzer from the effective configuration.
// The --rules flag takes precedence over the configured rules file.
func buildAnalyzer(cfg *config.Config, log logger.Logger) (*analyzer.DocumentAnalyzer, error) {
	opts := []analyzer.Option{
		analyzer.WithConfig(analyzer.Config{
			MaxDocumentBytes:             cfg.Analyzer.MaxDocumentBytes,
			EnableClassification:         cfg.Analyzer.EnableClassification,
			EnableContradictionDetection: cfg.Analyzer.EnableContradictionDetection,
			EnableRemedyGeneration:       cfg.Analyzer.EnableRemedyGeneration,
			ParallelProcessing:           cfg.Analyzer.ParallelProcessing,
			EnableCaching:                cfg.Analyzer.EnableCaching,
		}),
		analyzer.WithLogger(log),
	}

	rulesPath := rulesFile
	if rulesPath == "" {
		rulesPath = cfg.Analyzer.RulesFile
	}
	if rulesPath != "" {
		r, err := rules.Load(rulesPath)
		if err != nil {
			return nil, fmt.Errorf("loading rules from %s: %w", rulesPath, err)
		}
		opts = append(opts, analyzer.WithRules(r))
	}

	if cfg.Analyzer.EnableCaching {
		opts = append(opts,
			analyzer.WithCache(cache.NewMemoryCache(cfg.Cache.MaxEntries, log)),
			analyzer.WithCacheTTL(cfg.Cache.TTL),
		)
	}

	return analyzer.New(opts...)
}

func documentMetadata(documentPath string) map[string]string {
	id := documentID
	if id == "" {
		id = filepath.Base(documentPath)
	}

	metadata := map[string]string{analyzer.MetadataDocumentID: id}
	if documentType != "" {
		metadata[analyzer.MetadataDocumentType] = documentType
	}
	if jurisdiction != "" {
		metadata[analyzer.MetadataJurisdiction] = jurisdiction
	}
	if docVersion != "" {
		metadata[analyzer.MetadataVersion] = docVersion
	}
	return metadata
}

func persistResult(path string, result *models.AnalysisResult, log logger.Logger) error {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error("Failed to close store", "error", closeErr)
		}
	}()

	// The analysis context may already be past its deadline; failed
	// results still have to be stored.
	if err := st.SaveResult(context.Background(), result); err != nil {
		return fmt.Errorf("saving result: %w", err)
	}

	log.Info("Stored analysis", "analysis_id", result.ID, "store", path)
	return nil
}

func encodeResult(format string, result *models.AnalysisResult) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(result, "", "  ")
	case "yaml":
		// Round-tripping through JSON keeps the YAML keys aligned with
		// the result's JSON field names.
		raw, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encoding result: %w", err)
		}
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("encoding result: %w", err)
		}
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("unknown output format: %s (want json or yaml)", format)
	}
}

// Run executes the analyze command.
func Run(args []string) error {
	cmd := NewAnalyzeCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
