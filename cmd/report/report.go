// Package report implements the report command for rendering stored
// analyses in the registered output formats.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harwood/paralegal/internal/config"
	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/internal/report"
	"github.com/harwood/paralegal/internal/store"
	"github.com/harwood/paralegal/pkg/logger"
	"github.com/harwood/paralegal/pkg/pathutil"
)

var (
	configFile string
	format     string
	outputPath string
)

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Render a report from a stored analysis",
		Long: `Render a full report from a stored analysis.

The argument is an analysis ID as printed by 'paralegal list', or the
word 'latest' for the most recently started analysis. The report is
written to stdout unless --output names a file.`,
		Example: `  # Render the latest analysis as markdown
  paralegal report latest

  # Render a specific analysis as YAML
  paralegal report 2f9a1c3e-8b47-4f6e-9c11-0d2a6b5e7f90 --format yaml

  # Write a markdown report to a file
  paralegal report latest --output contract-report.md`,
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Report format ("+strings.Join(report.ListRenderers(), ", ")+")")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	renderer, err := report.GetRenderer(format, log)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(report.ListRenderers(), ", "))
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Error("Failed to close store", "error", closeErr)
		}
	}()

	result, err := resolveAnalysis(cmd, args[0], st)
	if err != nil {
		return err
	}

	if outputPath == "" {
		return renderer.Render(os.Stdout, result)
	}

	target, err := pathutil.ValidateOutputPath(outputPath)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // path validated above
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil {
			log.Error("Failed to close report file", "error", closeErr)
		}
	}()

	if err := renderer.Render(out, result); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	log.Info("Report written", "path", outputPath, "format", format)

	return nil
}

func resolveAnalysis(cmd *cobra.Command, id string, st *store.Store) (*models.AnalysisResult, error) {
	if id == "latest" {
		return st.LatestAnalysis(cmd.Context())
	}
	return st.GetAnalysis(cmd.Context(), id)
}

// Run executes the report command.
func Run(args []string) error {
	cmd := NewReportCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
