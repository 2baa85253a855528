// Package show implements the show command for inspecting a single
// stored analysis.
package show

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/harwood/paralegal/internal/config"
	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/internal/store"
	"github.com/harwood/paralegal/pkg/logger"
)

var configFile string

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored analysis with its issues and remedies",
		Long: `Show a single stored analysis.

The argument is an analysis ID as printed by 'paralegal list', or the
word 'latest' for the most recently started analysis.`,
		Example: `  # Show a specific analysis
  paralegal show 2f9a1c3e-8b47-4f6e-9c11-0d2a6b5e7f90

  # Show the most recent analysis
  paralegal show latest`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
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

	ctx := cmd.Context()

	result, err := resolveAnalysis(cmd, args[0], st)
	if err != nil {
		return err
	}

	counts, err := st.IssueCountsBySeverity(ctx, result.ID)
	if err != nil {
		return fmt.Errorf("counting issues: %w", err)
	}

	printOverview(result, counts)

	if len(result.Issues) > 0 {
		if err := printIssues(result.Issues); err != nil {
			return err
		}
	}
	if len(result.Remedies) > 0 {
		if err := printRemedies(result.Remedies); err != nil {
			return err
		}
	}

	return nil
}

func resolveAnalysis(cmd *cobra.Command, id string, st *store.Store) (*models.AnalysisResult, error) {
	if id == "latest" {
		return st.LatestAnalysis(cmd.Context())
	}
	return st.GetAnalysis(cmd.Context(), id)
}

//nolint:forbidigo // command output
func printOverview(result *models.AnalysisResult, counts *store.IssueCounts) {
	fmt.Printf("Analysis %s\n", result.ID)

	if result.DocumentID != "" {
		fmt.Printf("  Document:    %s\n", result.DocumentID)
	}
	if result.Classification != nil {
		fmt.Printf("  Type:        %s (%.0f%% confidence)\n",
			result.Classification.DocumentType, result.Classification.Confidence*100)
	}

	fmt.Printf("  Status:      %s\n", result.Status)
	if result.ErrorMessage != "" {
		fmt.Printf("  Error:       %s\n", result.ErrorMessage)
	}

	fmt.Printf("  Analyzer:    %s %s\n", result.AnalyzerName, result.AnalyzerVersion)
	fmt.Printf("  Started:     %s\n", result.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if !result.CompletedAt.IsZero() {
		fmt.Printf("  Duration:    %s\n", result.ProcessingTime.Round(time.Millisecond))
	}
	fmt.Printf("  Confidence:  %.0f%%\n", result.ConfidenceScore*100)
	fmt.Printf("  Tokens:      %d\n", result.TokensAnalyzed)
	fmt.Printf("  Issues:      %d%s\n", counts.Total, severityBreakdown(counts))
	fmt.Printf("  Remedies:    %d\n", len(result.Remedies))
}

// severityBreakdown renders non-zero severity tallies, worst first.
func severityBreakdown(counts *store.IssueCounts) string {
	parts := []string{}
	for _, tally := range []struct {
		severity string
		count    int
	}{
		{models.SeverityCritical, counts.Critical},
		{models.SeverityHigh, counts.High},
		{models.SeverityMedium, counts.Medium},
		{models.SeverityLow, counts.Low},
		{models.SeverityInfo, counts.Info},
	} {
		if tally.count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", tally.count, tally.severity))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(parts, ", "))
}

func printIssues(issues []models.LegalIssue) error {
	fmt.Println("\nISSUES") //nolint:forbidigo // command output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "SEVERITY\tTYPE\tCONFIDENCE\tTITLE"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, issue := range issues {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\n",
			issue.Severity, issue.Type, issue.Confidence*100, issue.Title); err != nil {
			return fmt.Errorf("writing issue entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}
	return nil
}

func printRemedies(remedies []models.Remedy) error {
	fmt.Println("\nREMEDIES") //nolint:forbidigo // command output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "PRIORITY\tCATEGORY\tTITLE"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, remedy := range remedies {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n",
			remedy.Priority, remedy.Category, remedy.Title); err != nil {
			return fmt.Errorf("writing remedy entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}
	return nil
}

// Run executes the show command.
func Run(args []string) error {
	cmd := NewShowCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
