// Package list implements the list command for viewing stored analyses.
package list

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

var (
	configFile string
	status     string
	docType    string
	docID      string
	since      string
	limit      int
	offset     int
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored analyses",
		Long: `List analyses stored in the analysis database, newest first.

Results can be narrowed by status, document type, document ID, or a time
window. The --since filter accepts either a duration (24h, 30m) or a date
(2006-01-02).`,
		Example: `  # List the most recent analyses
  paralegal list

  # Only completed analyses of contracts
  paralegal list --status completed --document-type contract

  # Everything analyzed in the last day
  paralegal list --since 24h --limit 50`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, running, completed, failed)")
	cmd.Flags().StringVar(&docType, "document-type", "", "Filter by classified document type")
	cmd.Flags().StringVar(&docID, "document-id", "", "Filter by document identifier")
	cmd.Flags().StringVar(&since, "since", "", "Only analyses started after a duration ago (24h) or date (2006-01-02)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of analyses to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of analyses to skip")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.GetGlobalLogger()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	filter, err := buildFilter()
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

	analyses, err := st.ListAnalyses(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("listing analyses: %w", err)
	}

	if len(analyses) == 0 {
		log.Info("No analyses found")
		return nil
	}

	if err := displayTable(analyses); err != nil {
		return err
	}

	log.Info("💡 Use 'paralegal report <id>' to render a full report", "id", analyses[0].ID)

	return nil
}

func buildFilter() (store.AnalysisFilter, error) {
	filter := store.AnalysisFilter{Limit: limit, Offset: offset}

	if status != "" {
		normalized := models.NormalizeStatus(status)
		if !models.IsValidStatus(normalized) {
			return filter, fmt.Errorf("invalid status %q (valid: %s)",
				status, strings.Join(models.ValidStatuses(), ", "))
		}
		filter.Status = &normalized
	}
	if docType != "" {
		filter.DocumentType = &docType
	}
	if docID != "" {
		filter.DocumentID = &docID
	}
	if since != "" {
		cutoff, err := parseSince(since)
		if err != nil {
			return filter, err
		}
		filter.Since = cutoff
	}

	return filter, nil
}

// parseSince accepts either a duration relative to now or an absolute date.
func parseSince(value string) (time.Time, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return time.Now().Add(-d), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q (want a duration like 24h or a date like 2006-01-02)", value)
}

func displayTable(analyses []*store.AnalysisSummary) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	// Print header
	if _, err := fmt.Fprintln(w, "ID\tDOCUMENT\tTYPE\tSTATUS\tISSUES\tREMEDIES\tDURATION\tSTARTED"); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 100)); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	for _, a := range analyses {
		document := "-"
		if a.DocumentID.Valid && a.DocumentID.String != "" {
			document = a.DocumentID.String
		}

		documentType := "-"
		if a.DocumentType.Valid {
			documentType = a.DocumentType.String
		}

		analysisStatus := a.Status
		if a.Status == models.StatusFailed {
			analysisStatus += " ⚠️"
		}

		duration := "-"
		if d := a.Duration(); d > 0 {
			duration = d.Round(time.Millisecond).String()
		}

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			a.ID,
			document,
			documentType,
			analysisStatus,
			a.IssueCount,
			a.RemedyCount,
			duration,
			formatTimeAgo(a.StartedAt),
		); err != nil {
			return fmt.Errorf("writing analysis entry: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}

	return nil
}

func formatTimeAgo(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case duration < 30*24*time.Hour:
		weeks := int(duration.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		return t.Format("Jan 2, 2006")
	}
}

// Run executes the list command.
func Run(args []string) error {
	cmd := NewListCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
