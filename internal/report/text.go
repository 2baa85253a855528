package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/pkg/logger"
)

// TextRenderer renders an analysis report as styled terminal text.
type TextRenderer struct {
	logger logger.Logger
}

// NewTextRenderer creates a terminal text renderer.
func NewTextRenderer(log logger.Logger) *TextRenderer {
	return &TextRenderer{logger: log}
}

// Name returns the renderer identifier.
func (r *TextRenderer) Name() string { return "text" }

// Description returns a human-readable description of the renderer.
func (r *TextRenderer) Description() string {
	return "Styled terminal report with severity highlighting"
}

// Render writes the styled report to w.
func (r *TextRenderer) Render(w io.Writer, result *models.AnalysisResult) error {
	rpt := FromResult(result)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headingStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	faintStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("246"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("Legal Document Analysis"))
	b.WriteString("\n\n")

	writeField(&b, "Analysis", result.ID)
	if result.DocumentID != "" {
		writeField(&b, "Document", result.DocumentID)
	}
	writeField(&b, "Analyzer", fmt.Sprintf("%s v%s", result.AnalyzerName, result.AnalyzerVersion))
	writeField(&b, "Status", result.Status)
	if result.ErrorMessage != "" {
		writeField(&b, "Error", result.ErrorMessage)
	}
	writeField(&b, "Duration", result.ProcessingTime.String())
	writeField(&b, "Confidence", fmt.Sprintf("%.1f%%", result.ConfidenceScore*100))
	b.WriteString("\n")

	writeSection(&b, headingStyle, "Executive Summary", rpt.ExecutiveSummary)
	writeSection(&b, headingStyle, "Classification", rpt.ClassificationSummary)

	b.WriteString(headingStyle.Render(fmt.Sprintf("Issues (%d)", len(result.Issues))))
	b.WriteString("\n")
	if len(result.Issues) == 0 {
		b.WriteString("  " + rpt.IssuesSummary + "\n")
	}
	for i := range result.Issues {
		issue := &result.Issues[i]
		badge := severityStyle(issue.Severity).Render(strings.ToUpper(issue.Severity))
		b.WriteString(fmt.Sprintf("  %s %s\n", badge, issue.Title))
		b.WriteString(fmt.Sprintf("    %s\n", issue.Description))
		for _, loc := range issue.Locations {
			b.WriteString(faintStyle.Render(fmt.Sprintf("    line %d: %q", loc.Line, loc.Excerpt)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render(fmt.Sprintf("Remedies (%d)", len(result.Remedies))))
	b.WriteString("\n")
	if len(result.Remedies) == 0 {
		b.WriteString("  " + rpt.RemediesSummary + "\n")
	}
	for i := range result.Remedies {
		remedy := &result.Remedies[i]
		b.WriteString(fmt.Sprintf("  %d. %s (%s)\n", i+1, remedy.Title, remedy.Priority))
		b.WriteString(fmt.Sprintf("     %s\n", remedy.Description))
		for _, step := range remedy.ImplementationSteps {
			b.WriteString(faintStyle.Render(fmt.Sprintf("     - %s", step)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	writeSection(&b, headingStyle, "Risk Assessment", rpt.RiskAssessment)

	b.WriteString(headingStyle.Render("Recommendations"))
	b.WriteString("\n")
	for i, rec := range rpt.Recommendations {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, rec))
	}
	b.WriteString("\n")

	if len(rpt.ComponentPerformance) > 0 {
		b.WriteString(headingStyle.Render("Component Performance"))
		b.WriteString("\n")
		names := make([]string, 0, len(rpt.ComponentPerformance))
		for name := range rpt.ComponentPerformance {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cp := rpt.ComponentPerformance[name]
			confidence := "n/a"
			if cp.Confidence != nil {
				confidence = fmt.Sprintf("%.2f", *cp.Confidence)
			}
			b.WriteString(fmt.Sprintf("  %-24s %-8s %-10s confidence %s\n",
				name, cp.Status, cp.Duration.String(), confidence))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeField(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "%-12s%s\n", name+":", value)
}

func writeSection(b *strings.Builder, style lipgloss.Style, heading, body string) {
	b.WriteString(style.Render(heading))
	b.WriteString("\n  ")
	b.WriteString(body)
	b.WriteString("\n\n")
}

// severityStyle returns the badge style for a severity level.
func severityStyle(severity string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch severity {
	case models.SeverityCritical:
		return base.Background(lipgloss.Color("197")).Foreground(lipgloss.Color("15"))
	case models.SeverityHigh:
		return base.Background(lipgloss.Color("208")).Foreground(lipgloss.Color("15"))
	case models.SeverityMedium:
		return base.Background(lipgloss.Color("214")).Foreground(lipgloss.Color("15"))
	case models.SeverityLow:
		return base.Background(lipgloss.Color("148")).Foreground(lipgloss.Color("15"))
	case models.SeverityInfo:
		return base.Background(lipgloss.Color("86")).Foreground(lipgloss.Color("15"))
	default:
		return base.Background(lipgloss.Color("240")).Foreground(lipgloss.Color("15"))
	}
}
