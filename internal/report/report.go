// Package report builds human-readable summaries of analysis results and
// renders them as terminal text, markdown, or YAML.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/harwood/paralegal/internal/models"
)

// MetadataKey is the result metadata key under which the generated report is
// stored, in map form so it survives JSON persistence and deep copies.
const MetadataKey = "analysis_report"

// Component status values recorded in the report.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ComponentPerformance records how one analysis component fared.
// Confidence is nil when the component failed.
type ComponentPerformance struct {
	Confidence *float64
	Status     string
	Duration   time.Duration
}

// Report summarizes one analysis result. All summary fields except
// ComponentPerformance are derived purely from the result, so a report can
// be rebuilt from a stored result at any time.
type Report struct {
	ComponentPerformance  map[string]ComponentPerformance
	ExecutiveSummary      string
	ClassificationSummary string
	IssuesSummary         string
	RemediesSummary       string
	RiskAssessment        string
	Recommendations       []string
}

// Build derives a report from an analysis result. The components map holds
// per-component performance for every component that ran; pass nil when that
// information is not available.
func Build(result *models.AnalysisResult, components map[string]ComponentPerformance) *Report {
	return &Report{
		ExecutiveSummary:      executiveSummary(result),
		ClassificationSummary: classificationSummary(result.Classification),
		IssuesSummary:         issuesSummary(result.Issues),
		RemediesSummary:       remediesSummary(result.Remedies),
		RiskAssessment:        riskAssessment(result.Issues),
		Recommendations:       recommendations(result.Remedies),
		ComponentPerformance:  components,
	}
}

// FromResult rebuilds a report for a stored result. Component performance is
// recovered from the result metadata when present; the summary text is always
// recomputed from the result fields so renderers never depend on how the
// result was persisted.
func FromResult(result *models.AnalysisResult) *Report {
	rpt := Build(result, nil)
	raw, ok := result.Metadata[MetadataKey].(map[string]any)
	if !ok {
		return rpt
	}
	perf, ok := raw["component_performance"].(map[string]any)
	if !ok {
		return rpt
	}
	rpt.ComponentPerformance = decodePerformance(perf)
	return rpt
}

// Map converts the report to a plain map for storage in result metadata.
// Durations become seconds so the values survive a JSON round trip.
func (r *Report) Map() map[string]any {
	perf := make(map[string]any, len(r.ComponentPerformance))
	for name, cp := range r.ComponentPerformance {
		entry := map[string]any{
			"status":          cp.Status,
			"processing_time": cp.Duration.Seconds(),
			"confidence":      nil,
		}
		if cp.Confidence != nil {
			entry["confidence"] = *cp.Confidence
		}
		perf[name] = entry
	}
	return map[string]any{
		"executive_summary":      r.ExecutiveSummary,
		"classification_summary": r.ClassificationSummary,
		"issues_summary":         r.IssuesSummary,
		"remedies_summary":       r.RemediesSummary,
		"risk_assessment":        r.RiskAssessment,
		"recommendations":        append([]string(nil), r.Recommendations...),
		"component_performance":  perf,
	}
}

func executiveSummary(result *models.AnalysisResult) string {
	docType := models.DocumentTypeUnknown
	if result.Classification != nil {
		docType = result.Classification.DocumentType
	}
	counts := result.IssueCountsBySeverity()
	critical := counts[models.SeverityCritical]
	high := counts[models.SeverityHigh]

	var b strings.Builder
	fmt.Fprintf(&b, "Document classified as %s with %d issues identified. ", docType, len(result.Issues))

	switch {
	case critical > 0:
		fmt.Fprintf(&b, "ATTENTION REQUIRED: %d critical issues found. ", critical)
	case high > 0:
		fmt.Fprintf(&b, "%d high-priority issues require attention. ", high)
	default:
		b.WriteString("No critical issues identified. ")
	}

	if len(result.Remedies) > 0 {
		fmt.Fprintf(&b, "%d remedies suggested to address identified issues.", len(result.Remedies))
	}
	return b.String()
}

func classificationSummary(classification *models.Classification) string {
	if classification == nil {
		return "Document classification unavailable."
	}

	caser := cases.Title(language.English)
	summary := fmt.Sprintf("Document type: %s", caser.String(classification.DocumentType))
	if classification.Confidence > 0 {
		summary += fmt.Sprintf(" (confidence: %.1f%%)", classification.Confidence*100)
	}
	if len(classification.Subcategories) > 0 {
		summary += fmt.Sprintf(". Sub-categories: %s", strings.Join(classification.Subcategories, ", "))
	}
	return summary
}

func issuesSummary(issues []models.LegalIssue) string {
	if len(issues) == 0 {
		return "No legal issues detected."
	}

	counts := make(map[string]int)
	for i := range issues {
		counts[issues[i].Severity]++
	}

	parts := make([]string, 0, 4)
	for _, severity := range []string{models.SeverityCritical, models.SeverityHigh, models.SeverityMedium, models.SeverityLow} {
		if count := counts[severity]; count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, severity))
		}
	}
	return fmt.Sprintf("Issues found: %s priority", strings.Join(parts, ", "))
}

func remediesSummary(remedies []models.Remedy) string {
	if len(remedies) == 0 {
		return "No specific remedies suggested."
	}

	counts := make(map[string]int)
	order := make([]string, 0, len(remedies))
	for i := range remedies {
		category := remedies[i].Category
		if _, seen := counts[category]; !seen {
			order = append(order, category)
		}
		counts[category]++
	}

	parts := make([]string, 0, len(order))
	for _, category := range order {
		parts = append(parts, fmt.Sprintf("%s (%d)", category, counts[category]))
	}
	return fmt.Sprintf("%d remedies suggested across %d categories: %s",
		len(remedies), len(order), strings.Join(parts, ", "))
}

func riskAssessment(issues []models.LegalIssue) string {
	if len(issues) == 0 {
		return "Low risk - no significant issues identified."
	}

	critical := 0
	high := 0
	for i := range issues {
		switch issues[i].Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityHigh:
			high++
		}
	}

	switch {
	case critical > 0:
		return fmt.Sprintf("High risk - %d critical issues require immediate attention.", critical)
	case high > 2:
		return fmt.Sprintf("Medium-high risk - %d high-priority issues should be addressed.", high)
	case high > 0:
		return fmt.Sprintf("Medium risk - %d high-priority issues identified.", high)
	default:
		return "Low-medium risk - minor issues present but manageable."
	}
}

func recommendations(remedies []models.Remedy) []string {
	if len(remedies) == 0 {
		return []string{"Document appears well-structured with no immediate recommendations."}
	}

	sorted := make([]models.Remedy, len(remedies))
	copy(sorted, remedies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return models.SeverityRank(sorted[i].Priority) < models.SeverityRank(sorted[j].Priority)
	})

	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	recs := make([]string, 0, len(sorted))
	for i := range sorted {
		recs = append(recs, fmt.Sprintf("%s: %s", sorted[i].Title, sorted[i].Description))
	}
	return recs
}

func decodePerformance(raw map[string]any) map[string]ComponentPerformance {
	perf := make(map[string]ComponentPerformance, len(raw))
	for name, v := range raw {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		cp := ComponentPerformance{Status: StatusFailed}
		if status, ok := entry["status"].(string); ok {
			cp.Status = status
		}
		if seconds, ok := toFloat(entry["processing_time"]); ok {
			cp.Duration = time.Duration(seconds * float64(time.Second))
		}
		if confidence, ok := toFloat(entry["confidence"]); ok {
			cp.Confidence = &confidence
		}
		perf[name] = cp
	}
	return perf
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
