package report

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/pkg/logger"
)

// YAMLRenderer exports an analysis result and its report as YAML.
type YAMLRenderer struct {
	logger logger.Logger
}

// NewYAMLRenderer creates a YAML export renderer.
func NewYAMLRenderer(log logger.Logger) *YAMLRenderer {
	return &YAMLRenderer{logger: log}
}

// Name returns the renderer identifier.
func (r *YAMLRenderer) Name() string { return "yaml" }

// Description returns a human-readable description of the renderer.
func (r *YAMLRenderer) Description() string {
	return "Machine-readable YAML export of the full analysis"
}

// Export types give the YAML document stable key names independent of the
// model structs.
type yamlExport struct {
	Analysis       yamlAnalysis        `yaml:"analysis"`
	Classification *yamlClassification `yaml:"classification,omitempty"`
	Issues         []yamlIssue         `yaml:"issues"`
	Remedies       []yamlRemedy        `yaml:"remedies"`
	Report         map[string]any      `yaml:"report"`
}

type yamlAnalysis struct {
	ID              string  `yaml:"id"`
	DocumentID      string  `yaml:"document_id,omitempty"`
	Analyzer        string  `yaml:"analyzer"`
	Version         string  `yaml:"version"`
	Status          string  `yaml:"status"`
	ErrorMessage    string  `yaml:"error_message,omitempty"`
	StartedAt       string  `yaml:"started_at"`
	CompletedAt     string  `yaml:"completed_at,omitempty"`
	ProcessingTime  string  `yaml:"processing_time"`
	ConfidenceScore float64 `yaml:"confidence_score"`
	TokensAnalyzed  int     `yaml:"tokens_analyzed"`
}

type yamlClassification struct {
	DocumentType  string   `yaml:"document_type"`
	Subcategories []string `yaml:"subcategories,omitempty"`
	Confidence    float64  `yaml:"confidence"`
}

type yamlIssue struct {
	ID          string         `yaml:"id"`
	Type        string         `yaml:"type"`
	Severity    string         `yaml:"severity"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Suggestions []string       `yaml:"suggestions,omitempty"`
	Locations   []yamlLocation `yaml:"locations,omitempty"`
	Confidence  float64        `yaml:"confidence"`
}

type yamlLocation struct {
	Excerpt string `yaml:"excerpt,omitempty"`
	Offset  int    `yaml:"offset"`
	End     int    `yaml:"end,omitempty"`
	Line    int    `yaml:"line,omitempty"`
}

type yamlRemedy struct {
	ID                  string   `yaml:"id"`
	Title               string   `yaml:"title"`
	Description         string   `yaml:"description"`
	Category            string   `yaml:"category"`
	Priority            string   `yaml:"priority"`
	EstimatedImpact     string   `yaml:"estimated_impact,omitempty"`
	ApplicableIssues    []string `yaml:"applicable_issues,omitempty"`
	ImplementationSteps []string `yaml:"implementation_steps,omitempty"`
	LegalBasis          []string `yaml:"legal_basis,omitempty"`
}

// Render writes the YAML export to w.
func (r *YAMLRenderer) Render(w io.Writer, result *models.AnalysisResult) error {
	rpt := FromResult(result)

	export := yamlExport{
		Analysis: yamlAnalysis{
			ID:              result.ID,
			DocumentID:      result.DocumentID,
			Analyzer:        result.AnalyzerName,
			Version:         result.AnalyzerVersion,
			Status:          result.Status,
			ErrorMessage:    result.ErrorMessage,
			StartedAt:       formatTimestamp(result.StartedAt),
			CompletedAt:     formatTimestamp(result.CompletedAt),
			ProcessingTime:  result.ProcessingTime.String(),
			ConfidenceScore: result.ConfidenceScore,
			TokensAnalyzed:  result.TokensAnalyzed,
		},
		Issues:   make([]yamlIssue, 0, len(result.Issues)),
		Remedies: make([]yamlRemedy, 0, len(result.Remedies)),
		Report:   rpt.Map(),
	}

	if result.Classification != nil {
		export.Classification = &yamlClassification{
			DocumentType:  result.Classification.DocumentType,
			Confidence:    result.Classification.Confidence,
			Subcategories: result.Classification.Subcategories,
		}
	}

	for i := range result.Issues {
		issue := &result.Issues[i]
		locations := make([]yamlLocation, 0, len(issue.Locations))
		for _, loc := range issue.Locations {
			locations = append(locations, yamlLocation{
				Excerpt: loc.Excerpt,
				Offset:  loc.Offset,
				End:     loc.End,
				Line:    loc.Line,
			})
		}
		export.Issues = append(export.Issues, yamlIssue{
			ID:          issue.ID,
			Type:        issue.Type,
			Severity:    issue.Severity,
			Title:       issue.Title,
			Description: issue.Description,
			Confidence:  issue.Confidence,
			Suggestions: issue.Suggestions,
			Locations:   locations,
		})
	}

	for i := range result.Remedies {
		remedy := &result.Remedies[i]
		export.Remedies = append(export.Remedies, yamlRemedy{
			ID:                  remedy.ID,
			Title:               remedy.Title,
			Description:         remedy.Description,
			Category:            remedy.Category,
			Priority:            remedy.Priority,
			EstimatedImpact:     remedy.EstimatedImpact,
			ApplicableIssues:    remedy.ApplicableIssues,
			ImplementationSteps: remedy.ImplementationSteps,
			LegalBasis:          remedy.LegalBasis,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("encoding yaml report: %w", err)
	}
	return enc.Close()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
