package report

import (
	"embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/harwood/paralegal/internal/models"
	"github.com/harwood/paralegal/pkg/logger"
)

//go:embed templates/*
var templateFS embed.FS

// MarkdownRenderer renders an analysis report as a markdown document.
type MarkdownRenderer struct {
	logger logger.Logger
	tmpl   *template.Template
}

// NewMarkdownRenderer creates a markdown renderer with its templates parsed.
func NewMarkdownRenderer(log logger.Logger) (*MarkdownRenderer, error) {
	tmpl, err := template.New("report").Funcs(markdownFuncs()).ParseFS(templateFS, "templates/*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing report templates: %w", err)
	}
	return &MarkdownRenderer{logger: log, tmpl: tmpl}, nil
}

// Name returns the renderer identifier.
func (r *MarkdownRenderer) Name() string { return "markdown" }

// Description returns a human-readable description of the renderer.
func (r *MarkdownRenderer) Description() string {
	return "Markdown report suitable for sharing and version control"
}

// markdownData is the template context for the markdown report.
type markdownData struct {
	Result     *models.AnalysisResult
	Report     *Report
	Components []componentRow
}

type componentRow struct {
	Name       string
	Status     string
	Duration   string
	Confidence string
}

// Render writes the markdown report to w.
func (r *MarkdownRenderer) Render(w io.Writer, result *models.AnalysisResult) error {
	rpt := FromResult(result)

	names := make([]string, 0, len(rpt.ComponentPerformance))
	for name := range rpt.ComponentPerformance {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]componentRow, 0, len(names))
	for _, name := range names {
		cp := rpt.ComponentPerformance[name]
		confidence := "n/a"
		if cp.Confidence != nil {
			confidence = fmt.Sprintf("%.2f", *cp.Confidence)
		}
		rows = append(rows, componentRow{
			Name:       name,
			Status:     cp.Status,
			Duration:   cp.Duration.String(),
			Confidence: confidence,
		})
	}

	data := markdownData{Result: result, Report: rpt, Components: rows}
	if err := r.tmpl.ExecuteTemplate(w, "analysis.md.tmpl", data); err != nil {
		return fmt.Errorf("rendering markdown report: %w", err)
	}
	return nil
}

// markdownFuncs returns custom template functions.
func markdownFuncs() template.FuncMap {
	return template.FuncMap{
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"upper": strings.ToUpper,
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "n/a"
			}
			return t.Format(time.RFC3339)
		},
		"percent": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v*100)
		},
		"add": func(a, b int) int { return a + b },
	}
}
