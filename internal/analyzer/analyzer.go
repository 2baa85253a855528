// Package analyzer implements the legal document analysis pipeline:
// document classification, contradiction detection, and remedy generation,
// plus the orchestrator that schedules them and integrates their results.
package analyzer

import (
	"context"

	"github.com/harwood/paralegal/internal/models"
)

// Component names used in result metadata, performance summaries, and
// structured errors.
const (
	ComponentClassification         = "classification"
	ComponentContradictionDetection = "contradiction_detection"
	ComponentRemedyGeneration       = "remedy_generation"
)

// Analyzer identity stamped on every result.
const (
	AnalyzerName    = "document-analyzer"
	AnalyzerVersion = "2.0.0"
)

// Classifier determines the document type of a legal text.
type Classifier interface {
	Classify(ctx context.Context, text string) (*models.Classification, error)
}

// Detector finds legal issues in a text.
type Detector interface {
	Detect(ctx context.Context, text string) (*DetectionResult, error)
}

// DetectionResult carries the outcome of one detection pass.
type DetectionResult struct {
	Issues         []models.LegalIssue
	Confidence     float64
	TokensAnalyzed int
}

// Compiler generates remedies for detected issues. A nil issues slice means
// no detector ran and the compiler self-detects basic issues first; an
// empty non-nil slice means detection ran and found nothing, so only
// general remedies apply.
type Compiler interface {
	Compile(ctx context.Context, issues []models.LegalIssue, text string) (*CompilationResult, error)
}

// CompilationResult carries generated remedies. SelfDetected holds issues
// the compiler found on its own when given nil issues; they are diagnostic
// only and never merged into the analysis result. Metadata describes how
// the remedies were produced and is merged into the result metadata.
type CompilationResult struct {
	Metadata     map[string]any
	Remedies     []models.Remedy
	SelfDetected []models.LegalIssue
	Confidence   float64
}
