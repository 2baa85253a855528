package analyzer

import (
	"context"

	"github.com/harwood/paralegal/internal/models"
)

// MockClassifier implements Classifier for testing.
type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, text string) (*models.Classification, error)
	Calls        int
}

// Classify implements Classifier.
func (m *MockClassifier) Classify(ctx context.Context, text string) (*models.Classification, error) {
	m.Calls++
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, text)
	}
	return &models.Classification{DocumentType: models.DocumentTypeUnknown, Confidence: 0.5}, nil
}

// MockDetector implements Detector for testing.
type MockDetector struct {
	DetectFunc func(ctx context.Context, text string) (*DetectionResult, error)
	Calls      int
}

// Detect implements Detector.
func (m *MockDetector) Detect(ctx context.Context, text string) (*DetectionResult, error) {
	m.Calls++
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, text)
	}
	return &DetectionResult{Issues: []models.LegalIssue{}, Confidence: 0.95}, nil
}

// MockCompiler implements Compiler for testing. SeenIssues records the
// issue slice passed to the last Compile call, including whether it was
// nil.
type MockCompiler struct {
	CompileFunc func(ctx context.Context, issues []models.LegalIssue, text string) (*CompilationResult, error)
	SeenIssues  []models.LegalIssue
	SeenNil     bool
	Calls       int
}

// Compile implements Compiler.
func (m *MockCompiler) Compile(ctx context.Context, issues []models.LegalIssue, text string) (*CompilationResult, error) {
	m.Calls++
	m.SeenIssues = issues
	m.SeenNil = issues == nil
	if m.CompileFunc != nil {
		return m.CompileFunc(ctx, issues, text)
	}
	return &CompilationResult{Remedies: []models.Remedy{}, Confidence: 0.5}, nil
}
