package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisResultLifecycle(t *testing.T) {
	result := NewAnalysisResult("doc-1", "document-analyzer", "2.0.0")
	assert.Equal(t, StatusPending, result.Status)
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.StartedAt.IsZero())

	require.NoError(t, result.MarkRunning())
	assert.Equal(t, StatusRunning, result.Status)

	require.NoError(t, result.MarkCompleted())
	assert.Equal(t, StatusCompleted, result.Status)
	assert.False(t, result.CompletedAt.IsZero())
	assert.GreaterOrEqual(t, result.ProcessingTime.Nanoseconds(), int64(0))

	// Terminal states reject further transitions.
	assert.Error(t, result.MarkRunning())
	assert.Error(t, result.MarkFailed("late failure"))
}

func TestAnalysisResultFailurePreservesPartialData(t *testing.T) {
	result := NewAnalysisResult("doc-2", "document-analyzer", "2.0.0")
	require.NoError(t, result.MarkRunning())

	issue := NewLegalIssue(IssueTypeReferenceError, SeverityMedium, "Broken Section Reference: 5", "no header")
	issue.Confidence = 0.95
	result.Issues = append(result.Issues, *issue)

	require.NoError(t, result.MarkFailed("detector timed out"))
	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, "detector timed out", result.ErrorMessage)
	assert.Len(t, result.Issues, 1, "partial issues survive failure")
}

func TestAnalysisResultSkipRunningRejected(t *testing.T) {
	result := NewAnalysisResult("doc-3", "document-analyzer", "2.0.0")
	assert.Error(t, result.MarkCompleted())
	// Validation failures may fail a pending result directly.
	assert.NoError(t, result.MarkFailed("empty document"))
}

func TestAnalysisResultClone(t *testing.T) {
	result := NewAnalysisResult("doc-4", "document-analyzer", "2.0.0")
	require.NoError(t, result.MarkRunning())

	result.Classification = &Classification{
		DocumentType:  DocumentTypeContract,
		Confidence:    0.82,
		Subcategories: []string{"employment"},
		Metadata:      map[string]any{"all_scores": map[string]float64{"contract": 0.82}},
	}
	issue := NewLegalIssue(IssueTypeContradiction, SeverityHigh, "Conflict", "desc")
	issue.Confidence = 0.9
	result.Issues = append(result.Issues, *issue)
	remedy := NewRemedy("Contract Clarification", "resolve it", "Contract Clarification", SeverityHigh)
	remedy.ApplicableIssues = []string{issue.ID}
	result.Remedies = append(result.Remedies, *remedy)
	result.Metadata["analysis_report"] = map[string]any{"executive_summary": "ok"}
	require.NoError(t, result.MarkCompleted())

	clone := result.Clone()
	require.NotSame(t, result, clone)

	clone.Classification.DocumentType = DocumentTypeLetter
	clone.Classification.Subcategories[0] = "demand"
	clone.Issues[0].Severity = SeverityLow
	clone.Remedies[0].ApplicableIssues[0] = "other"
	clone.Metadata["analysis_report"].(map[string]any)["executive_summary"] = "tampered"

	assert.Equal(t, DocumentTypeContract, result.Classification.DocumentType)
	assert.Equal(t, "employment", result.Classification.Subcategories[0])
	assert.Equal(t, SeverityHigh, result.Issues[0].Severity)
	assert.Equal(t, issue.ID, result.Remedies[0].ApplicableIssues[0])
	assert.Equal(t, "ok", result.Metadata["analysis_report"].(map[string]any)["executive_summary"])

	var nilResult *AnalysisResult
	assert.Nil(t, nilResult.Clone())
}

func TestIssueCounts(t *testing.T) {
	result := NewAnalysisResult("doc-5", "document-analyzer", "2.0.0")
	add := func(issueType, severity string) {
		i := NewLegalIssue(issueType, severity, "t", "d")
		i.Confidence = 0.8
		result.Issues = append(result.Issues, *i)
	}
	add(IssueTypeContradiction, SeverityHigh)
	add(IssueTypeContradiction, SeverityHigh)
	add(IssueTypeComplianceIssue, SeverityCritical)
	add(IssueTypeInconsistency, SeverityMedium)

	bySeverity := result.IssueCountsBySeverity()
	assert.Equal(t, 2, bySeverity[SeverityHigh])
	assert.Equal(t, 1, bySeverity[SeverityCritical])
	assert.Equal(t, 1, bySeverity[SeverityMedium])

	byType := result.IssueCountsByType()
	assert.Equal(t, 2, byType[IssueTypeContradiction])
	assert.Equal(t, 1, byType[IssueTypeComplianceIssue])

	assert.Equal(t, SeverityCritical, result.HighestSeverity())

	empty := NewAnalysisResult("doc-6", "document-analyzer", "2.0.0")
	assert.Empty(t, empty.HighestSeverity())
}

func TestNormalizeDocumentType(t *testing.T) {
	assert.Equal(t, DocumentTypeContract, NormalizeDocumentType("Contract"))
	assert.Equal(t, DocumentTypeMotion, NormalizeDocumentType("  motion "))
	assert.Equal(t, DocumentTypeUnknown, NormalizeDocumentType("subpoena"))
	assert.Equal(t, DocumentTypeUnknown, NormalizeDocumentType(""))
}
