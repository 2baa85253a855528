// Package models contains the data structures shared across the analysis
// pipeline: issues, classifications, remedies, and analysis results.
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Legal issue types emitted by detectors.
const (
	IssueTypeContradiction   = "contradiction"
	IssueTypeAmbiguity       = "ambiguity"
	IssueTypeMissingClause   = "missing_clause"
	IssueTypeComplianceIssue = "compliance_issue"
	IssueTypeRiskFactor      = "risk_factor"
	IssueTypeInconsistency   = "inconsistency"
	IssueTypeFormattingError = "formatting_error"
	IssueTypeReferenceError  = "reference_error"
)

var validIssueTypes = map[string]bool{
	IssueTypeContradiction:   true,
	IssueTypeAmbiguity:       true,
	IssueTypeMissingClause:   true,
	IssueTypeComplianceIssue: true,
	IssueTypeRiskFactor:      true,
	IssueTypeInconsistency:   true,
	IssueTypeFormattingError: true,
	IssueTypeReferenceError:  true,
}

// ValidIssueTypes returns all valid legal issue types for validation.
func ValidIssueTypes() []string {
	return []string{
		IssueTypeContradiction,
		IssueTypeAmbiguity,
		IssueTypeMissingClause,
		IssueTypeComplianceIssue,
		IssueTypeRiskFactor,
		IssueTypeInconsistency,
		IssueTypeFormattingError,
		IssueTypeReferenceError,
	}
}

// IsValidIssueType checks if a legal issue type is valid.
func IsValidIssueType(issueType string) bool {
	return validIssueTypes[issueType]
}

// Location pinpoints where in the document an issue was detected. Offsets
// are byte offsets into the analyzed text. Pairwise conflicts carry one
// Location per conflicting statement.
type Location struct {
	Excerpt string `json:"excerpt,omitempty"`
	Offset  int    `json:"offset"`
	End     int    `json:"end,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// LegalIssue represents a single problem detected in a document. Issues are
// created by detectors and are immutable once emitted; consumers that need
// to modify one work on a Clone.
type LegalIssue struct {
	DetectedAt  time.Time      `json:"detected_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Severity    string         `json:"severity"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Locations   []Location     `json:"locations,omitempty"`
	Confidence  float64        `json:"confidence"`
}

// NewLegalIssue creates an issue with a generated ID and detection time.
func NewLegalIssue(issueType, severity, title, description string) *LegalIssue {
	return &LegalIssue{
		ID:          uuid.New().String(),
		Type:        issueType,
		Severity:    severity,
		Title:       title,
		Description: description,
		Metadata:    make(map[string]any),
		DetectedAt:  time.Now(),
	}
}

// IsValid checks that an issue has all required fields and a confidence in
// range.
func (i *LegalIssue) IsValid() error {
	if i.ID == "" {
		return fmt.Errorf("issue missing required field: id")
	}
	if !IsValidIssueType(i.Type) {
		return fmt.Errorf("issue has invalid type: %q", i.Type)
	}
	if !IsValidSeverity(i.Severity) {
		return fmt.Errorf("issue has invalid severity: %q", i.Severity)
	}
	if i.Title == "" {
		return fmt.Errorf("issue missing required field: title")
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		return fmt.Errorf("issue confidence out of range: %v", i.Confidence)
	}
	return nil
}

// Clone returns a deep copy of the issue.
func (i *LegalIssue) Clone() *LegalIssue {
	if i == nil {
		return nil
	}
	clone := *i
	clone.Suggestions = append([]string(nil), i.Suggestions...)
	clone.Locations = append([]Location(nil), i.Locations...)
	clone.Metadata = copyMetadata(i.Metadata)
	return &clone
}
