package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnalysisResult is the integrated output of one analysis invocation. It is
// owned by the orchestrator that created it; the cache stores deep-copied
// snapshots only, so no two callers ever share a mutable result.
type AnalysisResult struct {
	StartedAt       time.Time       `json:"started_at"`
	CompletedAt     time.Time       `json:"completed_at,omitempty"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
	Classification  *Classification `json:"classification,omitempty"`
	ID              string          `json:"id"`
	DocumentID      string          `json:"document_id,omitempty"`
	AnalyzerName    string          `json:"analyzer_name"`
	AnalyzerVersion string          `json:"analyzer_version"`
	Status          string          `json:"status"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	Issues          []LegalIssue    `json:"issues"`
	Remedies        []Remedy        `json:"remedies"`
	ConfidenceScore float64         `json:"confidence_score"`
	ProcessingTime  time.Duration   `json:"processing_time"`
	TokensAnalyzed  int             `json:"tokens_analyzed"`
}

// NewAnalysisResult creates a pending result with a generated ID.
func NewAnalysisResult(documentID, analyzerName, analyzerVersion string) *AnalysisResult {
	return &AnalysisResult{
		ID:              uuid.New().String(),
		DocumentID:      documentID,
		AnalyzerName:    analyzerName,
		AnalyzerVersion: analyzerVersion,
		Status:          StatusPending,
		StartedAt:       time.Now(),
		Issues:          []LegalIssue{},
		Remedies:        []Remedy{},
		Metadata:        make(map[string]any),
	}
}

// MarkRunning transitions the result to running.
func (r *AnalysisResult) MarkRunning() error {
	return r.transition(StatusRunning)
}

// MarkCompleted transitions the result to completed and records timing.
func (r *AnalysisResult) MarkCompleted() error {
	if err := r.transition(StatusCompleted); err != nil {
		return err
	}
	r.finish()
	return nil
}

// MarkFailed transitions the result to failed, preserving whatever partial
// data was produced before the failure.
func (r *AnalysisResult) MarkFailed(message string) error {
	if err := r.transition(StatusFailed); err != nil {
		return err
	}
	r.ErrorMessage = message
	r.finish()
	return nil
}

func (r *AnalysisResult) transition(to string) error {
	if !CanTransition(r.Status, to) {
		return fmt.Errorf("invalid status transition: %s -> %s", r.Status, to)
	}
	r.Status = to
	return nil
}

func (r *AnalysisResult) finish() {
	r.CompletedAt = time.Now()
	r.ProcessingTime = r.CompletedAt.Sub(r.StartedAt)
}

// Clone returns a deep copy of the result. Used when storing to and reading
// from the cache so callers can never mutate a shared snapshot.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Classification = r.Classification.Clone()
	if r.Issues != nil {
		clone.Issues = make([]LegalIssue, len(r.Issues))
		for i := range r.Issues {
			clone.Issues[i] = *r.Issues[i].Clone()
		}
	}
	if r.Remedies != nil {
		clone.Remedies = make([]Remedy, len(r.Remedies))
		for i := range r.Remedies {
			clone.Remedies[i] = *r.Remedies[i].Clone()
		}
	}
	clone.Metadata = copyMetadata(r.Metadata)
	return &clone
}

// IssueCountsBySeverity tallies issues per severity level.
func (r *AnalysisResult) IssueCountsBySeverity() map[string]int {
	counts := make(map[string]int)
	for i := range r.Issues {
		counts[r.Issues[i].Severity]++
	}
	return counts
}

// IssueCountsByType tallies issues per issue type.
func (r *AnalysisResult) IssueCountsByType() map[string]int {
	counts := make(map[string]int)
	for i := range r.Issues {
		counts[r.Issues[i].Type]++
	}
	return counts
}

// HighestSeverity returns the most severe level present among issues, or
// empty string when there are none.
func (r *AnalysisResult) HighestSeverity() string {
	highest := ""
	for i := range r.Issues {
		if highest == "" || SeverityRank(r.Issues[i].Severity) < SeverityRank(highest) {
			highest = r.Issues[i].Severity
		}
	}
	return highest
}
