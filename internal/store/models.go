package store

import (
	"database/sql"
	"time"
)

// AnalysisFilter provides filtering options for listing analyses. Nil
// pointer fields and the zero Since time mean no constraint.
type AnalysisFilter struct {
	Since        time.Time
	Status       *string
	DocumentType *string
	DocumentID   *string
	Limit        int
	Offset       int
}

// AnalysisSummary is one row of an analysis listing. Issue and remedy
// counts come from the child tables, so listing never decodes result JSON.
type AnalysisSummary struct {
	StartedAt       time.Time
	CompletedAt     sql.NullTime
	DocumentID      sql.NullString
	DocumentType    sql.NullString
	ErrorMessage    sql.NullString
	ID              string
	Status          string
	ConfidenceScore float64
	IssueCount      int
	RemedyCount     int
}

// Duration returns the analysis wall time, or zero when it never finished.
func (s *AnalysisSummary) Duration() time.Duration {
	if !s.CompletedAt.Valid {
		return 0
	}
	return s.CompletedAt.Time.Sub(s.StartedAt)
}

// IssueCounts tallies stored issues by severity.
type IssueCounts struct {
	Critical int
	High     int
	Medium   int
	Low      int
	Info     int
	Total    int
}
