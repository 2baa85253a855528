package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harwood/paralegal/internal/models"
)

// SaveResult stores an analysis result with its issues and remedies.
// Saving a result twice replaces the earlier copy.
func (s *Store) SaveResult(ctx context.Context, result *models.AnalysisResult) error {
	var classificationJSON any
	var documentType any
	if result.Classification != nil {
		data, err := json.Marshal(result.Classification)
		if err != nil {
			return fmt.Errorf("marshaling classification: %w", err)
		}
		classificationJSON = string(data)
		documentType = result.Classification.DocumentType
	}

	metadataJSON, err := marshalColumn(result.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	return s.InTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT OR REPLACE INTO analyses
				(id, document_id, analyzer_name, analyzer_version, status, error_message,
				 document_type, classification, confidence_score, tokens_analyzed,
				 processing_time_ms, metadata, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		if _, err := tx.ExecContext(ctx, query,
			result.ID,
			nullString(result.DocumentID),
			result.AnalyzerName,
			result.AnalyzerVersion,
			result.Status,
			nullString(result.ErrorMessage),
			documentType,
			classificationJSON,
			result.ConfidenceScore,
			result.TokensAnalyzed,
			result.ProcessingTime.Milliseconds(),
			metadataJSON,
			result.StartedAt,
			nullTime(result.CompletedAt),
		); err != nil {
			return fmt.Errorf("inserting analysis: %w", err)
		}

		// REPLACE cascades child deletion, but re-saving under the same ID
		// must never leave stale children behind.
		for _, table := range []string{"issues", "remedies"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE analysis_id = ?", result.ID); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}

		if err := insertIssues(ctx, tx, result.ID, result.Issues); err != nil {
			return err
		}
		return insertRemedies(ctx, tx, result.ID, result.Remedies)
	})
}

// insertIssues inserts issue rows through one prepared statement.
func insertIssues(ctx context.Context, tx *sql.Tx, analysisID string, issues []models.LegalIssue) error {
	if len(issues) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO issues
			(id, analysis_id, type, severity, title, description,
			 confidence, suggestions, locations, metadata, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing issue insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i := range issues {
		issue := &issues[i]

		suggestions, err := marshalColumn(issue.Suggestions)
		if err != nil {
			return fmt.Errorf("marshaling issue suggestions: %w", err)
		}
		locations, err := marshalColumn(issue.Locations)
		if err != nil {
			return fmt.Errorf("marshaling issue locations: %w", err)
		}
		metadata, err := marshalColumn(issue.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling issue metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			issue.ID,
			analysisID,
			issue.Type,
			issue.Severity,
			issue.Title,
			nullString(issue.Description),
			issue.Confidence,
			suggestions,
			locations,
			metadata,
			issue.DetectedAt,
		); err != nil {
			return fmt.Errorf("inserting issue: %w", err)
		}
	}

	return nil
}

// insertRemedies inserts remedy rows through one prepared statement.
func insertRemedies(ctx context.Context, tx *sql.Tx, analysisID string, remedies []models.Remedy) error {
	if len(remedies) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO remedies
			(id, analysis_id, title, description, category, priority,
			 estimated_impact, applicable_issues, implementation_steps, legal_basis, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing remedy insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i := range remedies {
		remedy := &remedies[i]

		applicable, err := marshalColumn(remedy.ApplicableIssues)
		if err != nil {
			return fmt.Errorf("marshaling remedy issues: %w", err)
		}
		steps, err := marshalColumn(remedy.ImplementationSteps)
		if err != nil {
			return fmt.Errorf("marshaling remedy steps: %w", err)
		}
		basis, err := marshalColumn(remedy.LegalBasis)
		if err != nil {
			return fmt.Errorf("marshaling remedy basis: %w", err)
		}
		metadata, err := marshalColumn(remedy.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling remedy metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			remedy.ID,
			analysisID,
			remedy.Title,
			nullString(remedy.Description),
			nullString(remedy.Category),
			remedy.Priority,
			nullString(remedy.EstimatedImpact),
			applicable,
			steps,
			basis,
			metadata,
		); err != nil {
			return fmt.Errorf("inserting remedy: %w", err)
		}
	}

	return nil
}

// GetAnalysis retrieves a stored analysis by ID, including its issues and
// remedies.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*models.AnalysisResult, error) {
	query := `
		SELECT id, document_id, analyzer_name, analyzer_version, status, error_message,
		       classification, confidence_score, tokens_analyzed, processing_time_ms,
		       metadata, started_at, completed_at
		FROM analyses
		WHERE id = ?
	`

	result := &models.AnalysisResult{}
	var documentID, errorMessage, classification, metadata sql.NullString
	var completedAt sql.NullTime
	var processingMs int64

	err := s.QueryRowContext(ctx, query, id).Scan(
		&result.ID,
		&documentID,
		&result.AnalyzerName,
		&result.AnalyzerVersion,
		&result.Status,
		&errorMessage,
		&classification,
		&result.ConfidenceScore,
		&result.TokensAnalyzed,
		&processingMs,
		&metadata,
		&result.StartedAt,
		&completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("analysis %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}

	result.DocumentID = documentID.String
	result.ErrorMessage = errorMessage.String
	result.ProcessingTime = time.Duration(processingMs) * time.Millisecond
	if completedAt.Valid {
		result.CompletedAt = completedAt.Time
	}
	if classification.Valid {
		result.Classification = &models.Classification{}
		if err := json.Unmarshal([]byte(classification.String), result.Classification); err != nil {
			return nil, fmt.Errorf("unmarshaling classification: %w", err)
		}
	}
	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &result.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	if result.Issues, err = s.loadIssues(ctx, id); err != nil {
		return nil, err
	}
	if result.Remedies, err = s.loadRemedies(ctx, id); err != nil {
		return nil, err
	}

	return result, nil
}

// LatestAnalysis returns the most recently started analysis.
func (s *Store) LatestAnalysis(ctx context.Context) (*models.AnalysisResult, error) {
	var id string
	err := s.QueryRowContext(ctx, `SELECT id FROM analyses ORDER BY started_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no analyses stored")
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest analysis: %w", err)
	}
	return s.GetAnalysis(ctx, id)
}

// ListAnalyses retrieves analysis summaries with optional filtering and
// pagination, most recent first.
func (s *Store) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*AnalysisSummary, error) {
	query := `
		SELECT a.id, a.document_id, a.document_type, a.status, a.error_message,
		       a.confidence_score, a.started_at, a.completed_at,
		       (SELECT COUNT(*) FROM issues i WHERE i.analysis_id = a.id),
		       (SELECT COUNT(*) FROM remedies r WHERE r.analysis_id = a.id)
		FROM analyses a
		WHERE 1=1
	`

	var args []any

	if filter.Status != nil {
		query += " AND a.status = ?"
		args = append(args, *filter.Status)
	}
	if filter.DocumentType != nil {
		query += " AND a.document_type = ?"
		args = append(args, *filter.DocumentType)
	}
	if filter.DocumentID != nil {
		query += " AND a.document_id = ?"
		args = append(args, *filter.DocumentID)
	}
	if !filter.Since.IsZero() {
		query += " AND a.started_at >= ?"
		args = append(args, filter.Since)
	}

	query += " ORDER BY a.started_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)

		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying analyses: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var summaries []*AnalysisSummary
	for rows.Next() {
		summary := &AnalysisSummary{}
		if err := rows.Scan(
			&summary.ID,
			&summary.DocumentID,
			&summary.DocumentType,
			&summary.Status,
			&summary.ErrorMessage,
			&summary.ConfidenceScore,
			&summary.StartedAt,
			&summary.CompletedAt,
			&summary.IssueCount,
			&summary.RemedyCount,
		); err != nil {
			return nil, fmt.Errorf("scanning analysis summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating analyses: %w", err)
	}

	return summaries, nil
}

// DeleteAnalysis removes a stored analysis. Issue and remedy rows cascade.
func (s *Store) DeleteAnalysis(ctx context.Context, id string) error {
	result, err := s.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting analysis: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("analysis %s not found", id)
	}

	return nil
}

// IssueCountsBySeverity tallies the stored issues of one analysis.
func (s *Store) IssueCountsBySeverity(ctx context.Context, analysisID string) (*IssueCounts, error) {
	query := `SELECT severity, COUNT(*) FROM issues WHERE analysis_id = ? GROUP BY severity`

	rows, err := s.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying issue counts: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := &IssueCounts{}
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("scanning issue count: %w", err)
		}

		switch severity {
		case models.SeverityCritical:
			counts.Critical = count
		case models.SeverityHigh:
			counts.High = count
		case models.SeverityMedium:
			counts.Medium = count
		case models.SeverityLow:
			counts.Low = count
		case models.SeverityInfo:
			counts.Info = count
		}
		counts.Total += count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issue counts: %w", err)
	}

	return counts, nil
}

// loadIssues retrieves the issues of an analysis in insertion order.
func (s *Store) loadIssues(ctx context.Context, analysisID string) ([]models.LegalIssue, error) {
	query := `
		SELECT id, type, severity, title, description, confidence,
		       suggestions, locations, metadata, detected_at
		FROM issues
		WHERE analysis_id = ?
		ORDER BY rowid
	`

	rows, err := s.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying issues: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	issues := []models.LegalIssue{}
	for rows.Next() {
		var issue models.LegalIssue
		var description, suggestions, locations, metadata sql.NullString

		if err := rows.Scan(
			&issue.ID,
			&issue.Type,
			&issue.Severity,
			&issue.Title,
			&description,
			&issue.Confidence,
			&suggestions,
			&locations,
			&metadata,
			&issue.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning issue: %w", err)
		}

		issue.Description = description.String
		if err := unmarshalColumn(suggestions, &issue.Suggestions); err != nil {
			return nil, fmt.Errorf("unmarshaling issue suggestions: %w", err)
		}
		if err := unmarshalColumn(locations, &issue.Locations); err != nil {
			return nil, fmt.Errorf("unmarshaling issue locations: %w", err)
		}
		if err := unmarshalColumn(metadata, &issue.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling issue metadata: %w", err)
		}

		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating issues: %w", err)
	}

	return issues, nil
}

// loadRemedies retrieves the remedies of an analysis in insertion order.
func (s *Store) loadRemedies(ctx context.Context, analysisID string) ([]models.Remedy, error) {
	query := `
		SELECT id, title, description, category, priority,
		       estimated_impact, applicable_issues, implementation_steps, legal_basis, metadata
		FROM remedies
		WHERE analysis_id = ?
		ORDER BY rowid
	`

	rows, err := s.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying remedies: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	remedies := []models.Remedy{}
	for rows.Next() {
		var remedy models.Remedy
		var description, category, impact, applicable, steps, basis, metadata sql.NullString

		if err := rows.Scan(
			&remedy.ID,
			&remedy.Title,
			&description,
			&category,
			&remedy.Priority,
			&impact,
			&applicable,
			&steps,
			&basis,
			&metadata,
		); err != nil {
			return nil, fmt.Errorf("scanning remedy: %w", err)
		}

		remedy.Description = description.String
		remedy.Category = category.String
		remedy.EstimatedImpact = impact.String
		if err := unmarshalColumn(applicable, &remedy.ApplicableIssues); err != nil {
			return nil, fmt.Errorf("unmarshaling remedy issues: %w", err)
		}
		if err := unmarshalColumn(steps, &remedy.ImplementationSteps); err != nil {
			return nil, fmt.Errorf("unmarshaling remedy steps: %w", err)
		}
		if err := unmarshalColumn(basis, &remedy.LegalBasis); err != nil {
			return nil, fmt.Errorf("unmarshaling remedy basis: %w", err)
		}
		if err := unmarshalColumn(metadata, &remedy.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling remedy metadata: %w", err)
		}

		remedies = append(remedies, remedy)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating remedies: %w", err)
	}

	return remedies, nil
}

// marshalColumn encodes a value as JSON for a nullable text column. Nil
// and empty collections store as NULL.
func marshalColumn(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			return nil, nil
		}
	case []string:
		if len(val) == 0 {
			return nil, nil
		}
	case []models.Location:
		if len(val) == 0 {
			return nil, nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// unmarshalColumn decodes a nullable JSON text column into dst, leaving
// dst untouched for NULL.
func unmarshalColumn(col sql.NullString, dst any) error {
	if !col.Valid {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
