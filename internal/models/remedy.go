package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Remedy is a suggested corrective action addressing one or more detected
// issues. Category is a free-text label, not an enumeration. Priority uses
// the severity scale.
type Remedy struct {
	Metadata            map[string]any `json:"metadata,omitempty"`
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Description         string         `json:"description"`
	Category            string         `json:"category"`
	Priority            string         `json:"priority"`
	EstimatedImpact     string         `json:"estimated_impact,omitempty"`
	ApplicableIssues    []string       `json:"applicable_issues,omitempty"`
	ImplementationSteps []string       `json:"implementation_steps,omitempty"`
	LegalBasis          []string       `json:"legal_basis,omitempty"`
}

// NewRemedy creates a remedy with a generated ID.
func NewRemedy(title, description, category, priority string) *Remedy {
	return &Remedy{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Metadata:    make(map[string]any),
	}
}

// IsValid checks that a remedy has its required fields.
func (r *Remedy) IsValid() error {
	if r.ID == "" {
		return fmt.Errorf("remedy missing required field: id")
	}
	if r.Title == "" {
		return fmt.Errorf("remedy missing required field: title")
	}
	if !IsValidSeverity(r.Priority) {
		return fmt.Errorf("remedy has invalid priority: %q", r.Priority)
	}
	return nil
}

// Clone returns a deep copy of the remedy.
func (r *Remedy) Clone() *Remedy {
	if r == nil {
		return nil
	}
	clone := *r
	clone.ApplicableIssues = append([]string(nil), r.ApplicableIssues...)
	clone.ImplementationSteps = append([]string(nil), r.ImplementationSteps...)
	clone.LegalBasis = append([]string(nil), r.LegalBasis...)
	clone.Metadata = copyMetadata(r.Metadata)
	return &clone
}
