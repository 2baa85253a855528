package models

import "fmt"

// Classification is the outcome of document-type classification. One
// classification exists per analysis; re-running replaces it outright.
type Classification struct {
	Metadata      map[string]any `json:"metadata,omitempty"`
	DocumentType  string         `json:"document_type"`
	Subcategories []string       `json:"subcategories,omitempty"`
	Confidence    float64        `json:"confidence"`
}

// Clone returns a deep copy of the classification.
func (c *Classification) Clone() *Classification {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Subcategories = append([]string(nil), c.Subcategories...)
	clone.Metadata = copyMetadata(c.Metadata)
	return &clone
}

// IsValid checks the classification's type and confidence range.
func (c *Classification) IsValid() error {
	if !IsValidDocumentType(c.DocumentType) {
		return fmt.Errorf("classification has invalid document type: %q", c.DocumentType)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("classification confidence out of range: %v", c.Confidence)
	}
	return nil
}
