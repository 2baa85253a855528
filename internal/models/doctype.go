package models

import "strings"

// Document types recognized by the classifier. DocumentTypeUnknown is the
// fallback when no rule set clears its confidence threshold.
const (
	DocumentTypeContract   = "contract"
	DocumentTypeAgreement  = "agreement"
	DocumentTypeAffidavit  = "affidavit"
	DocumentTypeLetter     = "letter"
	DocumentTypeMotion     = "motion"
	DocumentTypeBrief      = "brief"
	DocumentTypeComplaint  = "complaint"
	DocumentTypeAnswer     = "answer"
	DocumentTypeDiscovery  = "discovery"
	DocumentTypeSettlement = "settlement"
	DocumentTypeMemorandum = "memorandum"
	DocumentTypeOpinion    = "opinion"
	DocumentTypeOrder      = "order"
	DocumentTypeJudgment   = "judgment"
	DocumentTypeUnknown    = "unknown"
)

var validDocumentTypes = map[string]bool{
	DocumentTypeContract:   true,
	DocumentTypeAgreement:  true,
	DocumentTypeAffidavit:  true,
	DocumentTypeLetter:     true,
	DocumentTypeMotion:     true,
	DocumentTypeBrief:      true,
	DocumentTypeComplaint:  true,
	DocumentTypeAnswer:     true,
	DocumentTypeDiscovery:  true,
	DocumentTypeSettlement: true,
	DocumentTypeMemorandum: true,
	DocumentTypeOpinion:    true,
	DocumentTypeOrder:      true,
	DocumentTypeJudgment:   true,
	DocumentTypeUnknown:    true,
}

// ValidDocumentTypes returns all valid document types for validation.
func ValidDocumentTypes() []string {
	return []string{
		DocumentTypeContract,
		DocumentTypeAgreement,
		DocumentTypeAffidavit,
		DocumentTypeLetter,
		DocumentTypeMotion,
		DocumentTypeBrief,
		DocumentTypeComplaint,
		DocumentTypeAnswer,
		DocumentTypeDiscovery,
		DocumentTypeSettlement,
		DocumentTypeMemorandum,
		DocumentTypeOpinion,
		DocumentTypeOrder,
		DocumentTypeJudgment,
		DocumentTypeUnknown,
	}
}

// IsValidDocumentType checks if a document type is valid.
func IsValidDocumentType(documentType string) bool {
	return validDocumentTypes[documentType]
}

// NormalizeDocumentType lowercases and trims a document type, returning
// DocumentTypeUnknown for anything outside the enumeration.
func NormalizeDocumentType(documentType string) string {
	dt := strings.ToLower(strings.TrimSpace(documentType))
	if validDocumentTypes[dt] {
		return dt
	}
	return DocumentTypeUnknown
}
