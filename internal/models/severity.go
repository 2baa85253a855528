package models

import "strings"

// Severity levels as constants for type safety and consistency. The same
// scale is used for issue severity and remedy priority.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// severityRank defines the total order used for sorting. Lower rank sorts
// first, so critical outranks high outranks medium and so on. The order is
// defined here explicitly rather than by declaration position because
// remedies must sort by it.
var severityRank = map[string]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// severityWeight is used when aggregating issue confidences into a
// detector-level confidence score.
var severityWeight = map[string]float64{
	SeverityCritical: 1.0,
	SeverityHigh:     0.8,
	SeverityMedium:   0.6,
	SeverityLow:      0.4,
	SeverityInfo:     0.2,
}

// ValidSeverities returns all valid severity levels for validation.
func ValidSeverities() []string {
	return []string{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
		SeverityInfo,
	}
}

// IsValidSeverity checks if a severity level is valid.
func IsValidSeverity(severity string) bool {
	_, ok := severityRank[severity]
	return ok
}

// SeverityRank returns the sort rank of a severity (critical first).
// Unknown severities rank after info.
func SeverityRank(severity string) int {
	if rank, ok := severityRank[severity]; ok {
		return rank
	}
	return len(severityRank)
}

// SeverityWeight returns the aggregation weight of a severity. Unknown
// severities weigh the same as info.
func SeverityWeight(severity string) float64 {
	if w, ok := severityWeight[severity]; ok {
		return w
	}
	return severityWeight[SeverityInfo]
}

// NormalizeSeverity ensures severity values are consistent.
func NormalizeSeverity(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical", "crit":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium", "moderate", "med":
		return SeverityMedium
	case "low", "minor":
		return SeverityLow
	default:
		return SeverityInfo
	}
}
