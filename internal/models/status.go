package models

import "strings"

// Analysis status constants. Completed and failed are terminal.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ValidStatuses returns all valid analysis statuses.
func ValidStatuses() []string {
	return []string{StatusPending, StatusRunning, StatusCompleted, StatusFailed}
}

// IsValidStatus checks if an analysis status is valid.
func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminalStatus reports whether a status permits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// CanTransition reports whether the state machine allows moving from one
// status to another: pending -> running -> completed|failed, with a direct
// pending -> failed edge for validation failures.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning || to == StatusFailed
	case StatusRunning:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}

// NormalizeStatus maps external spellings onto the canonical constants.
// "processing" is accepted as a synonym for running.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending":
		return StatusPending
	case "running", "processing", "in_progress":
		return StatusRunning
	case "completed", "complete", "success":
		return StatusCompleted
	case "failed", "failure", "error":
		return StatusFailed
	default:
		return status
	}
}
