package models

import "strings"

// Severity labels, ordered from least to most severe.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// NormalizeSeverity maps a free-form severity label to one of the four
// known levels. Unknown or empty labels fall back to low.
func NormalizeSeverity(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case SeverityCritical:
		return SeverityCritical
	case SeverityHigh:
		return SeverityHigh
	case SeverityMedium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// SeverityWeight returns a numeric weight for ordering severities.
func SeverityWeight(level string) int {
	switch strings.ToLower(level) {
	case SeverityCritical:
		return 7
	case SeverityHigh:
		return 5
	case SeverityMedium:
		return 3
	default:
		return 1
	}
}
