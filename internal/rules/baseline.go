package rules

import (
	"strings"

	"bunasiem/pkg/models"
)

// Event types the baseline rules inspect.
const (
	EventConsoleLogin  = "console-login"
	EventSignIn        = "sign-in"
	EventDataTransfer  = "data-transfer"
	EventNetworkAccess = "network-access"
)

// exfiltrationThreshold is the strict lower bound in bytes for the
// Data Exfiltration rule (a transfer of exactly this size does not fire).
const exfiltrationThreshold = 1_000_000

// BaselineRules returns the built-in detection rules in evaluation order.
// The order is significant: first-match-wins, so a failed console login
// from a suspicious address reports "Multiple Failed Logins".
func BaselineRules() []Rule {
	return []Rule{
		{
			Name:        "Multiple Failed Logins",
			Description: "Failed console login attempts",
			Severity:    models.SeverityHigh,
			Match: func(log *models.LogRecord, _ *Context) (bool, error) {
				return log.EventType == EventConsoleLogin &&
					strings.Contains(log.ErrorMessage, "Failed"), nil
			},
		},
		{
			Name:        "Unusual Hour Access",
			Description: "Sign-in between 22:00 and 05:59 local time",
			Severity:    models.SeverityMedium,
			Match: func(log *models.LogRecord, _ *Context) (bool, error) {
				if log.EventType != EventSignIn {
					return false, nil
				}
				hour := log.EventTime.Hour()
				return hour >= 22 || hour <= 5, nil
			},
		},
		{
			Name:        "Known-Bad-IP Match",
			Description: "Source address is on the suspicious IP list",
			Severity:    models.SeverityHigh,
			Match: func(log *models.LogRecord, ctx *Context) (bool, error) {
				return ctx.IsSuspiciousIP(log.SourceIP), nil
			},
		},
		{
			Name:        "Data Exfiltration",
			Description: "Data transfer larger than 1MB",
			Severity:    models.SeverityCritical,
			Match: func(log *models.LogRecord, _ *Context) (bool, error) {
				return log.EventType == EventDataTransfer &&
					log.BytesTransferred > exfiltrationThreshold, nil
			},
		},
	}
}

// NewBaselineCatalog builds a catalog holding only the baseline rules.
func NewBaselineCatalog() *Catalog {
	return NewCatalog(BaselineRules()...)
}
