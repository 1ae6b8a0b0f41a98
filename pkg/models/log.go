package models

import "time"

// Known log sources. Payloads may carry other tags; normalization keeps
// them as-is and falls back to SourceUnknown only when the field is absent.
const (
	SourceCloudAuditTrail  = "cloud-audit-trail"
	SourceIdentityProvider = "identity-provider"
	SourceTelecomNAS       = "telecom-nas"
	SourceFirewall         = "firewall"
	SourceIDS              = "ids"
	SourceUnknown          = "unknown"
)

// LogRecord is a normalized security event.
type LogRecord struct {
	ID               int64     `json:"id"`
	Source           string    `json:"source"`
	EventType        string    `json:"event_type"`
	EventTime        time.Time `json:"event_time"`
	SourceIP         string    `json:"source_ip,omitempty"`
	User             string    `json:"user,omitempty"`
	BytesTransferred int64     `json:"bytes_transferred,omitempty"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	Location         string    `json:"location,omitempty"`
	Severity         string    `json:"severity"`
	IngestedAt       time.Time `json:"ingested_at"`
	HasAlert         bool      `json:"has_alert"`
	Alert            *Alert    `json:"alert,omitempty"`
}

// AttachAlert marks the record as alerted. The attachment happens at most
// once, before the record is appended to the retention buffer.
func (r *LogRecord) AttachAlert(alert *Alert) {
	if r.HasAlert {
		return
	}
	r.HasAlert = true
	r.Alert = alert
}
