package models

import "time"

// Alert is the output of a single matched rule for a single log.
type Alert struct {
	AlertID   string    `json:"alert_id"`
	RuleName  string    `json:"rule_name"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
	LogID     int64     `json:"log_id"`
	Timestamp time.Time `json:"timestamp"`
}

// IngestResult reports the outcome of one ingestion call.
type IngestResult struct {
	Success  bool   `json:"success"`
	LogID    int64  `json:"log_id,omitempty"`
	HasAlert bool   `json:"has_alert"`
	Alert    *Alert `json:"alert,omitempty"`
	Error    string `json:"error,omitempty"`
}

// LogStats summarizes the retention buffer in a single pass.
type LogStats struct {
	TotalLogs   int            `json:"total_logs"`
	BySource    map[string]int `json:"by_source"`
	ByEventType map[string]int `json:"by_event_type"`
	AlertCount  int            `json:"alert_count"`
}
