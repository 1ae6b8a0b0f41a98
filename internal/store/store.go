package store

import "bunasiem/pkg/models"

// DefaultQueryLimit caps query results when the caller gives no limit.
const DefaultQueryLimit = 100

// Filter selects log records from the retention buffer.
type Filter struct {
	Source   string
	Severity string
	HasAlert *bool
	Limit    int
}

// Store is the canonical backing-store contract for the retention buffer.
// Implementations own the capacity/truncation policy; the detection
// engine never branches on which implementation is behind it.
type Store interface {
	// Append adds one record, applying the truncation policy first when
	// the append would exceed capacity.
	Append(rec *models.LogRecord) error

	// Query returns matching records sorted newest-ingested-first,
	// capped at the filter limit, plus the total matched count.
	Query(f Filter) ([]*models.LogRecord, int, error)

	// Stats summarizes the buffer in a single pass.
	Stats() (*models.LogStats, error)

	// Count returns the number of retained records.
	Count() (int, error)

	// Reset clears the buffer. Test hook only.
	Reset() error

	Close() error
}

// matches applies the filter fields to one record.
func matches(f Filter, rec *models.LogRecord) bool {
	if f.Source != "" && rec.Source != f.Source {
		return false
	}
	if f.Severity != "" && rec.Severity != f.Severity {
		return false
	}
	if f.HasAlert != nil && rec.HasAlert != *f.HasAlert {
		return false
	}
	return true
}
