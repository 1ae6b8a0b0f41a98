package store

import (
	"fmt"
	"sync"

	"bunasiem/pkg/models"
)

// DefaultCapacity is the retention buffer bound when none is configured.
const DefaultCapacity = 10000

// MemoryStore keeps log records in an insertion-ordered, bounded slice.
// When an append would exceed capacity, the buffer is truncated to the
// most recent capacity/2 records in one batch rather than evicting one
// record per insert.
type MemoryStore struct {
	mu       sync.RWMutex
	logs     []*models.LogRecord
	capacity int
}

// NewMemoryStore creates an in-memory store with the given capacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		logs:     make([]*models.LogRecord, 0, capacity/4),
		capacity: capacity,
	}
}

// Capacity returns the configured buffer bound.
func (s *MemoryStore) Capacity() int {
	return s.capacity
}

// Append adds one record, trimming the buffer first if needed.
func (s *MemoryStore) Append(rec *models.LogRecord) error {
	if rec == nil {
		return fmt.Errorf("nil log record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.logs)+1 > s.capacity {
		keep := s.capacity / 2
		trimmed := make([]*models.LogRecord, keep, s.capacity)
		copy(trimmed, s.logs[len(s.logs)-keep:])
		s.logs = trimmed
	}
	s.logs = append(s.logs, rec)
	return nil
}

// Query returns matching records newest-ingested-first plus the total
// matched count. Records are insertion-ordered, so newest-first is a
// reverse walk.
func (s *MemoryStore) Query(f Filter) ([]*models.LogRecord, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	out := make([]*models.LogRecord, 0, limit)
	for i := len(s.logs) - 1; i >= 0; i-- {
		if !matches(f, s.logs[i]) {
			continue
		}
		total++
		if len(out) < limit {
			out = append(out, s.logs[i])
		}
	}
	return out, total, nil
}

// Stats summarizes the buffer in a single pass.
func (s *MemoryStore) Stats() (*models.LogStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.LogStats{
		TotalLogs:   len(s.logs),
		BySource:    make(map[string]int),
		ByEventType: make(map[string]int),
	}
	for _, rec := range s.logs {
		source := rec.Source
		if source == "" {
			source = models.SourceUnknown
		}
		eventType := rec.EventType
		if eventType == "" {
			eventType = models.SourceUnknown
		}
		stats.BySource[source]++
		stats.ByEventType[eventType]++
		if rec.HasAlert {
			stats.AlertCount++
		}
	}
	return stats, nil
}

// Count returns the number of retained records.
func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs), nil
}

// Reset clears the buffer. Test hook only.
func (s *MemoryStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = s.logs[:0]
	return nil
}

// Close releases nothing for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
