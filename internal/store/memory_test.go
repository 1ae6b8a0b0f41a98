package store

import (
	"testing"
	"time"

	"bunasiem/pkg/models"
)

func record(id int64, source, eventType, severity string, hasAlert bool) *models.LogRecord {
	return &models.LogRecord{
		ID:         id,
		Source:     source,
		EventType:  eventType,
		Severity:   severity,
		HasAlert:   hasAlert,
		IngestedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Second),
	}
}

func TestMemoryStoreTrimsToHalfCapacityOnOverflow(t *testing.T) {
	s := NewMemoryStore(10)

	for i := int64(1); i <= 11; i++ {
		if err := s.Append(record(i, "firewall", "network-access", "low", false)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 6 {
		t.Fatalf("expected 6 records after overflow (capacity/2 + 1), got %d", count)
	}

	logs, total, err := s.Query(Filter{Limit: 100})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 6 {
		t.Fatalf("expected total 6, got %d", total)
	}
	// Retained records are exactly the most recently ingested ones,
	// returned newest first.
	want := []int64{11, 10, 9, 8, 7, 6}
	for i, rec := range logs {
		if rec.ID != want[i] {
			t.Fatalf("position %d: expected id %d, got %d", i, want[i], rec.ID)
		}
	}
}

func TestMemoryStoreQueryFilters(t *testing.T) {
	s := NewMemoryStore(100)
	s.Append(record(1, "firewall", "network-access", "low", false))
	s.Append(record(2, "cloud-audit-trail", "console-login", "high", true))
	s.Append(record(3, "firewall", "data-transfer", "critical", true))

	logs, total, err := s.Query(Filter{Source: "firewall"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 2 || len(logs) != 2 {
		t.Fatalf("expected 2 firewall records, got total=%d len=%d", total, len(logs))
	}

	logs, total, err = s.Query(Filter{Severity: "critical"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 1 || logs[0].ID != 3 {
		t.Fatalf("unexpected severity filter result: total=%d", total)
	}

	hasAlert := true
	logs, total, err = s.Query(Filter{HasAlert: &hasAlert})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 alerted records, got %d", total)
	}
	if logs[0].ID != 3 || logs[1].ID != 2 {
		t.Fatalf("expected newest-first ordering, got %d then %d", logs[0].ID, logs[1].ID)
	}

	noAlert := false
	_, total, err = s.Query(Filter{HasAlert: &noAlert})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 unalerted record, got %d", total)
	}
}

func TestMemoryStoreQueryLimitDefaultsTo100(t *testing.T) {
	s := NewMemoryStore(500)
	for i := int64(1); i <= 150; i++ {
		s.Append(record(i, "ids", "network-access", "low", false))
	}

	logs, total, err := s.Query(Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 150 {
		t.Fatalf("expected total 150, got %d", total)
	}
	if len(logs) != 100 {
		t.Fatalf("expected default limit of 100, got %d", len(logs))
	}
	if logs[0].ID != 150 {
		t.Fatalf("expected newest record first, got id %d", logs[0].ID)
	}
}

func TestMemoryStoreStatsSinglePass(t *testing.T) {
	s := NewMemoryStore(100)
	s.Append(record(1, "firewall", "network-access", "low", false))
	s.Append(record(2, "firewall", "data-transfer", "critical", true))
	s.Append(record(3, "", "", "low", false))

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalLogs != 3 {
		t.Fatalf("expected 3 logs, got %d", stats.TotalLogs)
	}
	if stats.BySource["firewall"] != 2 || stats.BySource["unknown"] != 1 {
		t.Fatalf("unexpected source counts: %+v", stats.BySource)
	}
	if stats.ByEventType["network-access"] != 1 || stats.ByEventType["data-transfer"] != 1 || stats.ByEventType["unknown"] != 1 {
		t.Fatalf("unexpected event type counts: %+v", stats.ByEventType)
	}
	if stats.AlertCount != 1 {
		t.Fatalf("expected 1 alert, got %d", stats.AlertCount)
	}
}

func TestMemoryStoreReset(t *testing.T) {
	s := NewMemoryStore(100)
	s.Append(record(1, "ids", "network-access", "low", false))

	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	count, err := s.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty store after reset, got %d", count)
	}
}
