package rules

import (
	"testing"
	"time"

	"bunasiem/pkg/models"
)

func evalContext(now time.Time, ips ...string) *Context {
	return DeriveContext(now, BuildIPSet(ips))
}

func TestFailedConsoleLoginFiresHighSeverityAlert(t *testing.T) {
	catalog := NewBaselineCatalog()
	log := &models.LogRecord{
		ID:           7,
		EventType:    EventConsoleLogin,
		ErrorMessage: "Failed password for admin",
	}

	alert, err := catalog.Evaluate(log, evalContext(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatalf("expected an alert")
	}
	if alert.RuleName != "Multiple Failed Logins" {
		t.Fatalf("unexpected rule: %s", alert.RuleName)
	}
	if alert.Severity != models.SeverityHigh {
		t.Fatalf("expected high severity, got %s", alert.Severity)
	}
	if alert.LogID != 7 {
		t.Fatalf("expected log id 7, got %d", alert.LogID)
	}
	if alert.Message != "Rule triggered: Multiple Failed Logins" {
		t.Fatalf("unexpected message: %s", alert.Message)
	}
}

func TestSuccessfulConsoleLoginDoesNotFire(t *testing.T) {
	catalog := NewBaselineCatalog()
	log := &models.LogRecord{EventType: EventConsoleLogin}

	alert, err := catalog.Evaluate(log, evalContext(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Fatalf("expected no alert, got %s", alert.RuleName)
	}
}

func TestUnusualHourAccessWindowBoundaries(t *testing.T) {
	catalog := NewBaselineCatalog()

	for hour := 0; hour < 24; hour++ {
		log := &models.LogRecord{
			EventType: EventSignIn,
			EventTime: time.Date(2026, 3, 10, hour, 30, 0, 0, time.UTC),
		}
		alert, err := catalog.Evaluate(log, evalContext(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)))
		if err != nil {
			t.Fatalf("hour %d: unexpected error: %v", hour, err)
		}

		unusual := hour >= 22 || hour <= 5
		if unusual {
			if alert == nil {
				t.Fatalf("hour %d: expected an alert", hour)
			}
			if alert.RuleName != "Unusual Hour Access" {
				t.Fatalf("hour %d: unexpected rule %s", hour, alert.RuleName)
			}
			if alert.Severity != models.SeverityMedium {
				t.Fatalf("hour %d: expected medium severity, got %s", hour, alert.Severity)
			}
		} else if alert != nil {
			t.Fatalf("hour %d: expected no alert, got %s", hour, alert.RuleName)
		}
	}
}

func TestUnusualHourAccessIgnoresOtherEventTypes(t *testing.T) {
	catalog := NewBaselineCatalog()
	log := &models.LogRecord{
		EventType: EventNetworkAccess,
		EventTime: time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC),
	}

	alert, err := catalog.Evaluate(log, evalContext(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Fatalf("expected no alert, got %s", alert.RuleName)
	}
}

func TestKnownBadIPFiresRegardlessOfOtherFields(t *testing.T) {
	catalog := NewBaselineCatalog()
	log := &models.LogRecord{
		EventType: EventNetworkAccess,
		SourceIP:  "196.188.34.100",
	}

	alert, err := catalog.Evaluate(log, evalContext(time.Now(), "196.188.34.100", "196.188.56.200"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatalf("expected an alert")
	}
	if alert.RuleName != "Known-Bad-IP Match" {
		t.Fatalf("unexpected rule: %s", alert.RuleName)
	}
	if alert.Severity != models.SeverityHigh {
		t.Fatalf("expected high severity, got %s", alert.Severity)
	}
}

func TestCatalogOrderingFirstMatchWins(t *testing.T) {
	catalog := NewBaselineCatalog()

	// A failed login from a suspicious address must report the earlier
	// rule, not the IP rule.
	log := &models.LogRecord{
		EventType:    EventConsoleLogin,
		ErrorMessage: "Failed password",
		SourceIP:     "196.188.34.100",
	}

	alert, err := catalog.Evaluate(log, evalContext(time.Now(), "196.188.34.100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatalf("expected an alert")
	}
	if alert.RuleName != "Multiple Failed Logins" {
		t.Fatalf("expected Multiple Failed Logins to win, got %s", alert.RuleName)
	}
}

func TestDataExfiltrationThresholdIsStrict(t *testing.T) {
	catalog := NewBaselineCatalog()

	atThreshold := &models.LogRecord{
		EventType:        EventDataTransfer,
		BytesTransferred: 1_000_000,
	}
	alert, err := catalog.Evaluate(atThreshold, evalContext(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Fatalf("transfer of exactly 1MB must not fire, got %s", alert.RuleName)
	}

	overThreshold := &models.LogRecord{
		EventType:        EventDataTransfer,
		BytesTransferred: 1_000_001,
	}
	alert, err = catalog.Evaluate(overThreshold, evalContext(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil {
		t.Fatalf("expected an alert")
	}
	if alert.RuleName != "Data Exfiltration" {
		t.Fatalf("unexpected rule: %s", alert.RuleName)
	}
	if alert.Severity != models.SeverityCritical {
		t.Fatalf("expected critical severity, got %s", alert.Severity)
	}
}

func TestBaselineRulesTolerateAbsentFields(t *testing.T) {
	catalog := NewBaselineCatalog()
	log := &models.LogRecord{Source: models.SourceUnknown}

	alert, err := catalog.Evaluate(log, evalContext(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Fatalf("expected no alert for an empty record, got %s", alert.RuleName)
	}
}

func TestBusinessHoursDerivation(t *testing.T) {
	for hour := 0; hour < 24; hour++ {
		ctx := DeriveContext(time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC), nil)
		want := hour >= 8 && hour <= 17
		if ctx.BusinessHours != want {
			t.Fatalf("hour %d: business hours = %v, want %v", hour, ctx.BusinessHours, want)
		}
	}
}
