package rules

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"bunasiem/pkg/models"
)

func TestEvaluateReturnsNilWhenNoRuleMatches(t *testing.T) {
	catalog := NewCatalog(Rule{
		Name:     "never",
		Severity: models.SeverityLow,
		Match: func(*models.LogRecord, *Context) (bool, error) {
			return false, nil
		},
	})

	alert, err := catalog.Evaluate(&models.LogRecord{}, evalContext(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert != nil {
		t.Fatalf("expected nil alert")
	}
}

func TestEvaluateStopsAtFirstMatch(t *testing.T) {
	secondCalled := false
	catalog := NewCatalog(
		Rule{
			Name:     "first",
			Severity: models.SeverityLow,
			Match: func(*models.LogRecord, *Context) (bool, error) {
				return true, nil
			},
		},
		Rule{
			Name:     "second",
			Severity: models.SeverityCritical,
			Match: func(*models.LogRecord, *Context) (bool, error) {
				secondCalled = true
				return true, nil
			},
		},
	)

	alert, err := catalog.Evaluate(&models.LogRecord{ID: 1}, evalContext(time.Now()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert == nil || alert.RuleName != "first" {
		t.Fatalf("expected the first rule to win, got %+v", alert)
	}
	if secondCalled {
		t.Fatalf("second predicate must not run after the first match")
	}
	if alert.Severity != models.SeverityLow {
		t.Fatalf("first-match-wins, not highest-severity-wins: got %s", alert.Severity)
	}
}

func TestPredicateErrorBecomesEvaluationError(t *testing.T) {
	catalog := NewCatalog(
		Rule{
			Name:     "broken",
			Severity: models.SeverityHigh,
			Match: func(*models.LogRecord, *Context) (bool, error) {
				return false, fmt.Errorf("bad lookup")
			},
		},
		Rule{
			Name:     "after",
			Severity: models.SeverityLow,
			Match: func(*models.LogRecord, *Context) (bool, error) {
				return true, nil
			},
		},
	)

	alert, err := catalog.Evaluate(&models.LogRecord{}, evalContext(time.Now()))
	if alert != nil {
		t.Fatalf("expected no alert on evaluation failure")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvaluationError, got %v", err)
	}
	if evalErr.Rule != "broken" {
		t.Fatalf("expected offending rule name, got %q", evalErr.Rule)
	}
}

func TestPredicatePanicIsRecoveredAsEvaluationError(t *testing.T) {
	catalog := NewCatalog(Rule{
		Name:     "panicky",
		Severity: models.SeverityHigh,
		Match: func(log *models.LogRecord, _ *Context) (bool, error) {
			var missing map[string]string
			missing["key"] = "boom" // nil map write
			return true, nil
		},
	})

	alert, err := catalog.Evaluate(&models.LogRecord{}, evalContext(time.Now()))
	if alert != nil {
		t.Fatalf("expected no alert after a predicate panic")
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvaluationError, got %v", err)
	}
	if evalErr.Rule != "panicky" {
		t.Fatalf("expected offending rule name, got %q", evalErr.Rule)
	}
}

func TestEvaluateRejectsRuleWithoutPredicate(t *testing.T) {
	catalog := NewCatalog(Rule{Name: "empty", Severity: models.SeverityLow})

	_, err := catalog.Evaluate(&models.LogRecord{}, evalContext(time.Now()))
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *EvaluationError, got %v", err)
	}
}

func TestAlertCarriesContextTimestampAndUniqueID(t *testing.T) {
	catalog := NewCatalog(Rule{
		Name:     "always",
		Severity: models.SeverityMedium,
		Match: func(*models.LogRecord, *Context) (bool, error) {
			return true, nil
		},
	})
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	first, err := catalog.Evaluate(&models.LogRecord{ID: 1}, evalContext(now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := catalog.Evaluate(&models.LogRecord{ID: 2}, evalContext(now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.Timestamp.Equal(now) {
		t.Fatalf("expected alert timestamp %v, got %v", now, first.Timestamp)
	}
	if first.AlertID == "" || first.AlertID == second.AlertID {
		t.Fatalf("expected distinct non-empty alert ids, got %q and %q", first.AlertID, second.AlertID)
	}
}
