package rules

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bunasiem/pkg/models"
)

const simpleSigmaRule = `title: Console Login Burst
id: 9f1b7e1c-0000-4000-8000-000000000001
description: Console login observed
level: high
detection:
  selection:
    EventType: console-login
  condition: selection
`

const timeframeSigmaRule = `title: Too Complex
level: high
detection:
  timeframe: 5m
  selection:
    EventType: console-login
  condition: selection
`

func TestLoadSigmaRulesFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "login.yml"), []byte(simpleSigmaRule), 0644); err != nil {
		t.Fatalf("write rule: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a rule"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	loaded, stats, err := LoadSigmaRules(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalFiles != 1 || stats.Loaded != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(loaded))
	}
	if loaded[0].Name != "Console Login Burst" {
		t.Fatalf("unexpected rule name: %s", loaded[0].Name)
	}
	if loaded[0].Severity != models.SeverityHigh {
		t.Fatalf("unexpected severity: %s", loaded[0].Severity)
	}
}

func TestSigmaRuleMatchesNormalizedLog(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "login.yml"), []byte(simpleSigmaRule), 0644); err != nil {
		t.Fatalf("write rule: %v", err)
	}

	loaded, _, err := LoadSigmaRules(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(loaded))
	}

	ctx := evalContext(time.Now())
	matched, err := loaded[0].Match(&models.LogRecord{EventType: EventConsoleLogin}, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !matched {
		t.Fatalf("expected the sigma rule to match a console login")
	}

	matched, err = loaded[0].Match(&models.LogRecord{EventType: EventDataTransfer}, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matched {
		t.Fatalf("expected no match for a data transfer")
	}
}

func TestLoadSigmaRulesSkipsTimeframeRules(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "complex.yml"), []byte(timeframeSigmaRule), 0644); err != nil {
		t.Fatalf("write rule: %v", err)
	}

	loaded, stats, err := LoadSigmaRules(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected aggregation rule to be skipped")
	}
	if stats.SkippedComplex != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
