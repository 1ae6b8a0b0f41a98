package rules

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	sigma "github.com/bradleyjkemp/sigma-go"
	sigmaevaluator "github.com/bradleyjkemp/sigma-go/evaluator"

	"bunasiem/pkg/models"
)

// SigmaLoadStats tracks how many Sigma rule files were loaded or skipped.
type SigmaLoadStats struct {
	TotalFiles     int
	Loaded         int
	SkippedComplex int
	SkippedInvalid int
}

// LoadSigmaRules loads Sigma rules from a file or directory and converts
// each into a catalog Rule. Only simple single-event rules are supported;
// aggregations and timeframes are skipped and counted in stats. Loaded
// rules are intended to be appended after the baseline rules so baseline
// first-match ordering is preserved.
func LoadSigmaRules(path string) ([]Rule, SigmaLoadStats, error) {
	var stats SigmaLoadStats

	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, stats, fmt.Errorf("resolve sigma rule path: %w", err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, stats, fmt.Errorf("stat sigma rule path: %w", err)
	}

	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(resolved, func(filePath string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() {
				return nil
			}
			if isYAMLFile(filePath) {
				files = append(files, filePath)
			}
			return nil
		})
		if err != nil {
			return nil, stats, fmt.Errorf("walk sigma rule directory: %w", err)
		}
	} else {
		if !isYAMLFile(resolved) {
			return nil, stats, fmt.Errorf("sigma rule file must end with .yml or .yaml: %s", resolved)
		}
		files = append(files, resolved)
	}

	stats.TotalFiles = len(files)
	out := make([]Rule, 0, len(files))
	for _, ruleFile := range files {
		raw, err := os.ReadFile(ruleFile)
		if err != nil {
			stats.SkippedInvalid++
			continue
		}
		parsed, err := sigma.ParseRule(raw)
		if err != nil {
			stats.SkippedInvalid++
			continue
		}
		if !isSimpleSigmaRule(parsed) {
			stats.SkippedComplex++
			continue
		}
		out = append(out, sigmaRule(parsed))
		stats.Loaded++
	}

	return out, stats, nil
}

// sigmaRule wraps one compiled Sigma rule as a catalog Rule. The
// evaluator runs entirely in memory, so the predicate stays I/O-free.
func sigmaRule(parsed sigma.Rule) Rule {
	eval := sigmaevaluator.ForRule(parsed)
	evalCtx := context.Background()

	name := strings.TrimSpace(parsed.Title)
	if name == "" {
		name = strings.TrimSpace(parsed.ID)
	}

	return Rule{
		Name:        name,
		Description: strings.TrimSpace(parsed.Description),
		Severity:    sigmaSeverity(parsed.Level),
		Match: func(log *models.LogRecord, _ *Context) (bool, error) {
			res, err := eval.Matches(evalCtx, sigmaFields(log))
			if err != nil {
				return false, fmt.Errorf("sigma match: %w", err)
			}
			return res.Match, nil
		},
	}
}

// sigmaFields flattens a log record into the field map Sigma matchers see.
func sigmaFields(log *models.LogRecord) map[string]interface{} {
	fields := map[string]interface{}{
		"Source":    log.Source,
		"EventType": log.EventType,
		"Severity":  log.Severity,
	}
	if log.SourceIP != "" {
		fields["SourceIP"] = log.SourceIP
	}
	if log.User != "" {
		fields["User"] = log.User
	}
	if log.ErrorMessage != "" {
		fields["ErrorMessage"] = log.ErrorMessage
	}
	if log.Location != "" {
		fields["Location"] = log.Location
	}
	if log.BytesTransferred > 0 {
		fields["BytesTransferred"] = log.BytesTransferred
	}
	return fields
}

func sigmaSeverity(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "" {
		return models.SeverityMedium
	}
	return models.NormalizeSeverity(normalized)
}

func isSimpleSigmaRule(rule sigma.Rule) bool {
	if rule.Detection.Timeframe > 0 {
		return false
	}
	for _, cond := range rule.Detection.Conditions {
		if cond.Aggregation != nil {
			return false
		}
	}
	for _, search := range rule.Detection.Searches {
		if len(search.Keywords) > 0 {
			return false
		}
		if len(search.EventMatchers) == 0 {
			return false
		}
	}
	return true
}

func isYAMLFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}
