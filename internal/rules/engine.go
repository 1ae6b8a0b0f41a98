package rules

import (
	"fmt"

	"github.com/google/uuid"

	"bunasiem/pkg/models"
)

// Predicate decides whether a rule fires for one log under one context.
// Predicates must not mutate their inputs or perform I/O, and must treat
// absent fields as a non-match rather than failing.
type Predicate func(log *models.LogRecord, ctx *Context) (bool, error)

// Rule is a named detection predicate with a fixed severity.
type Rule struct {
	Name        string
	Description string
	Severity    string
	Match       Predicate
}

// EvaluationError reports a predicate failure. It is a catalog
// configuration fault, distinct from a predicate that did not match.
type EvaluationError struct {
	Rule string
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("rule %q evaluation failed: %v", e.Rule, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Catalog holds an ordered, immutable list of detection rules.
// Evaluation order is declaration order and stops at the first match.
type Catalog struct {
	rules []Rule
}

// NewCatalog builds a catalog from rules in the given order.
func NewCatalog(rules ...Rule) *Catalog {
	owned := make([]Rule, len(rules))
	copy(owned, rules)
	return &Catalog{rules: owned}
}

// Len returns the number of registered rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Names returns rule names in evaluation order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Name
	}
	return out
}

// Evaluate runs the catalog against one normalized log. It returns the
// alert for the first matching rule, or nil when no rule matches. A
// predicate error or panic aborts evaluation with an *EvaluationError.
func (c *Catalog) Evaluate(log *models.LogRecord, ctx *Context) (*models.Alert, error) {
	if log == nil {
		return nil, &EvaluationError{Rule: "", Err: fmt.Errorf("nil log record")}
	}
	for _, rule := range c.rules {
		matched, err := c.apply(rule, log, ctx)
		if err != nil {
			return nil, &EvaluationError{Rule: rule.Name, Err: err}
		}
		if matched {
			return &models.Alert{
				AlertID:   uuid.NewString(),
				RuleName:  rule.Name,
				Message:   fmt.Sprintf("Rule triggered: %s", rule.Name),
				Severity:  rule.Severity,
				LogID:     log.ID,
				Timestamp: ctx.Now,
			}, nil
		}
	}
	return nil, nil
}

// apply invokes a single predicate, converting a panic into an error so a
// misconfigured rule surfaces instead of being swallowed as a non-match.
func (c *Catalog) apply(rule Rule, log *models.LogRecord, ctx *Context) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			err = fmt.Errorf("predicate panic: %v", r)
		}
	}()
	if rule.Match == nil {
		return false, fmt.Errorf("rule has no predicate")
	}
	return rule.Match(log, ctx)
}
