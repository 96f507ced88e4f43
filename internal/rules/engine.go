// Package rules implements the deterministic criterion checks: pure
// functions from a ticket to a verdict, with no external calls and no
// failure mode that escapes to the caller.
package rules

import (
	"fmt"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"go.uber.org/zap"
)

// Rule evaluates one criterion against a ticket.
type Rule interface {
	CriterionID() string
	Evaluate(t *models.Ticket) models.Verdict
}

// Engine dispatches criterion ids to their registered rule. A rule panic
// or an unknown id degrades to an errored zero verdict: evaluating one
// ticket never aborts because of a single malformed field.
type Engine struct {
	rules  map[string]Rule
	logger *zap.Logger
}

// NewEngine builds an engine with every built-in rule registered.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		rules:  make(map[string]Rule),
		logger: logger.Named("rules"),
	}
	for _, r := range []Rule{
		&OpenedForRule{},
		&ShortDescriptionRule{},
		&ValidationRule{},
		&CriticalProcessRule{},
		&PasswordHandlingRule{},
	} {
		e.rules[r.CriterionID()] = r
	}
	return e
}

// Evaluate runs the rule registered for criterionID against the ticket.
func (e *Engine) Evaluate(t *models.Ticket, criterionID string) (verdict models.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule panicked",
				zap.String("criterion", criterionID),
				zap.String("ticket", t.Number),
				zap.Any("panic", r))
			verdict = models.ErrorVerdict(criterionID, fmt.Sprintf("rule panic: %v", r))
		}
	}()

	rule, ok := e.rules[criterionID]
	if !ok {
		return models.ErrorVerdict(criterionID, "no rule registered for criterion")
	}
	return rule.Evaluate(t)
}

// Covers reports whether a rule exists for the criterion id.
func (e *Engine) Covers(criterionID string) bool {
	_, ok := e.rules[criterionID]
	return ok
}
