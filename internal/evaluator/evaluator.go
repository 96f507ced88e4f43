// Package evaluator runs the full pipeline for a single ticket: the
// deterministic rules, the narrative gateway, aggregation, and the
// coaching summary.
package evaluator

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
	"github.com/SamuraiJenkinz/onsitereview/internal/scoring"
)

const maxHighlights = 5

// strengthThreshold is the fraction of a criterion's maximum that counts
// as a strength.
const strengthThreshold = 0.9

// RuleEngine produces deterministic verdicts.
type RuleEngine interface {
	Evaluate(t *models.Ticket, criterionID string) models.Verdict
}

// NarrativeAssessor produces model-backed verdicts for a set of criteria,
// in the order given.
type NarrativeAssessor interface {
	AssessBatch(ctx context.Context, t *models.Ticket, criteria []rubric.Criterion) []models.Verdict
}

// Evaluator scores one ticket against one template.
type Evaluator struct {
	registry   *rubric.Registry
	rules      RuleEngine
	assessor   NarrativeAssessor
	aggregator *scoring.Aggregator
	logger     *zap.Logger
}

func New(registry *rubric.Registry, rules RuleEngine, assessor NarrativeAssessor, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		registry:   registry,
		rules:      rules,
		assessor:   assessor,
		aggregator: scoring.NewAggregator(registry),
		logger:     logger,
	}
}

// Evaluate produces the complete result for one ticket. The only error
// cases are configuration ones (unknown template); every per-criterion
// failure is absorbed into an errored zero verdict.
func (e *Evaluator) Evaluate(ctx context.Context, t *models.Ticket, templateName string) (*models.EvaluationResult, error) {
	criteria, err := e.registry.CriteriaFor(templateName)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", t.Number, err)
	}

	var narrative []rubric.Criterion
	byID := make(map[string]models.Verdict, len(criteria))

	for _, c := range criteria {
		if c.Source == rubric.SourceRule {
			byID[c.ID] = e.rules.Evaluate(t, c.ID)
		} else {
			narrative = append(narrative, c)
		}
	}
	for i, v := range e.assessor.AssessBatch(ctx, t, narrative) {
		byID[narrative[i].ID] = v
	}

	// Canonical order: the template's criterion order, regardless of
	// which engine answered first.
	verdicts := make([]models.Verdict, len(criteria))
	for i, c := range criteria {
		verdicts[i] = byID[c.ID]
	}

	outcome, err := e.aggregator.Aggregate(templateName, verdicts)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", t.Number, err)
	}

	result := &models.EvaluationResult{
		TicketNumber:    t.Number,
		Template:        templateName,
		TotalScore:      outcome.TotalScore,
		MaxScore:        outcome.MaxScore,
		Percentage:      outcome.Percentage,
		Band:            outcome.Band,
		Passed:          outcome.Passed,
		CriterionScores: criterionScores(criteria, verdicts),
		Deductions:      outcome.Deductions,
		AutoFail:        outcome.AutoFail,
		AutoFailReason:  outcome.AutoFailReason,
	}
	result.Strengths = strengths(criteria, verdicts)
	result.Improvements = improvements(criteria, verdicts, outcome)

	e.logger.Debug("ticket evaluated",
		zap.String("ticket", t.Number),
		zap.String("template", templateName),
		zap.Int("score", outcome.TotalScore),
		zap.Float64("percentage", outcome.Percentage),
		zap.Bool("passed", outcome.Passed))
	return result, nil
}

func criterionScores(criteria []rubric.Criterion, verdicts []models.Verdict) []models.CriterionScore {
	out := make([]models.CriterionScore, len(criteria))
	for i, c := range criteria {
		v := verdicts[i]
		points := 0
		if c.Policy == rubric.PolicyAdditive {
			points = scoring.AdditivePoints(c, v.Award)
		}
		out[i] = models.CriterionScore{
			CriterionID:   c.ID,
			CriterionName: c.Name,
			MaxPoints:     c.MaxPoints,
			PointsAwarded: points,
			Evidence:      v.Evidence,
			Reasoning:     v.Reasoning,
			Coaching:      v.Coaching,
			Status:        v.Status,
		}
	}
	return out
}

// strengths lists the criteria done well: additive criteria at or above
// the threshold and policy criteria with a clean pass.
func strengths(criteria []rubric.Criterion, verdicts []models.Verdict) []string {
	var out []string
	for i, c := range criteria {
		v := verdicts[i]
		if v.Errored() {
			continue
		}
		switch c.Policy {
		case rubric.PolicyAdditive:
			points := scoring.AdditivePoints(c, v.Award)
			if float64(points) >= strengthThreshold*float64(c.MaxPoints) {
				out = append(out, fmt.Sprintf("%s (%d/%d)", c.Name, points, c.MaxPoints))
			}
		default:
			if v.Award.Kind == models.AwardPass {
				out = append(out, c.Name)
			}
		}
		if len(out) == maxHighlights {
			break
		}
	}
	return out
}

// improvements lists coaching items ordered by how many points each one
// would recover.
func improvements(criteria []rubric.Criterion, verdicts []models.Verdict, outcome scoring.Outcome) []string {
	type item struct {
		recoverable int
		text        string
	}
	var items []item

	deducted := make(map[string]int, len(outcome.Deductions))
	for _, d := range outcome.Deductions {
		deducted[d.CriterionID] = d.Points
	}

	for i, c := range criteria {
		v := verdicts[i]
		recoverable := 0
		switch c.Policy {
		case rubric.PolicyAdditive:
			recoverable = c.MaxPoints - scoring.AdditivePoints(c, v.Award)
		case rubric.PolicyDeduction:
			recoverable = deducted[c.ID]
		case rubric.PolicyAutoFail:
			if v.Award.Kind == models.AwardFail {
				recoverable = outcome.MaxScore
			}
		}
		if recoverable == 0 {
			continue
		}
		text := v.Coaching
		if text == "" {
			text = fmt.Sprintf("Improve %s", c.Name)
		}
		items = append(items, item{recoverable: recoverable, text: text})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].recoverable > items[j].recoverable
	})
	if len(items) > maxHighlights {
		items = items[:maxHighlights]
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.text
	}
	return out
}
