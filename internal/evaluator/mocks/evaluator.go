// Package mocks provides hand-written test doubles for the evaluator's
// collaborators.
package mocks

import (
	"context"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

// MockRuleEngine implements evaluator.RuleEngine.
type MockRuleEngine struct {
	EvaluateFunc func(t *models.Ticket, criterionID string) models.Verdict
}

func (m *MockRuleEngine) Evaluate(t *models.Ticket, criterionID string) models.Verdict {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(t, criterionID)
	}
	return models.Verdict{CriterionID: criterionID, Award: models.PassAward(), Status: models.VerdictOK}
}

// MockNarrativeAssessor implements evaluator.NarrativeAssessor.
type MockNarrativeAssessor struct {
	AssessBatchFunc func(ctx context.Context, t *models.Ticket, criteria []rubric.Criterion) []models.Verdict
}

func (m *MockNarrativeAssessor) AssessBatch(ctx context.Context, t *models.Ticket, criteria []rubric.Criterion) []models.Verdict {
	if m.AssessBatchFunc != nil {
		return m.AssessBatchFunc(ctx, t, criteria)
	}
	out := make([]models.Verdict, len(criteria))
	for i, c := range criteria {
		out[i] = models.Verdict{
			CriterionID: c.ID,
			Award:       models.NumericAward(c.MaxPoints),
			Status:      models.VerdictOK,
		}
	}
	return out
}
