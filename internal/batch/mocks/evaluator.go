// Package mocks provides hand-written test doubles for the batch
// orchestrator's collaborators.
package mocks

import (
	"context"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
)

// MockTicketEvaluator implements batch.TicketEvaluator.
type MockTicketEvaluator struct {
	EvaluateFunc func(ctx context.Context, t *models.Ticket, template string) (*models.EvaluationResult, error)
}

func (m *MockTicketEvaluator) Evaluate(ctx context.Context, t *models.Ticket, template string) (*models.EvaluationResult, error) {
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, t, template)
	}
	return &models.EvaluationResult{TicketNumber: t.Number, Template: template}, nil
}
