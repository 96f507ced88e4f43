package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SamuraiJenkinz/onsitereview/internal/batch/mocks"
	"github.com/SamuraiJenkinz/onsitereview/internal/models"
)

func makeTickets(n int) []*models.Ticket {
	out := make([]*models.Ticket, n)
	for i := range out {
		out[i] = &models.Ticket{Number: fmt.Sprintf("INC%04d", i+1)}
	}
	return out
}

func passingResult(number string, score int) *models.EvaluationResult {
	return &models.EvaluationResult{
		TicketNumber: number,
		TotalScore:   score,
		MaxScore:     90,
		Percentage:   models.RoundPercentage(float64(score) / 90 * 100),
		Band:         models.BandFromPercentage(float64(score) / 90 * 100),
		Passed:       float64(score)/90*100 >= models.PassThreshold,
	}
}

func TestRun(t *testing.T) {
	t.Run("results keep the input order", func(t *testing.T) {
		evaluator := &mocks.MockTicketEvaluator{
			EvaluateFunc: func(_ context.Context, tk *models.Ticket, _ string) (*models.EvaluationResult, error) {
				return passingResult(tk.Number, 85), nil
			},
		}
		o := NewOrchestrator(evaluator, zap.NewNop(), WithConcurrency(3))

		result, err := o.Run(context.Background(), makeTickets(10), "onsite_review")
		require.NoError(t, err)
		require.Len(t, result.Results, 10)
		for i, r := range result.Results {
			assert.Equal(t, fmt.Sprintf("INC%04d", i+1), r.TicketNumber)
		}
		assert.Empty(t, result.Errors)
		assert.Positive(t, result.Duration)
	})

	t.Run("a panicking ticket does not sink the batch", func(t *testing.T) {
		evaluator := &mocks.MockTicketEvaluator{
			EvaluateFunc: func(_ context.Context, tk *models.Ticket, _ string) (*models.EvaluationResult, error) {
				if tk.Number == "INC0004" {
					panic("corrupt ticket")
				}
				return passingResult(tk.Number, 85), nil
			},
		}
		o := NewOrchestrator(evaluator, zap.NewNop(), WithConcurrency(3))

		result, err := o.Run(context.Background(), makeTickets(10), "onsite_review")
		require.NoError(t, err)
		assert.Len(t, result.Results, 9)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "INC0004", result.Errors[0].TicketNumber)
		assert.Contains(t, result.Errors[0].Reason, "panic")
		assert.Equal(t, 1, result.Summary.Errored)
	})

	t.Run("evaluation errors land in the error list", func(t *testing.T) {
		evaluator := &mocks.MockTicketEvaluator{
			EvaluateFunc: func(_ context.Context, tk *models.Ticket, _ string) (*models.EvaluationResult, error) {
				if tk.Number == "INC0002" {
					return nil, errors.New("malformed ticket")
				}
				return passingResult(tk.Number, 85), nil
			},
		}
		o := NewOrchestrator(evaluator, zap.NewNop())

		result, err := o.Run(context.Background(), makeTickets(3), "onsite_review")
		require.NoError(t, err)
		assert.Len(t, result.Results, 2)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "malformed ticket", result.Errors[0].Reason)
	})

	t.Run("empty batch", func(t *testing.T) {
		calls := 0
		o := NewOrchestrator(&mocks.MockTicketEvaluator{}, zap.NewNop(),
			WithProgress(func(Progress) { calls++ }))

		result, err := o.Run(context.Background(), nil, "onsite_review")
		require.NoError(t, err)
		assert.Empty(t, result.Results)
		assert.Zero(t, result.Summary.Count)
		assert.Zero(t, calls)
	})

	t.Run("progress reaches the final count", func(t *testing.T) {
		var (
			mu   sync.Mutex
			last Progress
			n    int
		)
		evaluator := &mocks.MockTicketEvaluator{
			EvaluateFunc: func(_ context.Context, tk *models.Ticket, _ string) (*models.EvaluationResult, error) {
				if tk.Number == "INC0001" {
					return nil, errors.New("bad")
				}
				return passingResult(tk.Number, 85), nil
			},
		}
		o := NewOrchestrator(evaluator, zap.NewNop(), WithProgress(func(p Progress) {
			mu.Lock()
			defer mu.Unlock()
			last = p
			n++
		}))

		_, err := o.Run(context.Background(), makeTickets(5), "onsite_review")
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, 5, last.Total)
		assert.Equal(t, 4, last.Completed)
		assert.Equal(t, 1, last.Errored)
		assert.NotEmpty(t, last.CurrentTicket)
		assert.Positive(t, last.Elapsed)
		assert.Zero(t, last.EstimatedRemaining)
	})

	t.Run("a panicking progress callback is tolerated", func(t *testing.T) {
		o := NewOrchestrator(&mocks.MockTicketEvaluator{}, zap.NewNop(),
			WithProgress(func(Progress) { panic("broken bar") }))

		result, err := o.Run(context.Background(), makeTickets(4), "onsite_review")
		require.NoError(t, err)
		assert.Len(t, result.Results, 4)
	})

	t.Run("in-flight evaluations finish after cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		started := make(chan struct{})
		release := make(chan struct{})
		evaluator := &mocks.MockTicketEvaluator{
			EvaluateFunc: func(evalCtx context.Context, tk *models.Ticket, _ string) (*models.EvaluationResult, error) {
				if tk.Number == "INC0001" {
					close(started)
					<-release
					if err := evalCtx.Err(); err != nil {
						return nil, err
					}
				}
				return passingResult(tk.Number, 85), nil
			},
		}
		o := NewOrchestrator(evaluator, zap.NewNop(), WithConcurrency(1))

		go func() {
			<-started
			cancel()
			close(release)
		}()

		result, err := o.Run(ctx, makeTickets(3), "onsite_review")
		assert.ErrorIs(t, err, context.Canceled)
		require.Len(t, result.Results, 1)
		assert.Equal(t, "INC0001", result.Results[0].TicketNumber)
		assert.Equal(t, 85, result.Results[0].TotalScore)
		assert.Equal(t, 1, result.Summary.Count)
		assert.Equal(t, 85.0, result.Summary.AverageScore)
		for _, te := range result.Errors {
			assert.NotEqual(t, "INC0001", te.TicketNumber)
		}
	})

	t.Run("cancelled context starts nothing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		o := NewOrchestrator(&mocks.MockTicketEvaluator{}, zap.NewNop())

		result, err := o.Run(ctx, makeTickets(5), "onsite_review")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, result.Results)
	})
}

func TestSummarize(t *testing.T) {
	t.Run("averages cover completed tickets only", func(t *testing.T) {
		results := []*models.EvaluationResult{
			passingResult("INC0001", 90), // 100.0, blue
			passingResult("INC0002", 81), // 90.0, green
			passingResult("INC0003", 72), // 80.0, yellow
		}
		s := summarize(results, 2)

		assert.Equal(t, 3, s.Count)
		assert.Equal(t, 2, s.Errored)
		assert.Equal(t, 81.0, s.AverageScore)
		assert.Equal(t, 90.0, s.AveragePercentage)
		assert.Equal(t, 66.7, s.PassRate)
		assert.Equal(t, map[models.PerformanceBand]int{
			models.BandBlue:   1,
			models.BandGreen:  1,
			models.BandYellow: 1,
		}, s.BandDistribution)
	})

	t.Run("common issues ranked by frequency", func(t *testing.T) {
		withIssues := func(number string, issues ...string) *models.EvaluationResult {
			r := passingResult(number, 72)
			r.Improvements = issues
			return r
		}
		results := []*models.EvaluationResult{
			withIssues("INC0001", "document validation", "fix categories"),
			withIssues("INC0002", "document validation"),
			withIssues("INC0003", "document validation", "fix categories", "a", "b", "c", "d"),
		}
		s := summarize(results, 0)

		require.Len(t, s.CommonIssues, 5)
		assert.Equal(t, "document validation", s.CommonIssues[0])
		assert.Equal(t, "fix categories", s.CommonIssues[1])
	})
}
