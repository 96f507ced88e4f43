// Package batch evaluates many tickets concurrently over a bounded
// worker pool, isolating per-ticket failures and summarizing the
// completed results.
package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
)

// DefaultConcurrency is the pool size when none is configured.
const DefaultConcurrency = 5

const maxCommonIssues = 5

// TicketEvaluator scores one ticket.
type TicketEvaluator interface {
	Evaluate(ctx context.Context, t *models.Ticket, template string) (*models.EvaluationResult, error)
}

// Progress is a snapshot handed to the progress callback after every
// ticket settles.
type Progress struct {
	Total     int
	Completed int
	Errored   int

	// CurrentTicket is the ticket that just settled.
	CurrentTicket      string
	Elapsed            time.Duration
	EstimatedRemaining time.Duration
}

// ProgressFunc receives progress snapshots. Calls are serialized;
// panics inside the callback are swallowed.
type ProgressFunc func(Progress)

// TicketError records one ticket that could not be evaluated.
type TicketError struct {
	TicketNumber string `json:"ticket_number"`
	Reason       string `json:"reason"`
}

// Summary aggregates the completed results only. Errored tickets are
// counted but never pull the averages down.
type Summary struct {
	Count             int                            `json:"count"`
	Errored           int                            `json:"errored"`
	AverageScore      float64                        `json:"average_score"`
	AveragePercentage float64                        `json:"average_percentage"`
	PassRate          float64                        `json:"pass_rate"`
	BandDistribution  map[models.PerformanceBand]int `json:"band_distribution"`
	CommonIssues      []string                       `json:"common_issues"`
}

// Result is the complete outcome of one batch run. Results keep the
// input order of their tickets.
type Result struct {
	Results  []*models.EvaluationResult `json:"results"`
	Errors   []TicketError              `json:"errors,omitempty"`
	Summary  Summary                    `json:"summary"`
	Duration time.Duration              `json:"duration"`
}

// Orchestrator runs batches over an ants pool.
type Orchestrator struct {
	evaluator   TicketEvaluator
	concurrency int
	onProgress  ProgressFunc
	logger      *zap.Logger
}

type Option func(*Orchestrator)

// WithConcurrency overrides the pool size.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

func NewOrchestrator(evaluator TicketEvaluator, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		evaluator:   evaluator,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run evaluates every ticket against the template. A panic or error on
// one ticket lands in the error list and the rest of the batch carries
// on. Cancellation stops new tickets from starting; tickets already in
// flight finish and stay in the results.
func (o *Orchestrator) Run(ctx context.Context, tickets []*models.Ticket, template string) (*Result, error) {
	start := time.Now()
	result := &Result{Summary: Summary{BandDistribution: map[models.PerformanceBand]int{}}}
	if len(tickets) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(o.concurrency)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make([]*models.EvaluationResult, len(tickets))
		errored int
		done    int
	)

	settle := func(i int, number string, r *models.EvaluationResult, terr *TicketError) {
		mu.Lock()
		defer mu.Unlock()
		if terr != nil {
			errored++
			result.Errors = append(result.Errors, *terr)
		} else {
			results[i] = r
		}
		done++
		elapsed := time.Since(start)
		o.notify(Progress{
			Total:              len(tickets),
			Completed:          done - errored,
			Errored:            errored,
			CurrentTicket:      number,
			Elapsed:            elapsed,
			EstimatedRemaining: elapsed / time.Duration(done) * time.Duration(len(tickets)-done),
		})
	}

	for i, t := range tickets {
		if ctx.Err() != nil {
			break
		}
		i, t := i, t
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				settle(i, t.Number, nil, &TicketError{TicketNumber: t.Number, Reason: ctx.Err().Error()})
				return
			}
			// Once an evaluation has started it runs to completion;
			// cancellation only stops tickets that have not begun.
			r, terr := o.evaluateOne(context.WithoutCancel(ctx), t, template)
			settle(i, t.Number, r, terr)
		})
		if submitErr != nil {
			wg.Done()
			settle(i, t.Number, nil, &TicketError{TicketNumber: t.Number, Reason: submitErr.Error()})
		}
	}
	wg.Wait()

	for _, r := range results {
		if r != nil {
			result.Results = append(result.Results, r)
		}
	}
	result.Summary = summarize(result.Results, len(result.Errors))
	result.Duration = time.Since(start)

	o.logger.Info("batch finished",
		zap.Int("tickets", len(tickets)),
		zap.Int("completed", len(result.Results)),
		zap.Int("errored", len(result.Errors)),
		zap.Duration("duration", result.Duration))
	return result, ctx.Err()
}

// evaluateOne wraps a single evaluation with panic recovery so a bad
// ticket cannot take the whole batch down.
func (o *Orchestrator) evaluateOne(ctx context.Context, t *models.Ticket, template string) (r *models.EvaluationResult, terr *TicketError) {
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("evaluation panicked",
				zap.String("ticket", t.Number),
				zap.Any("panic", rec))
			r = nil
			terr = &TicketError{TicketNumber: t.Number, Reason: fmt.Sprintf("panic: %v", rec)}
		}
	}()

	r, err := o.evaluator.Evaluate(ctx, t, template)
	if err != nil {
		o.logger.Warn("evaluation failed",
			zap.String("ticket", t.Number),
			zap.Error(err))
		return nil, &TicketError{TicketNumber: t.Number, Reason: err.Error()}
	}
	return r, nil
}

func (o *Orchestrator) notify(p Progress) {
	if o.onProgress == nil {
		return
	}
	defer func() {
		_ = recover() // a broken progress bar must not kill the batch
	}()
	o.onProgress(p)
}

func summarize(results []*models.EvaluationResult, errored int) Summary {
	s := Summary{
		Count:            len(results),
		Errored:          errored,
		BandDistribution: map[models.PerformanceBand]int{},
	}
	if len(results) == 0 {
		return s
	}

	var scoreSum, pctSum float64
	passed := 0
	issueCounts := make(map[string]int)
	var issueOrder []string

	for _, r := range results {
		scoreSum += float64(r.TotalScore)
		pctSum += r.Percentage
		if r.Passed {
			passed++
		}
		s.BandDistribution[r.Band]++
		for _, imp := range r.Improvements {
			if issueCounts[imp] == 0 {
				issueOrder = append(issueOrder, imp)
			}
			issueCounts[imp]++
		}
	}

	n := float64(len(results))
	s.AverageScore = scoreSum / n
	s.AveragePercentage = models.RoundPercentage(pctSum / n)
	s.PassRate = models.RoundPercentage(float64(passed) / n * 100)

	sort.SliceStable(issueOrder, func(i, j int) bool {
		return issueCounts[issueOrder[i]] > issueCounts[issueOrder[j]]
	})
	if len(issueOrder) > maxCommonIssues {
		issueOrder = issueOrder[:maxCommonIssues]
	}
	s.CommonIssues = issueOrder
	return s
}
