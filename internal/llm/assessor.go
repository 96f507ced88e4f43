package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

// VerdictCache stores fully trusted verdicts keyed by ticket and
// criterion so re-evaluations skip the model entirely.
type VerdictCache interface {
	Get(ctx context.Context, key string) (models.Verdict, bool, error)
	Set(ctx context.Context, key string, v models.Verdict) error
}

// Assessor produces narrative verdicts. It never returns an error: any
// failure along the way becomes an errored zero verdict so one bad
// criterion cannot sink a ticket.
type Assessor struct {
	client Client
	cache  VerdictCache
	group  singleflight.Group
	logger *zap.Logger
}

type AssessorOption func(*Assessor)

// WithVerdictCache enables verdict caching.
func WithVerdictCache(cache VerdictCache) AssessorOption {
	return func(a *Assessor) { a.cache = cache }
}

func NewAssessor(client Client, logger *zap.Logger, opts ...AssessorOption) *Assessor {
	a := &Assessor{client: client, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assess evaluates one narrative criterion for one ticket. Concurrent
// calls for the same ticket and criterion share a single model request.
func (a *Assessor) Assess(ctx context.Context, t *models.Ticket, c rubric.Criterion) models.Verdict {
	key := verdictKey(t, c)

	if a.cache != nil {
		if v, hit, err := a.cache.Get(ctx, key); err == nil && hit {
			return v
		}
	}

	result, err, _ := a.group.Do(key, func() (any, error) {
		return a.assess(ctx, t, c), nil
	})
	if err != nil {
		// Do never returns an error here; keep the degraded path anyway.
		return models.ErrorVerdict(c.ID, err.Error())
	}
	v := result.(models.Verdict)

	if a.cache != nil && v.Status == models.VerdictOK {
		if err := a.cache.Set(ctx, key, v); err != nil {
			a.logger.Warn("verdict cache write failed",
				zap.String("key", key), zap.Error(err))
		}
	}
	return v
}

func (a *Assessor) assess(ctx context.Context, t *models.Ticket, c rubric.Criterion) models.Verdict {
	messages, err := BuildMessages(c, t)
	if err != nil {
		return models.ErrorVerdict(c.ID, err.Error())
	}

	raw, err := a.client.Complete(ctx, messages)
	if err != nil {
		a.logger.Warn("completion failed",
			zap.String("ticket", t.Number),
			zap.String("criterion", c.ID),
			zap.Error(err))
		return models.ErrorVerdict(c.ID, err.Error())
	}

	parsed, status, err := parseAssessment(raw)
	if err != nil {
		a.logger.Warn("unparsable assessment",
			zap.String("ticket", t.Number),
			zap.String("criterion", c.ID))
		return models.ErrorVerdict(c.ID, err.Error())
	}
	return verdictFrom(c, parsed, status)
}

// AssessBatch evaluates several narrative criteria concurrently and
// returns the verdicts in the order the criteria were given.
func (a *Assessor) AssessBatch(ctx context.Context, t *models.Ticket, criteria []rubric.Criterion) []models.Verdict {
	verdicts := make([]models.Verdict, len(criteria))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range criteria {
		i, c := i, c
		g.Go(func() error {
			verdicts[i] = a.Assess(gctx, t, c)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()
	return verdicts
}

func verdictKey(t *models.Ticket, c rubric.Criterion) string {
	return fmt.Sprintf("verdict:%s:%s:%d", t.Number, c.ID, c.MaxPoints)
}
