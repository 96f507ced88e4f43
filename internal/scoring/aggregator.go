// Package scoring turns a set of per-criterion verdicts into a final
// score. Additive points first, then deductions, then the auto-fail
// override, with the total clamped to the template's range.
package scoring

import (
	"errors"
	"fmt"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

var (
	ErrMissingVerdict   = errors.New("missing verdict for criterion")
	ErrDuplicateVerdict = errors.New("duplicate verdict for criterion")
)

// Outcome is the numeric result of aggregation. Criterion display rows
// and coaching text are assembled by the evaluator on top of this.
type Outcome struct {
	TotalScore     int
	MaxScore       int
	Percentage     float64
	Band           models.PerformanceBand
	Passed         bool
	Deductions     []models.AppliedDeduction
	AutoFail       bool
	AutoFailReason string
}

// Aggregator scores verdict sets against the loaded rubric.
type Aggregator struct {
	registry *rubric.Registry
}

func NewAggregator(registry *rubric.Registry) *Aggregator {
	return &Aggregator{registry: registry}
}

// Aggregate computes the outcome for one ticket. It requires exactly one
// verdict per template criterion; a short or duplicated set is a caller
// bug, not a scoring case.
func (a *Aggregator) Aggregate(templateName string, verdicts []models.Verdict) (Outcome, error) {
	tmpl, err := a.registry.Template(templateName)
	if err != nil {
		return Outcome{}, err
	}

	byID := make(map[string]models.Verdict, len(verdicts))
	for _, v := range verdicts {
		if _, ok := tmpl.Criterion(v.CriterionID); !ok {
			return Outcome{}, fmt.Errorf("%w: %q not in template %q",
				rubric.ErrUnknownCriterion, v.CriterionID, templateName)
		}
		if _, dup := byID[v.CriterionID]; dup {
			return Outcome{}, fmt.Errorf("%w: %q", ErrDuplicateVerdict, v.CriterionID)
		}
		byID[v.CriterionID] = v
	}

	out := Outcome{MaxScore: tmpl.MaxScore}
	base := 0
	penalty := 0

	for _, c := range tmpl.Criteria {
		v, ok := byID[c.ID]
		if !ok {
			return Outcome{}, fmt.Errorf("%w: %q", ErrMissingVerdict, c.ID)
		}

		switch c.Policy {
		case rubric.PolicyAdditive:
			base += AdditivePoints(c, v.Award)

		case rubric.PolicyDeduction:
			switch v.Award.Kind {
			case models.AwardFail:
				penalty += c.Penalty
				out.Deductions = append(out.Deductions, models.AppliedDeduction{
					CriterionID: c.ID,
					Points:      c.Penalty,
				})
			case models.AwardDeduction:
				penalty += -v.Award.Points
				out.Deductions = append(out.Deductions, models.AppliedDeduction{
					CriterionID: c.ID,
					Points:      -v.Award.Points,
				})
			}

		case rubric.PolicyAutoFail:
			if v.Award.Kind == models.AwardFail {
				out.AutoFail = true
				out.AutoFailReason = v.Reasoning
			}
		}
	}

	total := base - penalty
	if total < 0 {
		total = 0
	}
	if total > tmpl.MaxScore {
		total = tmpl.MaxScore
	}
	if out.AutoFail {
		total = 0
	}

	out.TotalScore = total
	out.Percentage = models.RoundPercentage(float64(total) / float64(tmpl.MaxScore) * 100)
	out.Band = models.BandFromPercentage(out.Percentage)
	out.Passed = !out.AutoFail && out.Percentage >= models.PassThreshold
	return out, nil
}

// AdditivePoints resolves an award against an additive criterion. The
// sentinels map to the criterion's bounds; numeric points are clamped
// into them.
func AdditivePoints(c rubric.Criterion, a models.Award) int {
	switch a.Kind {
	case models.AwardPass, models.AwardNotApplicable:
		return c.MaxPoints
	case models.AwardFail, models.AwardDeduction:
		return 0
	default:
		p := a.Points
		if p < 0 {
			p = 0
		}
		if p > c.MaxPoints {
			p = c.MaxPoints
		}
		return p
	}
}
