package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

// onsiteVerdicts builds a full verdict set for the onsite review
// template with every additive criterion at full marks and every policy
// criterion passing, then applies the overrides.
func onsiteVerdicts(t *testing.T, overrides map[string]models.Award) []models.Verdict {
	t.Helper()
	registry, err := rubric.Load()
	require.NoError(t, err)
	criteria, err := registry.CriteriaFor(rubric.TemplateOnsiteReview)
	require.NoError(t, err)

	verdicts := make([]models.Verdict, len(criteria))
	for i, c := range criteria {
		award := models.PassAward()
		if c.Policy == rubric.PolicyAdditive {
			award = models.NumericAward(c.MaxPoints)
		}
		if override, ok := overrides[c.ID]; ok {
			award = override
		}
		verdicts[i] = models.Verdict{CriterionID: c.ID, Award: award, Status: models.VerdictOK}
	}
	return verdicts
}

func newAggregator(t *testing.T) *Aggregator {
	t.Helper()
	registry, err := rubric.Load()
	require.NoError(t, err)
	return NewAggregator(registry)
}

func TestAggregate(t *testing.T) {
	agg := newAggregator(t)

	t.Run("perfect ticket", func(t *testing.T) {
		out, err := agg.Aggregate(rubric.TemplateOnsiteReview, onsiteVerdicts(t, nil))
		require.NoError(t, err)

		assert.Equal(t, 90, out.TotalScore)
		assert.Equal(t, 90, out.MaxScore)
		assert.Equal(t, 100.0, out.Percentage)
		assert.Equal(t, models.BandBlue, out.Band)
		assert.True(t, out.Passed)
		assert.Empty(t, out.Deductions)
		assert.False(t, out.AutoFail)
	})

	t.Run("failed deduction criterion subtracts its fixed penalty", func(t *testing.T) {
		out, err := agg.Aggregate(rubric.TemplateOnsiteReview, onsiteVerdicts(t, map[string]models.Award{
			rubric.CriterionValidation: models.FailAward(),
		}))
		require.NoError(t, err)

		assert.Equal(t, 75, out.TotalScore)
		require.Len(t, out.Deductions, 1)
		assert.Equal(t, rubric.CriterionValidation, out.Deductions[0].CriterionID)
		assert.Equal(t, 15, out.Deductions[0].Points)
		assert.False(t, out.Passed)
	})

	t.Run("custom deduction magnitude subtracts exactly itself", func(t *testing.T) {
		out, err := agg.Aggregate(rubric.TemplateOnsiteReview, onsiteVerdicts(t, map[string]models.Award{
			rubric.CriterionCriticalProcess: models.DeductionAward(20),
		}))
		require.NoError(t, err)

		assert.Equal(t, 70, out.TotalScore)
		require.Len(t, out.Deductions, 1)
		assert.Equal(t, 20, out.Deductions[0].Points)
	})

	t.Run("total clamps at zero", func(t *testing.T) {
		out, err := agg.Aggregate(rubric.TemplateOnsiteReview, onsiteVerdicts(t, map[string]models.Award{
			rubric.CriterionCategory:          models.NumericAward(0),
			rubric.CriterionSubcategory:       models.NumericAward(0),
			rubric.CriterionService:           models.NumericAward(0),
			rubric.CriterionConfigItem:        models.NumericAward(0),
			rubric.CriterionOpenedFor:         models.NumericAward(0),
			rubric.CriterionIncidentNotes:     models.NumericAward(0),
			rubric.CriterionIncidentHandling:  models.NumericAward(0),
			rubric.CriterionResolutionNotes:   models.NumericAward(0),
			rubric.CriterionValidation:        models.FailAward(),
			rubric.CriterionCriticalProcess:   models.FailAward(),
		}))
		require.NoError(t, err)

		assert.Equal(t, 0, out.TotalScore)
		assert.Equal(t, models.BandPurple, out.Band)
	})

	t.Run("auto fail zeroes a perfect ticket", func(t *testing.T) {
		out, err := agg.Aggregate(rubric.TemplateOnsiteReview, onsiteVerdicts(t, map[string]models.Award{
			rubric.CriterionPasswordHandling: models.FailAward(),
		}))
		require.NoError(t, err)

		assert.True(t, out.AutoFail)
		assert.Equal(t, 0, out.TotalScore)
		assert.Equal(t, 0.0, out.Percentage)
		assert.False(t, out.Passed)
	})

	t.Run("pass sentinel on an additive criterion grants full points", func(t *testing.T) {
		out, err := agg.Aggregate(rubric.TemplateOnsiteReview, onsiteVerdicts(t, map[string]models.Award{
			rubric.CriterionResolutionNotes: models.NotApplicableAward(),
		}))
		require.NoError(t, err)
		assert.Equal(t, 90, out.TotalScore)
	})

	t.Run("numeric award clamped to the criterion maximum", func(t *testing.T) {
		out, err := agg.Aggregate(rubric.TemplateOnsiteReview, onsiteVerdicts(t, map[string]models.Award{
			rubric.CriterionCategory: models.NumericAward(50),
		}))
		require.NoError(t, err)
		assert.Equal(t, 90, out.TotalScore)
	})
}

func TestAggregateBandBoundaries(t *testing.T) {
	agg := newAggregator(t)

	t.Run("exactly ninety percent passes green", func(t *testing.T) {
		// 81/90 = 90.0%
		out, err := agg.Aggregate(rubric.TemplateOnsiteReview, onsiteVerdicts(t, map[string]models.Award{
			rubric.CriterionIncidentNotes: models.NumericAward(11),
		}))
		require.NoError(t, err)

		assert.Equal(t, 81, out.TotalScore)
		assert.Equal(t, 90.0, out.Percentage)
		assert.Equal(t, models.BandGreen, out.Band)
		assert.True(t, out.Passed)
	})

	t.Run("just below ninety percent fails yellow", func(t *testing.T) {
		// 80/90 = 88.9%
		out, err := agg.Aggregate(rubric.TemplateOnsiteReview, onsiteVerdicts(t, map[string]models.Award{
			rubric.CriterionIncidentNotes: models.NumericAward(10),
		}))
		require.NoError(t, err)

		assert.Equal(t, 88.9, out.Percentage)
		assert.Equal(t, models.BandYellow, out.Band)
		assert.False(t, out.Passed)
	})
}

func TestAggregateErrors(t *testing.T) {
	agg := newAggregator(t)

	t.Run("unknown template", func(t *testing.T) {
		_, err := agg.Aggregate("nope", nil)
		assert.ErrorIs(t, err, rubric.ErrUnknownTemplate)
	})

	t.Run("missing verdict", func(t *testing.T) {
		verdicts := onsiteVerdicts(t, nil)
		_, err := agg.Aggregate(rubric.TemplateOnsiteReview, verdicts[1:])
		assert.ErrorIs(t, err, ErrMissingVerdict)
	})

	t.Run("duplicate verdict", func(t *testing.T) {
		verdicts := onsiteVerdicts(t, nil)
		_, err := agg.Aggregate(rubric.TemplateOnsiteReview, append(verdicts, verdicts[0]))
		assert.ErrorIs(t, err, ErrDuplicateVerdict)
	})

	t.Run("verdict outside the template", func(t *testing.T) {
		verdicts := onsiteVerdicts(t, nil)
		verdicts[0].CriterionID = "nope"
		_, err := agg.Aggregate(rubric.TemplateOnsiteReview, verdicts)
		assert.ErrorIs(t, err, rubric.ErrUnknownCriterion)
	})
}
