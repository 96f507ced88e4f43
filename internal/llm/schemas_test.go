package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

var testCriterion = rubric.Criterion{
	ID:        rubric.CriterionIncidentNotes,
	Name:      "Incident Notes",
	MaxPoints: 20,
	Source:    rubric.SourceNarrative,
	Policy:    rubric.PolicyAdditive,
}

func TestParseAssessment(t *testing.T) {
	t.Run("well formed response is ok", func(t *testing.T) {
		raw := `{"score": 20, "evidence": ["documented steps"], "reasoning": "complete notes", "coaching": ""}`
		a, status, err := parseAssessment(raw)
		require.NoError(t, err)
		assert.Equal(t, models.VerdictOK, status)
		assert.Equal(t, "complete notes", a.Reasoning)
	})

	t.Run("repaired response is degraded", func(t *testing.T) {
		// Trailing comma and unquoted key, the usual model damage.
		raw := `{"score": 10, "evidence": ["partial"], "reasoning": "gaps in notes",}`
		a, status, err := parseAssessment(raw)
		require.NoError(t, err)
		assert.Equal(t, models.VerdictDegraded, status)
		assert.Equal(t, "gaps in notes", a.Reasoning)
	})

	t.Run("missing reasoning is degraded", func(t *testing.T) {
		raw := `{"score": 10, "evidence": ["partial"]}`
		_, status, err := parseAssessment(raw)
		require.NoError(t, err)
		assert.Equal(t, models.VerdictDegraded, status)
	})

	t.Run("missing score is unusable", func(t *testing.T) {
		raw := `{"evidence": ["x"], "reasoning": "no score though"}`
		_, status, err := parseAssessment(raw)
		assert.ErrorIs(t, err, ErrUnparsableResponse)
		assert.Equal(t, models.VerdictErrored, status)
	})

	t.Run("plain prose is unusable", func(t *testing.T) {
		_, status, err := parseAssessment("The ticket looks fine to me.")
		assert.ErrorIs(t, err, ErrUnparsableResponse)
		assert.Equal(t, models.VerdictErrored, status)
	})
}

func TestVerdictFrom(t *testing.T) {
	t.Run("score clamped into the criterion range", func(t *testing.T) {
		a, status, err := parseAssessment(`{"score": 45, "evidence": ["e"], "reasoning": "r"}`)
		require.NoError(t, err)

		v := verdictFrom(testCriterion, a, status)
		assert.Equal(t, 20, v.Award.Points)
	})

	t.Run("negative score clamped to zero", func(t *testing.T) {
		a, status, err := parseAssessment(`{"score": -5, "evidence": ["e"], "reasoning": "r"}`)
		require.NoError(t, err)

		v := verdictFrom(testCriterion, a, status)
		assert.Equal(t, 0, v.Award.Points)
	})

	t.Run("quoted score accepted", func(t *testing.T) {
		a, status, err := parseAssessment(`{"score": "10", "evidence": ["e"], "reasoning": "r"}`)
		require.NoError(t, err)

		v := verdictFrom(testCriterion, a, status)
		assert.Equal(t, 10, v.Award.Points)
		assert.Equal(t, models.AwardNumeric, v.Award.Kind)
	})

	t.Run("garbage score becomes an errored verdict", func(t *testing.T) {
		a, status, err := parseAssessment(`{"score": "plenty", "evidence": ["e"], "reasoning": "r"}`)
		require.NoError(t, err)

		v := verdictFrom(testCriterion, a, status)
		assert.True(t, v.Errored())
		assert.Equal(t, 0, v.Award.Points)
	})

	t.Run("evidence list joined for display", func(t *testing.T) {
		a, status, err := parseAssessment(`{"score": 20, "evidence": ["first", "second"], "reasoning": "r"}`)
		require.NoError(t, err)

		v := verdictFrom(testCriterion, a, status)
		assert.Equal(t, "first | second", v.Evidence)
	})

	t.Run("bare string evidence accepted", func(t *testing.T) {
		a, status, err := parseAssessment(`{"score": 20, "evidence": "just one quote", "reasoning": "r"}`)
		require.NoError(t, err)

		v := verdictFrom(testCriterion, a, status)
		assert.Equal(t, "just one quote", v.Evidence)
	})
}

func TestBuildMessages(t *testing.T) {
	ticket := &models.Ticket{
		Number:           "INC0012345",
		ContactType:      "phone",
		Category:         "Software",
		ShortDescription: "MARSH - London - Outlook - Cannot send email",
		Description:      "Send fails with 0x800CCC0F.",
	}

	t.Run("prompt carries ticket context and score bounds", func(t *testing.T) {
		msgs, err := BuildMessages(testCriterion, ticket)
		require.NoError(t, err)
		require.Len(t, msgs, 2)

		assert.Equal(t, "system", msgs[0].Role)
		assert.Contains(t, msgs[0].Content, "20 points")
		assert.Equal(t, "user", msgs[1].Role)
		assert.Contains(t, msgs[1].Content, "INC0012345")
		assert.Contains(t, msgs[1].Content, "0x800CCC0F")
		assert.Contains(t, msgs[1].Content, "0 to 20")
	})

	t.Run("every narrative criterion has a prompt", func(t *testing.T) {
		registry, err := rubric.Load()
		require.NoError(t, err)
		for _, name := range registry.TemplateNames() {
			criteria, err := registry.CriteriaFor(name)
			require.NoError(t, err)
			for _, c := range criteria {
				if c.Source != rubric.SourceNarrative {
					continue
				}
				msgs, err := BuildMessages(c, ticket)
				require.NoError(t, err, c.ID)
				// A failed placeholder substitution surfaces as a %! marker.
				assert.NotContains(t, msgs[0].Content, "%!", c.ID)
			}
		}
	})

	t.Run("unknown criterion is an error", func(t *testing.T) {
		_, err := BuildMessages(rubric.Criterion{ID: "nope"}, ticket)
		assert.ErrorIs(t, err, rubric.ErrUnknownCriterion)
	})
}
