package rules

import (
	"strings"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

const openedForMaxPoints = 10

// OpenedForRule checks structural completeness of the Opened For field:
// full points when it identifies the affected colleague, zero otherwise.
type OpenedForRule struct{}

func (r *OpenedForRule) CriterionID() string { return rubric.CriterionOpenedFor }

func (r *OpenedForRule) Evaluate(t *models.Ticket) models.Verdict {
	value := strings.TrimSpace(t.OpenedFor)
	if value != "" {
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.NumericAward(openedForMaxPoints),
			Evidence:    "Opened For field set to: " + value,
			Reasoning:   "Opened For field is populated with a ServiceNow profile reference.",
			Status:      models.VerdictOK,
		}
	}
	return models.Verdict{
		CriterionID: r.CriterionID(),
		Award:       models.NumericAward(0),
		Evidence:    "Opened For field is empty",
		Reasoning:   "The Opened For field must identify the affected colleague.",
		Coaching:    "Set the Opened For field to the affected colleague's ServiceNow profile.",
		Status:      models.VerdictOK,
	}
}
