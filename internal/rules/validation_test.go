package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
)

func TestValidationRulePhone(t *testing.T) {
	rule := &ValidationRule{}

	t.Run("okta push passes", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{
			ContactType: "phone",
			Description: "Caller validated via OKTA push before troubleshooting.",
		})
		assert.Equal(t, models.AwardPass, v.Award.Kind)
	})

	t.Run("two identity elements pass", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{
			ContactType: "phone",
			Description: "Employee ID 12345 checked. Full name verified against directory.",
		})
		assert.Equal(t, models.AwardPass, v.Award.Kind)
	})

	t.Run("single element is a partial deduction", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{
			ContactType: "phone",
			Description: "Checked employee ID 12345, then proceeded.",
		})
		assert.Equal(t, models.AwardDeduction, v.Award.Kind)
		assert.Equal(t, -10, v.Award.Points)
	})

	t.Run("vague mention is a partial deduction", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{
			ContactType: "phone",
			Description: "User was validated before the reset.",
		})
		assert.Equal(t, models.AwardDeduction, v.Award.Kind)
		assert.Equal(t, -10, v.Award.Points)
	})

	t.Run("no validation fails", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{
			ContactType: "phone",
			Description: "User called about printer not printing. Cleared the queue.",
		})
		assert.Equal(t, models.AwardFail, v.Award.Kind)
		assert.NotEmpty(t, v.Coaching)
	})
}

func TestValidationRuleOtherContactTypes(t *testing.T) {
	rule := &ValidationRule{}

	t.Run("self-service is not applicable", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{ContactType: "self-service"})
		assert.Equal(t, models.AwardNotApplicable, v.Award.Kind)
	})

	t.Run("guest chat validation passes", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{
			ContactType: "chat",
			Description: "Guest chat validation completed for external colleague.",
		})
		assert.Equal(t, models.AwardPass, v.Award.Kind)
	})

	t.Run("undocumented chat is a partial deduction", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{
			ContactType: "chat",
			Description: "User reported a frozen screen over chat.",
		})
		assert.Equal(t, models.AwardDeduction, v.Award.Kind)
	})

	t.Run("email without explicit validation is not applicable", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{
			ContactType: "email",
			Description: "Mail from corporate address about calendar sync.",
		})
		assert.Equal(t, models.AwardNotApplicable, v.Award.Kind)
	})

	t.Run("unknown contact type without evidence is not applicable", func(t *testing.T) {
		v := rule.Evaluate(&models.Ticket{
			ContactType: "walk-in",
			Description: "Colleague stopped by the desk.",
		})
		assert.Equal(t, models.AwardNotApplicable, v.Award.Kind)
	})
}

func TestValidationEvidence(t *testing.T) {
	t.Run("extracts validation lines", func(t *testing.T) {
		desc := "User called.\nValidated via OKTA push.\nReset completed."
		assert.Equal(t, "Validated via OKTA push.", validationEvidence(desc))
	})

	t.Run("falls back to the first line", func(t *testing.T) {
		assert.Equal(t, "Printer jammed again.", validationEvidence("Printer jammed again.\nMore text."))
	})

	t.Run("empty description", func(t *testing.T) {
		assert.Equal(t, "No description available", validationEvidence(""))
	})
}
