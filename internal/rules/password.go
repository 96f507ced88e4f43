package rules

import (
	"strings"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

// PasswordHandlingRule verifies password reset tickets followed the
// secure delivery process. It is the auto-fail criterion: a password
// sent directly to the affected user zeroes the whole evaluation.
//
//	PASS - trusted colleague documented as the delivery intermediary
//	FAIL - password process violated or undocumented (automatic fail)
//	N/A  - ticket does not involve a password reset
type PasswordHandlingRule struct{}

var passwordResetPatterns = compileAll(
	`password\s*reset`,
	`reset\s*password`,
	`pwd\s*reset`,
	`lan\s*password`,
	`ad\s*password`,
	`network\s*password`,
)

var passwordResetSubcategories = []string{"password reset", "password"}

var trustedColleaguePatterns = compileAll(
	`trusted\s*colleague`,
	`trusted\s*contact`,
	`manager`,
	`supervisor`,
	`sent\s*(to|via)\s*manager`,
	`shared\s*with\s*manager`,
	`cc[:\s]*manager`,
)

var passwordDeliveryPatterns = compileAll(
	`(new\s*)?password\s*(sent|shared|provided)`,
	`temporary\s*password`,
	`reset\s*link`,
	`password\s*generator`,
	`norton\s*password`,
)

var changeInstructionPatterns = compileAll(
	`change\s*(the\s*)?password`,
	`update\s*(the\s*)?password`,
	`reset\s*after`,
	`change\s*after\s*\d+\s*hours`,
)

var passwordEvidenceKeywords = []string{
	"password", "trusted", "manager", "colleague", "reset", "sent", "shared",
}

func (r *PasswordHandlingRule) CriterionID() string { return rubric.CriterionPasswordHandling }

func (r *PasswordHandlingRule) Evaluate(t *models.Ticket) models.Verdict {
	if !isPasswordReset(t) {
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.NotApplicableAward(),
			Evidence:    "No password reset indicators found",
			Reasoning:   "Ticket does not involve a password reset",
			Status:      models.VerdictOK,
		}
	}

	fullText := strings.Join([]string{t.Description, t.WorkNotes, t.CloseNotes}, " ")
	hasTrusted := anyMatch(trustedColleaguePatterns, fullText)
	hasDelivery := anyMatch(passwordDeliveryPatterns, fullText)
	hasInstruction := anyMatch(changeInstructionPatterns, fullText)

	evidence := passwordEvidence(t)

	switch {
	case hasTrusted && (hasDelivery || hasInstruction):
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.PassAward(),
			Evidence:    evidence,
			Reasoning:   "Password reset process followed: trusted colleague documented, secure delivery method used",
			Status:      models.VerdictOK,
		}
	case hasTrusted:
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.PassAward(),
			Evidence:    evidence,
			Reasoning:   "Password reset with trusted colleague documented",
			Coaching:    "Consider also documenting password change instructions",
			Status:      models.VerdictOK,
		}
	case hasDelivery || hasInstruction:
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.FailAward(),
			Evidence:    evidence,
			Reasoning: "Password reset without trusted colleague documentation, " +
				"the password may have been sent directly to the affected user",
			Coaching: "CRITICAL: Never send a password directly to the affected user. " +
				"Always use a trusted colleague (manager, supervisor) as intermediary",
			Status: models.VerdictOK,
		}
	default:
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.FailAward(),
			Evidence:    "No password reset process documentation found",
			Reasoning:   "Password reset detected but no process documentation",
			Coaching: "Document the password reset process: " +
				"1) use a trusted colleague for password delivery, " +
				"2) never send to the affected user directly, " +
				"3) instruct the user to change the password",
			Status: models.VerdictOK,
		}
	}
}

func isPasswordReset(t *models.Ticket) bool {
	subcategory := strings.ToLower(t.Subcategory)
	for _, m := range passwordResetSubcategories {
		if strings.Contains(subcategory, m) {
			return true
		}
	}
	fullText := strings.Join([]string{
		t.ShortDescription, t.Description, t.WorkNotes, t.CloseNotes,
	}, " ")
	return anyMatch(passwordResetPatterns, fullText)
}

func passwordEvidence(t *models.Ticket) string {
	fullText := t.Description + "\n" + t.WorkNotes + "\n" + t.CloseNotes

	var lines []string
	for _, line := range strings.Split(fullText, "\n") {
		lower := strings.ToLower(line)
		for _, kw := range passwordEvidenceKeywords {
			if strings.Contains(lower, kw) {
				lines = append(lines, strings.TrimSpace(line))
				break
			}
		}
		if len(lines) == 3 {
			break
		}
	}

	if len(lines) == 0 {
		return "No password process documentation found"
	}
	evidence := strings.Join(lines, " | ")
	if len(evidence) > 200 {
		return evidence[:197] + "..."
	}
	return evidence
}
