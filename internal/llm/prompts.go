package llm

import (
	"fmt"
	"strings"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

const reviewerRole = "You are an expert IT service desk quality reviewer for onsite support tickets."

// criterionRubrics maps a narrative criterion id to the rubric text the
// model scores against. Point levels that scale with the template (half
// and full marks) use %d placeholders filled from the criterion.
var criterionRubrics = map[string]string{
	rubric.CriterionCategory: `Evaluate whether the Category field correctly matches the type of issue.

SCORING RUBRIC (%d points):
- %d points: Category correctly matches the type of issue (e.g., Software, Hardware, Network, Inquiry/Help)
- 0 points: Category does not match the incident`,

	rubric.CriterionSubcategory: `Evaluate whether the Subcategory field correctly narrows the category.

SCORING RUBRIC (%d points):
- %d points: Subcategory correctly narrows the category (e.g., Operating System, Email, Printing)
- 0 points: Subcategory does not match or is too generic`,

	rubric.CriterionService: `Evaluate whether the correct business service was selected.

SCORING RUBRIC (%d points):
- %d points: Correct business service selected for the incident
- 2 points: Service is related but a better/more specific service was available
- 0 points: Incorrect service selected or no service set`,

	rubric.CriterionConfigItem: `Evaluate whether the correct Configuration Item was identified.

SCORING RUBRIC (%d points):
- %d points: Correct CI (device, application, system) identified
- 5 points: CI is related but a more specific/appropriate CI was available
- 0 points: Incorrect CI selected or no CI set`,

	rubric.CriterionIncidentNotes: `Evaluate the quality of incident documentation (description, work notes).

SCORING RUBRIC (%d points):
- %d points (Meets Standards): All relevant information documented clearly in appropriate fields. Includes: contact information, working location, issue details, troubleshooting steps, error messages, affected systems.
- %d points (Partially Meets Standards): Some information documented but with gaps, OR information is in the wrong fields (e.g., troubleshooting steps in description instead of work notes).
- 0 points (Does Not Meet Standards): No meaningful notes, or very limited documentation that doesn't describe the issue or actions taken.
- %d points (N/A): Quick fix where all relevant information is captured in the resolution notes (e.g., simple password reset with proper documentation in close notes).

EVALUATION GUIDELINES:
- Check the description for contact info, working location, a clear issue statement, and relevant details
- Check the work notes for troubleshooting steps, actions taken, and outcomes
- Information should be in the appropriate field (description for initial info, work notes for ongoing work)`,

	rubric.CriterionIncidentHandling: `Evaluate whether the incident was handled correctly.

SCORING RUBRIC (%d points):
- %d points (Correct Handling): Incident was resolved appropriately at the service desk level, OR routed to the correct resolver group when escalation was needed.
- 0 points (Incorrect Handling): First Contact Resolution (FCR) opportunity was missed, OR routed to the wrong team, OR resolved prematurely without proper confirmation.
- %d points (N/A): Handling assessment is not applicable for this ticket type.

EVALUATION GUIDELINES:
- Consider whether the analyst exhausted appropriate troubleshooting before escalating
- Check that the routing group matches the type of issue
- Simple issues (password reset, account unlock) should be resolved at first contact
- Complex issues (hardware failure, network infrastructure) may legitimately need escalation`,

	rubric.CriterionResolutionNotes: `Evaluate the quality of the resolution notes (close notes).

SCORING RUBRIC (%d points):
- %d points (Meets Standards): Resolution notes include BOTH a summary of what was done to resolve the issue AND confirmation that the colleague confirmed the issue is resolved.
- %d points (Partially Meets Standards): Missing EITHER the resolution summary OR the user confirmation (but has one of them).
- 0 points (Does Not Meet Standards): Missing BOTH resolution summary AND user confirmation, or close notes are empty/meaningless.
- %d points (N/A): Ticket is still Work In Progress, was routed to a different team for resolution, or was resolved via an automated tool.

EVALUATION GUIDELINES:
- Look for explicit user confirmation phrases: "user confirmed", "colleague verified", "working now", "agreed to close"
- Resolution notes should be clear enough to reproduce the fix if the issue recurs`,

	rubric.CriterionSpellingGrammar: `Evaluate the spelling and grammar across the ticket's free-text fields.

SCORING RUBRIC (%d points):
- %d points: Text is professionally written with at most trivial typos
- 0 points: Repeated spelling or grammar errors that reduce readability`,
}

// halfRubrics lists the criteria whose middle level is half marks.
var halfRubrics = map[string]bool{
	rubric.CriterionIncidentNotes:   true,
	rubric.CriterionResolutionNotes: true,
}

// naRubrics lists the criteria whose rubric offers a full-marks N/A level.
var naRubrics = map[string]bool{
	rubric.CriterionIncidentNotes:    true,
	rubric.CriterionIncidentHandling: true,
	rubric.CriterionResolutionNotes:  true,
}

// BuildMessages assembles the two-message prompt for one narrative
// criterion. Unknown criteria get an error so a rubric/prompt mismatch
// surfaces immediately.
func BuildMessages(c rubric.Criterion, t *models.Ticket) ([]Message, error) {
	text, ok := criterionRubrics[c.ID]
	if !ok {
		return nil, fmt.Errorf("%w: no prompt for %q", rubric.ErrUnknownCriterion, c.ID)
	}

	system := reviewerRole + " " + fillRubric(c, text) +
		"\n\nRespond with a JSON object containing your evaluation."

	user := fmt.Sprintf(`Evaluate this ticket:

%s

Respond with this exact JSON structure:
{
    "score": <points awarded, 0 to %d>,
    "evidence": ["quote1", "quote2"],
    "reasoning": "explanation of score",
    "coaching": "specific coaching recommendation, or empty string if none"
}`, ticketContext(t), c.MaxPoints)

	return []Message{SystemMessage(system), UserMessage(user)}, nil
}

// fillRubric substitutes the criterion's point levels into the rubric
// text. The placeholder order is: header max, full marks, then the
// optional half level and N/A level.
func fillRubric(c rubric.Criterion, text string) string {
	args := []any{c.MaxPoints, c.MaxPoints}
	if halfRubrics[c.ID] {
		args = append(args, c.MaxPoints/2)
	}
	if naRubrics[c.ID] {
		args = append(args, c.MaxPoints)
	}
	return fmt.Sprintf(text, args...)
}

func ticketContext(t *models.Ticket) string {
	parts := []string{
		"Ticket Number: " + t.Number,
		"Contact Type: " + t.ContactType,
		"Category: " + t.Category,
		"Subcategory: " + t.Subcategory,
		"Business Service: " + orNotSet(t.BusinessService),
		"Configuration Item: " + orNotSet(t.CmdbCI),
		"Opened For: " + orNotSet(t.OpenedFor),
		"Short Description: " + t.ShortDescription,
		"",
		"=== DESCRIPTION ===",
		orEmpty(t.Description),
		"",
		"=== WORK NOTES ===",
		orEmpty(t.WorkNotes),
		"",
		"=== CLOSE NOTES ===",
		orEmpty(t.CloseNotes),
	}
	return strings.Join(parts, "\n")
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func orEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}
