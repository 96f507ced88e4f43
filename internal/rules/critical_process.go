package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

// CriticalProcessRule detects critical process involvement (lost/stolen
// devices, VIP support, virus/malware, data privacy, account lockout)
// and verifies the required handling was documented. It is a
// deduction-class criterion:
//
//	PASS - every detected critical process was followed
//	FAIL - a critical process was violated (fixed penalty applies)
//	-20  - VIP ticket filed at the wrong priority
//	N/A  - no critical process involved
//
// Password resets are covered separately by PasswordHandlingRule.
type CriticalProcessRule struct{}

const vipPriorityPenalty = 20

type criticalProcess struct {
	name             string
	patterns         []*regexp.Regexp
	subcategoryMatch []string
}

var criticalProcesses = map[string]criticalProcess{
	"lost_stolen": {
		name: "Lost/Stolen Device",
		patterns: compileAll(
			`\blost\b.*\b(device|laptop|phone|mobile|tablet)\b`,
			`\bstolen\b.*\b(device|laptop|phone|mobile|tablet)\b`,
			`\b(device|laptop|phone|mobile)\b.*\b(lost|stolen|missing)\b`,
		),
		subcategoryMatch: []string{"lost", "stolen"},
	},
	"vip": {
		name: "VIP/Executive Support",
		patterns: compileAll(
			`\bvip\b`,
			`\bexecutive\b`,
			`\bc-suite\b`,
			`\bsenior\s*leadership\b`,
		),
	},
	"virus_malware": {
		name: "Virus/Malware Incident",
		patterns: compileAll(
			`\bvirus\b`,
			`\bmalware\b`,
			`\bransomware\b`,
			`\binfected\b`,
			`\bsuspicious\s*(file|email|activity)\b`,
		),
		subcategoryMatch: []string{"virus", "malware", "security"},
	},
	"data_privacy": {
		name: "Data Privacy/Security Incident",
		patterns: compileAll(
			`data\s*privacy`,
			`security\s*incident`,
			`data\s*breach`,
			`unauthorized\s*access`,
			`pii\s*(exposure|leak)`,
			`gdpr`,
		),
	},
	"account_lockout": {
		name: "Account Lockout",
		patterns: compileAll(
			`account\s*(locked|lockout|disabled)`,
			`locked\s*out`,
		),
		subcategoryMatch: []string{"lockout"},
	},
}

var securityResponsePatterns = compileAll(
	`escalat`,
	`security\s*team`,
	`infosec`,
	`isolated?`,
	`quarantine`,
	`remote\s*wipe`,
	`disabled?\s*(device|account)`,
	`locked?\s*(device|account)`,
	`scan`,
	`unlock`,
	`reset`,
)

var vipPriorities = map[string]bool{"1": true, "2": true}

func (r *CriticalProcessRule) CriterionID() string { return rubric.CriterionCriticalProcess }

func (r *CriticalProcessRule) Evaluate(t *models.Ticket) models.Verdict {
	detected := detectCriticalProcesses(t)
	if len(detected) == 0 {
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.NotApplicableAward(),
			Evidence:    "No critical process indicators found",
			Reasoning:   "Ticket does not involve a critical process",
			Status:      models.VerdictOK,
		}
	}

	for _, key := range detected {
		if v, violated := r.verify(t, key); violated {
			return v
		}
	}

	names := make([]string, len(detected))
	for i, key := range detected {
		names[i] = criticalProcesses[key].name
	}
	return models.Verdict{
		CriterionID: r.CriterionID(),
		Award:       models.PassAward(),
		Evidence:    "Critical process(es): " + strings.Join(names, ", "),
		Reasoning:   "All critical process requirements were followed correctly",
		Status:      models.VerdictOK,
	}
}

// detectCriticalProcesses returns the applicable process keys in a
// stable order so repeated evaluation is deterministic.
func detectCriticalProcesses(t *models.Ticket) []string {
	fullText := strings.ToLower(strings.Join([]string{
		t.ShortDescription, t.Description, t.WorkNotes, t.CloseNotes, t.Subcategory,
	}, " "))
	subcategory := strings.ToLower(t.Subcategory)

	var detected []string
	for key, p := range criticalProcesses {
		matched := false
		for _, m := range p.subcategoryMatch {
			if strings.Contains(subcategory, m) {
				matched = true
				break
			}
		}
		if !matched {
			for _, pattern := range p.patterns {
				if pattern.MatchString(fullText) {
					matched = true
					break
				}
			}
		}
		if matched {
			detected = append(detected, key)
		}
	}
	sort.Strings(detected)
	return detected
}

func (r *CriticalProcessRule) verify(t *models.Ticket, key string) (models.Verdict, bool) {
	if key == "vip" {
		if vipPriorities[t.Priority] {
			return models.Verdict{}, false
		}
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.DeductionAward(vipPriorityPenalty),
			Evidence:    "VIP ticket with priority " + t.Priority,
			Reasoning:   "VIP ticket should have priority 1/2, but has priority " + t.Priority,
			Coaching:    "Set appropriate priority for VIP/executive support tickets",
			Status:      models.VerdictOK,
		}, true
	}

	// Every other process requires a documented security response.
	fullText := strings.Join([]string{t.Description, t.WorkNotes, t.CloseNotes}, " ")
	if anyMatch(securityResponsePatterns, fullText) {
		return models.Verdict{}, false
	}

	name := criticalProcesses[key].name
	return models.Verdict{
		CriterionID: r.CriterionID(),
		Award:       models.FailAward(),
		Evidence:    name + " incident",
		Reasoning:   name + " requires a documented security response but none was found",
		Coaching: "For " + strings.ToLower(name) + ": 1) contain the affected system/account, " +
			"2) escalate to the security team, 3) document all actions taken",
		Status: models.VerdictOK,
	}, true
}
