package rules

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

// ShortDescriptionRule validates the 4-part short description format:
//
//	[LoB] - [Location] - [System] - [Brief Description]
//
// Each part passes its own sub-check; the score maps the number of
// correct parts through a fixed descending table, never a linear
// interpolation: 4 -> 8, 3 -> 6, 2 -> 4, 1 -> 2, 0 -> 0.
type ShortDescriptionRule struct{}

const shortDescriptionMaxPoints = 8

// Fixed line-of-business vocabulary. Exact matches win over prefix
// matches when both could apply.
var lobVocabulary = map[string]bool{
	"MARSH":         true,
	"MERCER":        true,
	"MMC":           true,
	"MMC-NCL":       true,
	"GC":            true,
	"GUY CARPENTER": true,
	"OW":            true,
	"OLIVER WYMAN":  true,
}

// Known application/system names. Anything else of reasonable length is
// still accepted; the set shortcuts the common cases.
var knownSystems = map[string]bool{
	"VDI": true, "LAN": true, "AD": true, "ACTIVE DIRECTORY": true,
	"OUTLOOK": true, "TEAMS": true, "OFFICE": true, "O365": true,
	"SHAREPOINT": true, "ONEDRIVE": true, "EMAIL": true, "LAPTOP": true,
	"DESKTOP": true, "MOBILE": true, "PHONE": true, "VPN": true,
	"CITRIX": true, "SAP": true, "SERVICENOW": true, "WORKDAY": true,
	"CONCUR": true, "ZOOM": true, "WEBEX": true, "NETWORK": true,
	"PRINTER": true, "MFA": true, "OKTA": true,
}

// Generic phrases that do not count as a brief description.
var briefDenylist = map[string]bool{
	"issue":       true,
	"problem":     true,
	"error":       true,
	"not working": true,
	"broken":      true,
	"help":        true,
	"urgent":      true,
	"assistance":  true,
}

const briefMaxWords = 8

var partScoreTable = map[int]int{4: 8, 3: 6, 2: 4, 1: 2, 0: 0}

func (r *ShortDescriptionRule) CriterionID() string { return rubric.CriterionShortDescription }

func (r *ShortDescriptionRule) Evaluate(t *models.Ticket) models.Verdict {
	shortDesc := strings.TrimSpace(t.ShortDescription)
	if shortDesc == "" {
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.NumericAward(0),
			Evidence:    "Empty short description",
			Reasoning:   "Short description is empty or missing",
			Coaching:    "Always provide a short description following the format: [LoB] - [Location] - [System] - [Brief Description]",
			Status:      models.VerdictOK,
		}
	}

	lob, location, system, brief := splitShortDescription(shortDesc)

	var issues []string
	correct := 0
	if ok, issue := checkLoB(lob, t); ok {
		correct++
	} else {
		issues = append(issues, issue)
	}
	if ok, issue := checkLocation(location); ok {
		correct++
	} else {
		issues = append(issues, issue)
	}
	if ok, issue := checkSystem(system); ok {
		correct++
	} else {
		issues = append(issues, issue)
	}
	if ok, issue := checkBrief(brief); ok {
		correct++
	} else {
		issues = append(issues, issue)
	}

	score := partScoreTable[correct]

	if len(issues) == 0 {
		return models.Verdict{
			CriterionID: r.CriterionID(),
			Award:       models.NumericAward(score),
			Evidence:    fmt.Sprintf("%q", shortDesc),
			Reasoning: fmt.Sprintf("All 4 parts present and correctly formatted: LoB=%s, Location=%s, System=%s, Brief=%s",
				lob, location, system, brief),
			Status: models.VerdictOK,
		}
	}
	return models.Verdict{
		CriterionID: r.CriterionID(),
		Award:       models.NumericAward(score),
		Evidence:    fmt.Sprintf("%q", shortDesc),
		Reasoning:   "Issues found: " + strings.Join(issues, "; "),
		Coaching:    coachingFor(issues),
		Status:      models.VerdictOK,
	}
}

// splitShortDescription decomposes the field into its four segments.
// The standard separator is " - "; a bare "-" is tolerated. A compound
// "MMC-NCL" prefix counts as a single LoB segment.
func splitShortDescription(s string) (lob, location, system, brief string) {
	var segments []string
	if strings.Contains(s, " - ") {
		segments = strings.Split(s, " - ")
	} else {
		segments = strings.Split(s, "-")
	}
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	// Merge a compound LoB such as "MMC-NCL" split by the bare separator.
	if len(segments) >= 2 {
		compound := strings.ToUpper(segments[0] + "-" + segments[1])
		if lobVocabulary[compound] {
			merged := []string{segments[0] + "-" + segments[1]}
			segments = append(merged, segments[2:]...)
		}
	}

	if len(segments) >= 1 {
		lob = segments[0]
	}
	if len(segments) >= 2 {
		location = segments[1]
	}
	if len(segments) >= 3 {
		system = segments[2]
	}
	if len(segments) >= 4 {
		brief = strings.Join(segments[3:], " - ")
	}
	return lob, location, system, brief
}

func checkLoB(lob string, t *models.Ticket) (bool, string) {
	if lob == "" {
		return false, "Missing Line of Business (LoB)"
	}
	upper := strings.ToUpper(lob)
	// Exact vocabulary match wins outright.
	if lobVocabulary[upper] {
		return true, ""
	}
	for known := range lobVocabulary {
		if strings.HasPrefix(known, upper) || strings.HasPrefix(upper, known) {
			return true, ""
		}
	}
	// Last resort: the ticket's own line-of-business flags. An
	// unresolved line of business never matches.
	if ticketLoB := strings.ToUpper(t.LineOfBusiness()); ticketLoB != "UNKNOWN" {
		if strings.Contains(ticketLoB, upper) || strings.Contains(upper, ticketLoB) {
			return true, ""
		}
	}
	return false, fmt.Sprintf("Unrecognized LoB: %q", lob)
}

// checkLocation accepts a bare place name: at least two characters,
// leading capital, letters and spaces only.
func checkLocation(location string) (bool, string) {
	if location == "" {
		return false, "Missing location"
	}
	runes := []rune(location)
	if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
		return false, fmt.Sprintf("Invalid location: %q", location)
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
			return false, fmt.Sprintf("Invalid location: %q", location)
		}
	}
	return true, ""
}

func checkSystem(system string) (bool, string) {
	if system == "" {
		return false, "Missing application/system"
	}
	if knownSystems[strings.ToUpper(system)] {
		return true, ""
	}
	if len(system) > 50 {
		return false, fmt.Sprintf("Invalid application: %q", system)
	}
	return true, ""
}

func checkBrief(brief string) (bool, string) {
	if brief == "" {
		return false, "Missing brief description"
	}
	words := strings.Fields(brief)
	if len(words) > briefMaxWords {
		return false, fmt.Sprintf("Brief description too long (%d words, max %d)", len(words), briefMaxWords)
	}
	if briefDenylist[strings.ToLower(strings.TrimSpace(brief))] {
		return false, fmt.Sprintf("Brief description too generic: %q", brief)
	}
	return true, ""
}

func coachingFor(issues []string) string {
	parts := []string{"Follow the 4-part format: [LoB] - [Location] - [System] - [Brief Description]"}
	for _, issue := range issues {
		switch {
		case strings.Contains(issue, "LoB"):
			parts = append(parts, "Use standard LoB prefixes: MARSH, MERCER, MMC, MMC-NCL, GC, OW")
		case strings.Contains(strings.ToLower(issue), "location"):
			parts = append(parts, "Include the office/city location")
		case strings.Contains(strings.ToLower(issue), "application"):
			parts = append(parts, "Specify the affected application/system (e.g. VDI, LAN, AD)")
		case strings.Contains(strings.ToLower(issue), "brief"):
			parts = append(parts, "Provide a concise, specific description of the issue")
		}
	}
	return strings.Join(parts, ". ")
}
