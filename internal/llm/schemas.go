package llm

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
	"github.com/SamuraiJenkinz/onsitereview/internal/rubric"
)

var ErrUnparsableResponse = errors.New("unparsable assessment response")

// assessment is the wire schema the model is asked to produce. Score and
// evidence are raw because models drift on types: scores arrive as
// numbers or quoted strings, evidence as an array or a single string.
type assessment struct {
	Score     json.RawMessage `json:"score"`
	Evidence  json.RawMessage `json:"evidence"`
	Reasoning string          `json:"reasoning"`
	Coaching  string          `json:"coaching"`
}

// parseAssessment decodes a model response, repairing malformed JSON if
// needed. The returned status is degraded when the response required
// repair or came back structurally incomplete.
func parseAssessment(raw string) (assessment, models.VerdictStatus, error) {
	status := models.VerdictOK

	var a assessment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		repaired, repErr := jsonrepair.JSONRepair(raw)
		if repErr != nil {
			return assessment{}, models.VerdictErrored, ErrUnparsableResponse
		}
		if err := json.Unmarshal([]byte(repaired), &a); err != nil {
			return assessment{}, models.VerdictErrored, ErrUnparsableResponse
		}
		status = models.VerdictDegraded
	}

	if len(a.Score) == 0 {
		return assessment{}, models.VerdictErrored, ErrUnparsableResponse
	}
	if a.Reasoning == "" || len(a.Evidence) == 0 {
		status = models.VerdictDegraded
	}
	return a, status, nil
}

// verdictFrom resolves a parsed assessment into a verdict for the given
// criterion, clamping the score into the criterion's range.
func verdictFrom(c rubric.Criterion, a assessment, status models.VerdictStatus) models.Verdict {
	score, ok := parseScore(a.Score)
	if !ok {
		return models.ErrorVerdict(c.ID, "response carried no usable score")
	}
	if score < 0 {
		score = 0
	}
	if score > c.MaxPoints {
		score = c.MaxPoints
	}
	return models.Verdict{
		CriterionID: c.ID,
		Award:       models.NumericAward(score),
		Evidence:    parseEvidence(a.Evidence),
		Reasoning:   a.Reasoning,
		Coaching:    a.Coaching,
		Status:      status,
	}
}

// parseScore accepts a JSON number, a quoted number, or a quoted float.
func parseScore(raw json.RawMessage) (int, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

// parseEvidence accepts a string array or a bare string.
func parseEvidence(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, " | ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
