package models

import "fmt"

// AwardKind discriminates the value carried by an Award.
type AwardKind int

const (
	// AwardNumeric is a bounded non-negative point award.
	AwardNumeric AwardKind = iota
	// AwardPass is the PASS sentinel for policy criteria.
	AwardPass
	// AwardFail is the FAIL sentinel. On a deduction criterion it means
	// "subtract the fixed penalty"; on an auto-fail criterion it zeroes
	// the whole ticket.
	AwardFail
	// AwardNotApplicable marks a criterion that does not apply.
	AwardNotApplicable
	// AwardDeduction carries a custom negative magnitude.
	AwardDeduction
)

// Award is the value assigned to one criterion: either numeric points,
// one of the PASS/FAIL/N-A sentinels, or a custom negative deduction.
type Award struct {
	Kind   AwardKind
	Points int
}

func NumericAward(points int) Award { return Award{Kind: AwardNumeric, Points: points} }
func PassAward() Award              { return Award{Kind: AwardPass} }
func FailAward() Award              { return Award{Kind: AwardFail} }
func NotApplicableAward() Award     { return Award{Kind: AwardNotApplicable} }

// DeductionAward records a custom negative magnitude. The stored points
// are always negative.
func DeductionAward(points int) Award {
	if points > 0 {
		points = -points
	}
	return Award{Kind: AwardDeduction, Points: points}
}

func (a Award) String() string {
	switch a.Kind {
	case AwardPass:
		return "PASS"
	case AwardFail:
		return "FAIL"
	case AwardNotApplicable:
		return "N/A"
	case AwardDeduction:
		return fmt.Sprintf("%d", a.Points)
	default:
		return fmt.Sprintf("%d", a.Points)
	}
}

// VerdictStatus distinguishes a trustworthy verdict from one built out of
// a partially recovered response or a failed evaluation.
type VerdictStatus string

const (
	// VerdictOK is a fully parsed, trustworthy verdict.
	VerdictOK VerdictStatus = "ok"
	// VerdictDegraded was recovered from a malformed response; its score
	// still counts, but it carries lower confidence.
	VerdictDegraded VerdictStatus = "degraded"
	// VerdictErrored means the evaluation itself failed. The score is
	// zero, but reporting must not present it as a genuine zero.
	VerdictErrored VerdictStatus = "errored"
)

// Verdict is the atomic unit of evaluation: one criterion's outcome for
// one ticket. It is structurally identical whether produced by a
// deterministic rule or by the narrative gateway, and is never mutated
// after creation.
type Verdict struct {
	CriterionID string
	Award       Award
	Evidence    string
	Reasoning   string
	Coaching    string
	Status      VerdictStatus
}

// Errored reports whether this verdict records an evaluation failure
// rather than a genuine score.
func (v Verdict) Errored() bool { return v.Status == VerdictErrored }

// ErrorVerdict builds the zero-score verdict used when an evaluation
// fails. It is explicitly flagged so callers can tell it apart from a
// genuine zero.
func ErrorVerdict(criterionID, reason string) Verdict {
	return Verdict{
		CriterionID: criterionID,
		Award:       NumericAward(0),
		Evidence:    "",
		Reasoning:   "Evaluation failed: " + reason,
		Coaching:    "Unable to evaluate due to error. Please review manually.",
		Status:      VerdictErrored,
	}
}
