package models

import "math"

// PerformanceBand is the coarse performance category derived from the
// percentage score. Thresholds are inclusive at the lower edge.
type PerformanceBand string

const (
	BandBlue   PerformanceBand = "blue"   // >= 95%
	BandGreen  PerformanceBand = "green"  // >= 90%
	BandYellow PerformanceBand = "yellow" // >= 75%
	BandRed    PerformanceBand = "red"    // >= 50%
	BandPurple PerformanceBand = "purple" // < 50%
)

// Bands lists every band in descending order.
var Bands = []PerformanceBand{BandBlue, BandGreen, BandYellow, BandRed, BandPurple}

// BandFromPercentage maps a percentage score to its performance band.
func BandFromPercentage(percentage float64) PerformanceBand {
	switch {
	case percentage >= 95:
		return BandBlue
	case percentage >= 90:
		return BandGreen
	case percentage >= 75:
		return BandYellow
	case percentage >= 50:
		return BandRed
	default:
		return BandPurple
	}
}

// PassThreshold is the fixed pass mark, as a percentage. It is not
// configurable per template.
const PassThreshold = 90.0

// RoundPercentage rounds to one decimal place for display and banding.
func RoundPercentage(p float64) float64 {
	return math.Round(p*10) / 10
}

// CriterionScore is the display form of one verdict: points resolved
// against the criterion definition.
type CriterionScore struct {
	CriterionID   string          `json:"criterion_id"`
	CriterionName string          `json:"criterion_name"`
	MaxPoints     int             `json:"max_points"`
	PointsAwarded int             `json:"points_awarded"`
	Evidence      string          `json:"evidence"`
	Reasoning     string          `json:"reasoning"`
	Coaching      string          `json:"coaching,omitempty"`
	Status        VerdictStatus   `json:"status"`
}

// Percentage of the criterion's maximum that was awarded.
func (c CriterionScore) Percentage() float64 {
	if c.MaxPoints == 0 {
		return 100.0
	}
	return RoundPercentage(float64(c.PointsAwarded) / float64(c.MaxPoints) * 100)
}

// IsPerfect reports whether the full points were awarded.
func (c CriterionScore) IsPerfect() bool { return c.PointsAwarded == c.MaxPoints }

// AppliedDeduction records one penalty subtracted from the base score.
type AppliedDeduction struct {
	CriterionID string `json:"criterion_id"`
	Points      int    `json:"points"` // positive magnitude
}

// EvaluationResult is the complete, immutable outcome for one ticket.
// It deliberately carries no timestamps: re-evaluating the same ticket
// with the same verdicts must produce an identical result.
type EvaluationResult struct {
	TicketNumber string `json:"ticket_number"`
	Template     string `json:"template"`

	TotalScore int `json:"total_score"`
	MaxScore   int `json:"max_score"`

	Percentage float64         `json:"percentage"`
	Band       PerformanceBand `json:"band"`
	Passed     bool            `json:"passed"`

	CriterionScores []CriterionScore   `json:"criterion_scores"`
	Deductions      []AppliedDeduction `json:"deductions,omitempty"`
	AutoFail        bool               `json:"auto_fail"`
	AutoFailReason  string             `json:"auto_fail_reason,omitempty"`

	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// CriterionScore returns the score for a criterion id, if present.
func (r *EvaluationResult) CriterionScore(criterionID string) (CriterionScore, bool) {
	for _, c := range r.CriterionScores {
		if c.CriterionID == criterionID {
			return c, true
		}
	}
	return CriterionScore{}, false
}

// PointsToPass is how many points short of the pass mark this result is.
func (r *EvaluationResult) PointsToPass() int {
	threshold := int(math.Ceil(PassThreshold / 100 * float64(r.MaxScore)))
	if r.TotalScore >= threshold {
		return 0
	}
	return threshold - r.TotalScore
}
