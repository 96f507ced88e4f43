// Package reports renders evaluation results into PDF scorecards: one
// per ticket plus a batch summary.
package reports

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/SamuraiJenkinz/onsitereview/internal/batch"
	"github.com/SamuraiJenkinz/onsitereview/internal/models"
)

type rgb struct{ r, g, b int }

var bandColors = map[models.PerformanceBand]rgb{
	models.BandBlue:   {59, 130, 246},
	models.BandGreen:  {34, 197, 94},
	models.BandYellow: {234, 179, 8},
	models.BandRed:    {239, 68, 68},
	models.BandPurple: {168, 85, 247},
}

var grey = rgb{107, 114, 128}

// Generator writes PDF reports.
type Generator struct {
	logger *zap.Logger
}

func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// WriteTicketReport renders one ticket's scorecard into dir and returns
// the written path.
func (g *Generator) WriteTicketReport(result *models.EvaluationResult, dir string) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	g.header(pdf, fmt.Sprintf("Ticket Review: %s", result.TicketNumber))
	g.scoreLine(pdf, result)

	pdf.Ln(4)
	g.sectionTitle(pdf, "Criterion Breakdown")
	for _, cs := range result.CriterionScores {
		g.criterionRow(pdf, cs)
	}

	if result.AutoFail {
		pdf.Ln(2)
		pdf.SetTextColor(239, 68, 68)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.MultiCell(0, 5, "AUTOMATIC FAIL: "+result.AutoFailReason, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	if len(result.Strengths) > 0 {
		pdf.Ln(3)
		g.sectionTitle(pdf, "Strengths")
		g.bulletList(pdf, result.Strengths)
	}
	if len(result.Improvements) > 0 {
		pdf.Ln(3)
		g.sectionTitle(pdf, "Improvements")
		g.bulletList(pdf, result.Improvements)
	}

	path := filepath.Join(dir, result.TicketNumber+"_review.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write ticket report: %w", err)
	}
	g.logger.Debug("wrote ticket report", zap.String("path", path))
	return path, nil
}

// WriteBatchReport renders the batch summary.
func (g *Generator) WriteBatchReport(res *batch.Result, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	g.header(pdf, "Batch Evaluation Summary")

	s := res.Summary
	pdf.SetFont("Helvetica", "", 10)
	stats := []string{
		fmt.Sprintf("Tickets evaluated: %d (errors: %d)", s.Count, s.Errored),
		fmt.Sprintf("Average score: %.1f", s.AverageScore),
		fmt.Sprintf("Average percentage: %.1f%%", s.AveragePercentage),
		fmt.Sprintf("Pass rate: %.1f%%", s.PassRate),
		fmt.Sprintf("Duration: %s", res.Duration.Round(time.Second)),
	}
	for _, line := range stats {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	g.sectionTitle(pdf, "Band Distribution")
	for _, band := range models.Bands {
		count := s.BandDistribution[band]
		if count == 0 {
			continue
		}
		c := bandColor(band)
		pdf.SetFillColor(c.r, c.g, c.b)
		pdf.CellFormat(8, 5, "", "", 0, "L", true, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("  %s: %d", band, count), "", 1, "L", false, 0, "")
	}

	if len(s.CommonIssues) > 0 {
		pdf.Ln(3)
		g.sectionTitle(pdf, "Common Issues")
		g.bulletList(pdf, s.CommonIssues)
	}

	pdf.Ln(3)
	g.sectionTitle(pdf, "Results")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(35, 6, "Ticket", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Score", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Percent", "B", 0, "L", false, 0, "")
	pdf.CellFormat(25, 6, "Band", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Result", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, r := range res.Results {
		pdf.CellFormat(35, 5, r.TicketNumber, "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, fmt.Sprintf("%d/%d", r.TotalScore, r.MaxScore), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, fmt.Sprintf("%.1f%%", r.Percentage), "", 0, "L", false, 0, "")
		pdf.CellFormat(25, 5, string(r.Band), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, passLabel(r.Passed), "", 1, "L", false, 0, "")
	}
	for _, e := range res.Errors {
		pdf.CellFormat(35, 5, e.TicketNumber, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, "ERROR: "+e.Reason, "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write batch report: %w", err)
	}
	g.logger.Info("wrote batch report", zap.String("path", path))
	return nil
}

func (g *Generator) header(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(grey.r, grey.g, grey.b)
	pdf.CellFormat(0, 5, "Generated "+time.Now().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)
}

func (g *Generator) scoreLine(pdf *fpdf.Fpdf, r *models.EvaluationResult) {
	c := bandColor(r.Band)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(c.r, c.g, c.b)
	pdf.CellFormat(0, 8,
		fmt.Sprintf("%d/%d (%.1f%%)  %s  %s", r.TotalScore, r.MaxScore, r.Percentage, r.Band, passLabel(r.Passed)),
		"", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	if !r.Passed {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(grey.r, grey.g, grey.b)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d points below the pass mark", r.PointsToPass()), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

func (g *Generator) sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
}

func (g *Generator) criterionRow(pdf *fpdf.Fpdf, cs models.CriterionScore) {
	pdf.SetFont("Helvetica", "B", 9)
	if cs.IsPerfect() {
		pdf.SetTextColor(34, 197, 94)
	}
	label := fmt.Sprintf("%s: %d/%d (%.0f%%)", cs.CriterionName, cs.PointsAwarded, cs.MaxPoints, cs.Percentage())
	if cs.Status != models.VerdictOK {
		label += " (" + string(cs.Status) + ")"
	}
	pdf.CellFormat(0, 5, label, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
	if cs.Reasoning != "" {
		pdf.MultiCell(0, 4, cs.Reasoning, "", "L", false)
	}
	if cs.Coaching != "" {
		pdf.SetTextColor(grey.r, grey.g, grey.b)
		pdf.MultiCell(0, 4, "Coaching: "+cs.Coaching, "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(1)
}

func (g *Generator) bulletList(pdf *fpdf.Fpdf, items []string) {
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		pdf.MultiCell(0, 5, "- "+item, "", "L", false)
	}
}

func bandColor(b models.PerformanceBand) rgb {
	if c, ok := bandColors[b]; ok {
		return c
	}
	return grey
}

func passLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}
