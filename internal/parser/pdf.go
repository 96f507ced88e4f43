package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
)

var ErrNoTicketNumber = errors.New("no ticket number found in PDF")

// pdfTimeLayouts covers the date renderings seen in ServiceNow PDF
// printouts.
var pdfTimeLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// Single-line field labels. Each pattern captures the value up to the
// next known label on the line.
var pdfFieldPatterns = map[string]*regexp.Regexp{
	"number":           regexp.MustCompile(`(?im)Number:\s*(INC\d+)`),
	"opened_for":       regexp.MustCompile(`(?im)Opened for:\s*([^\n]+?)(?:\s*(?:Location:|Contact type:)|$)`),
	"location":         regexp.MustCompile(`(?im)Location:\s*([^\n]+?)(?:\s*(?:Category:|State:)|$)`),
	"category":         regexp.MustCompile(`(?im)Category:\s*([^\n]+?)(?:\s*(?:Subcategory:|On hold)|$)`),
	"subcategory":      regexp.MustCompile(`(?im)Subcategory:\s*([^\n]+?)(?:\s*(?:Service:|Impact:)|$)`),
	"contact_type":     regexp.MustCompile(`(?im)Contact type:\s*(\w+(?:[-\s]\w+)?)`),
	"priority":         regexp.MustCompile(`(?im)Priority:\s*(\d+)`),
	"impact":           regexp.MustCompile(`(?im)Impact:\s*(\d+)`),
	"urgency":          regexp.MustCompile(`(?im)Urgency:\s*(\d+)`),
	"assigned_to":      regexp.MustCompile(`(?im)Assigned to:\s*([^\n]+?)(?:\s*Short|$)`),
	"assignment_group": regexp.MustCompile(`(?im)Assignment group:\s*([^\n]+?)(?:\s*Assigned to:|$)`),
	"cmdb_ci":          regexp.MustCompile(`(?im)Configuration item:\s*([^\n]+?)(?:\s*(?:MMC|Universal)|$)`),
	"business_service": regexp.MustCompile(`(?im)\bService:\s*([^\n]+?)(?:\s*Service offering:|$)`),
	"close_code":       regexp.MustCompile(`(?im)Resolution code:\s*([^\n]+?)(?:\s*Resolved by:|$)`),
	"opened_at":        regexp.MustCompile(`(?im)Opened:\s*(\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}(?::\d{2})?\s*(?:[AP]M)?)`),
	"resolved_at":      regexp.MustCompile(`(?im)Resolved:\s*(\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}(?::\d{2})?\s*(?:[AP]M)?)`),
	"closed_at":        regexp.MustCompile(`(?im)Closed:\s*(\d{1,2}/\d{1,2}/\d{4}\s+\d{1,2}:\d{2}(?::\d{2})?\s*(?:[AP]M)?)`),
}

// Multi-line sections run from their label to the next section label.
var pdfSectionPatterns = map[string]*regexp.Regexp{
	"short_description": regexp.MustCompile(`(?is)Short description:\s*\n(.+?)(?:\nDescription:|$)`),
	// Anchored to a line start so it cannot match inside "Short description:".
	"description": regexp.MustCompile(`(?is)(?:^|\n)Description:\s*\n(.+?)(?:\n(?:Updated:|Notes|Work notes:|Additional comments:)|$)`),
	"work_notes":  regexp.MustCompile(`(?is)Work notes:\s*\n(.+?)(?:\n(?:Variables|Related|Resolution)|$)`),
	"close_notes": regexp.MustCompile(`(?is)Resolution notes:\s*\n(.+?)(?:\n(?:Major Incident|Related|Variables)|$)`),
}

// PDFParser extracts one ticket from a ServiceNow incident PDF printout.
type PDFParser struct {
	logger *zap.Logger
}

func NewPDFParser(logger *zap.Logger) *PDFParser {
	return &PDFParser{logger: logger}
}

// ParseFile parses a PDF export from disk.
func (p *PDFParser) ParseFile(path string) (*models.Ticket, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return p.fromReader(r)
}

// Parse parses PDF bytes.
func (p *PDFParser) Parse(data []byte) (*models.Ticket, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return p.fromReader(r)
}

func (p *PDFParser) fromReader(r *pdf.Reader) (*models.Ticket, error) {
	text, err := extractText(r)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return p.parseText(text)
}

func extractText(r *pdf.Reader) (string, error) {
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (p *PDFParser) parseText(text string) (*models.Ticket, error) {
	fields := make(map[string]string, len(pdfFieldPatterns)+len(pdfSectionPatterns))
	for name, re := range pdfFieldPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			fields[name] = strings.TrimSpace(m[1])
		}
	}
	for name, re := range pdfSectionPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			fields[name] = cleanSection(m[1])
		}
	}

	if fields["number"] == "" {
		return nil, ErrNoTicketNumber
	}
	p.logger.Debug("parsed pdf ticket",
		zap.String("number", fields["number"]),
		zap.Int("fields", len(fields)))

	return &models.Ticket{
		Number:           fields["number"],
		OpenedAt:         parsePDFTime(fields["opened_at"]),
		ResolvedAt:       parsePDFTime(fields["resolved_at"]),
		ClosedAt:         parsePDFTime(fields["closed_at"]),
		OpenedFor:        fields["opened_for"],
		AssignedTo:       fields["assigned_to"],
		Category:         fields["category"],
		Subcategory:      fields["subcategory"],
		ContactType:      fields["contact_type"],
		Priority:         fields["priority"],
		Impact:           fields["impact"],
		Urgency:          fields["urgency"],
		ShortDescription: fields["short_description"],
		Description:      fields["description"],
		WorkNotes:        fields["work_notes"],
		CloseNotes:       fields["close_notes"],
		CloseCode:        fields["close_code"],
		Location:         fields["location"],
		AssignmentGroup:  fields["assignment_group"],
		BusinessService:  fields["business_service"],
		CmdbCI:           fields["cmdb_ci"],
	}, nil
}

// cleanSection strips page furniture that leaks into extracted sections.
func cleanSection(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "Page ") || strings.HasPrefix(trimmed, "https://") {
			continue
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}

func parsePDFTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range pdfTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
