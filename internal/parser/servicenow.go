// Package parser turns ServiceNow exports (JSON extracts and PDF
// incident printouts) into ticket models.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SamuraiJenkinz/onsitereview/internal/models"
)

// servicenowTimeFormat is the fixed datetime layout in ServiceNow exports.
const servicenowTimeFormat = "2006-01-02 15:04:05"

var (
	ErrNoRecords   = errors.New("export has no records key")
	ErrInvalidJSON = errors.New("invalid ServiceNow JSON")
)

// export is the top-level shape of a ServiceNow JSON extract.
type export struct {
	Records []record `json:"records"`
}

// record carries every field we read; everything in a ServiceNow export
// is a string, booleans and counts included.
type record struct {
	Status string `json:"__status"`

	Number string `json:"number"`
	SysID  string `json:"sys_id"`

	OpenedAt   string `json:"opened_at"`
	ResolvedAt string `json:"resolved_at"`
	ClosedAt   string `json:"closed_at"`

	CallerID   string `json:"caller_id"`
	OpenedBy   string `json:"opened_by"`
	OpenedFor  string `json:"opened_for"`
	AssignedTo string `json:"assigned_to"`
	ResolvedBy string `json:"resolved_by"`
	ClosedBy   string `json:"closed_by"`

	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	ContactType string `json:"contact_type"`
	Priority    string `json:"priority"`
	Impact      string `json:"impact"`
	Urgency     string `json:"urgency"`

	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	WorkNotes        string `json:"work_notes"`
	CloseNotes       string `json:"close_notes"`
	CloseCode        string `json:"close_code"`

	Location        string `json:"location"`
	AssignmentGroup string `json:"assignment_group"`
	BusinessService string `json:"business_service"`
	CmdbCI          string `json:"cmdb_ci"`

	Marsh        string `json:"u_marsh"`
	Mercer       string `json:"u_mercer"`
	GuyCarpenter string `json:"u_guy_carpenter"`
	OliverWyman  string `json:"u_oliver_wyman_group"`
	MMCCorporate string `json:"u_mmc_corporate"`

	ReassignmentCount string `json:"reassignment_count"`
	ReopenCount       string `json:"reopen_count"`
}

// ServiceNowParser parses JSON extracts. Records whose __status is not
// "success" are skipped, not fatal.
type ServiceNowParser struct {
	logger *zap.Logger
}

func NewServiceNowParser(logger *zap.Logger) *ServiceNowParser {
	return &ServiceNowParser{logger: logger}
}

// ParseFile parses a ServiceNow JSON export from disk.
func (p *ServiceNowParser) ParseFile(path string) ([]*models.Ticket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse parses a ServiceNow JSON export from a reader.
func (p *ServiceNowParser) Parse(r io.Reader) ([]*models.Ticket, error) {
	var data export
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if data.Records == nil {
		return nil, ErrNoRecords
	}

	tickets := make([]*models.Ticket, 0, len(data.Records))
	for i, rec := range data.Records {
		if rec.Status != "success" {
			p.logger.Warn("skipping record",
				zap.Int("index", i),
				zap.String("status", rec.Status))
			continue
		}
		tickets = append(tickets, toTicket(rec))
	}

	p.logger.Info("parsed ServiceNow export",
		zap.Int("records", len(data.Records)),
		zap.Int("tickets", len(tickets)))
	return tickets, nil
}

func toTicket(r record) *models.Ticket {
	return &models.Ticket{
		Number: r.Number,
		SysID:  r.SysID,

		OpenedAt:   parseTime(r.OpenedAt),
		ResolvedAt: parseTime(r.ResolvedAt),
		ClosedAt:   parseTime(r.ClosedAt),

		CallerID:   r.CallerID,
		OpenedBy:   r.OpenedBy,
		OpenedFor:  r.OpenedFor,
		AssignedTo: r.AssignedTo,
		ResolvedBy: r.ResolvedBy,
		ClosedBy:   r.ClosedBy,

		Category:    r.Category,
		Subcategory: r.Subcategory,
		ContactType: r.ContactType,
		Priority:    r.Priority,
		Impact:      r.Impact,
		Urgency:     r.Urgency,

		ShortDescription: r.ShortDescription,
		Description:      r.Description,
		WorkNotes:        r.WorkNotes,
		CloseNotes:       r.CloseNotes,
		CloseCode:        r.CloseCode,

		Location:        r.Location,
		AssignmentGroup: r.AssignmentGroup,
		BusinessService: r.BusinessService,
		CmdbCI:          r.CmdbCI,

		Marsh:        parseBool(r.Marsh),
		Mercer:       parseBool(r.Mercer),
		GuyCarpenter: parseBool(r.GuyCarpenter),
		OliverWyman:  parseBool(r.OliverWyman),
		MMCCorporate: parseBool(r.MMCCorporate),

		ReassignmentCount: parseCount(r.ReassignmentCount),
		ReopenCount:       parseCount(r.ReopenCount),
	}
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(servicenowTimeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
