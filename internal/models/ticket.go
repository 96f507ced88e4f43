package models

import (
	"strings"
	"time"
)

// Ticket is a parsed ServiceNow incident record. It is produced by the
// parser and treated as read-only by every evaluation component.
type Ticket struct {
	// Identifiers
	Number string
	SysID  string

	// Timestamps
	OpenedAt   time.Time
	ResolvedAt time.Time
	ClosedAt   time.Time

	// People (sys_id or display references)
	CallerID   string
	OpenedBy   string
	OpenedFor  string
	AssignedTo string
	ResolvedBy string
	ClosedBy   string

	// Classification
	Category    string
	Subcategory string
	ContactType string
	Priority    string
	Impact      string
	Urgency     string

	// Content
	ShortDescription string
	Description      string
	WorkNotes        string
	CloseNotes       string
	CloseCode        string

	// Business context
	Location        string
	AssignmentGroup string
	BusinessService string
	CmdbCI          string

	// Line of business flags
	Marsh        bool
	Mercer       bool
	GuyCarpenter bool
	OliverWyman  bool
	MMCCorporate bool

	// Metadata
	ReassignmentCount int
	ReopenCount       int
}

var lobPrefixes = map[string]string{
	"MARSH":         "Marsh",
	"MERCER":        "Mercer",
	"GC":            "Guy Carpenter",
	"GUY CARPENTER": "Guy Carpenter",
	"OW":            "Oliver Wyman",
	"OLIVER WYMAN":  "Oliver Wyman",
	"MMC":           "MMC Corporate",
	"MMC-NCL":       "MMC Corporate",
}

// LineOfBusiness resolves the line of business from the boolean flags,
// falling back to the short description prefix.
func (t *Ticket) LineOfBusiness() string {
	switch {
	case t.Marsh:
		return "Marsh"
	case t.Mercer:
		return "Mercer"
	case t.GuyCarpenter:
		return "Guy Carpenter"
	case t.OliverWyman:
		return "Oliver Wyman"
	case t.MMCCorporate:
		return "MMC Corporate"
	}

	if prefix, _, ok := strings.Cut(t.ShortDescription, " - "); ok {
		if lob, found := lobPrefixes[strings.ToUpper(strings.TrimSpace(prefix))]; found {
			return lob
		}
	}
	parts := strings.Split(t.ShortDescription, "-")
	if len(parts) >= 2 {
		compound := strings.ToUpper(strings.TrimSpace(parts[0]) + "-" + strings.TrimSpace(parts[1]))
		if lob, found := lobPrefixes[compound]; found {
			return lob
		}
	}
	if len(parts) >= 1 {
		if lob, found := lobPrefixes[strings.ToUpper(strings.TrimSpace(parts[0]))]; found {
			return lob
		}
	}
	return "Unknown"
}

// IsResolved reports whether a resolution timestamp is present.
func (t *Ticket) IsResolved() bool {
	return !t.ResolvedAt.IsZero()
}
