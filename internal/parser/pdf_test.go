package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const samplePrintout = `Incident INC4480001
Number: INC4480001
Opened: 3/14/2025 9:30 AM
Opened for: Jane Smith Location: London
Category: Software Subcategory: Outlook
Contact type: Walk-in
Priority: 3
Impact: 3
Urgency: 3
Assignment group: EMEA Onsite Assigned to: Onsite Tech
Configuration item: Outlook MMC
Service: Email Service offering: Mail
Resolution code: Solved (Permanently) Resolved by: Tech
Resolved: 3/14/2025 11:05 AM
Short description:
MARSH - London - Outlook - Email not syncing
Description:
User reports email stopped syncing this morning.
Second line of the description.
Work notes:
Verified identity via OKTA push.
Page 2 of 3
https://example.service-now.com/incident.do
Repaired the mail profile.
Resolution
Resolution notes:
Profile rebuilt, user confirmed mail is flowing.
`

func TestParseText(t *testing.T) {
	p := NewPDFParser(zap.NewNop())

	t.Run("full printout", func(t *testing.T) {
		tk, err := p.parseText(samplePrintout)
		require.NoError(t, err)

		assert.Equal(t, "INC4480001", tk.Number)
		assert.Equal(t, "Jane Smith", tk.OpenedFor)
		assert.Equal(t, "London", tk.Location)
		assert.Equal(t, "Software", tk.Category)
		assert.Equal(t, "Outlook", tk.Subcategory)
		assert.Equal(t, "Walk-in", tk.ContactType)
		assert.Equal(t, "3", tk.Priority)
		assert.Equal(t, "EMEA Onsite", tk.AssignmentGroup)
		assert.Equal(t, "Onsite Tech", tk.AssignedTo)
		assert.Equal(t, "Outlook", tk.CmdbCI)
		assert.Equal(t, "Email", tk.BusinessService)
		assert.Equal(t, "Solved (Permanently)", tk.CloseCode)
		assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), tk.OpenedAt)
		assert.Equal(t, time.Date(2025, 3, 14, 11, 5, 0, 0, time.UTC), tk.ResolvedAt)
		assert.True(t, tk.ClosedAt.IsZero())
	})

	t.Run("sections keep their text and drop page furniture", func(t *testing.T) {
		tk, err := p.parseText(samplePrintout)
		require.NoError(t, err)

		assert.Equal(t, "MARSH - London - Outlook - Email not syncing", tk.ShortDescription)
		assert.Equal(t, "User reports email stopped syncing this morning.\nSecond line of the description.", tk.Description)
		assert.Equal(t, "Verified identity via OKTA push.\nRepaired the mail profile.", tk.WorkNotes)
		assert.Equal(t, "Profile rebuilt, user confirmed mail is flowing.", tk.CloseNotes)
	})

	t.Run("no ticket number", func(t *testing.T) {
		_, err := p.parseText("Some unrelated document\nwith no incident fields")
		assert.ErrorIs(t, err, ErrNoTicketNumber)
	})
}

func TestParsePDFTime(t *testing.T) {
	assert.Equal(t, time.Date(2025, 3, 14, 21, 30, 0, 0, time.UTC), parsePDFTime("3/14/2025 9:30 PM"))
	assert.Equal(t, time.Date(2025, 3, 14, 11, 5, 22, 0, time.UTC), parsePDFTime("3/14/2025 11:05:22 AM"))
	assert.Equal(t, time.Date(2025, 3, 14, 14, 30, 0, 0, time.UTC), parsePDFTime("3/14/2025 14:30"))
	assert.True(t, parsePDFTime("").IsZero())
	assert.True(t, parsePDFTime("yesterday").IsZero())
}
