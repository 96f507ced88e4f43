package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleExport = `{
  "records": [
    {
      "__status": "success",
      "number": "INC4479113",
      "sys_id": "abc123",
      "opened_at": "2025-03-14 09:30:00",
      "resolved_at": "2025-03-14 11:05:22",
      "closed_at": "",
      "caller_id": "Jane Smith",
      "opened_by": "John Doe",
      "opened_for": "Jane Smith",
      "assigned_to": "Onsite Tech",
      "category": "Software",
      "subcategory": "Outlook",
      "contact_type": "phone",
      "priority": "3",
      "impact": "3",
      "urgency": "3",
      "short_description": "MARSH - London - Outlook - Email not syncing",
      "description": "User reports email stopped syncing this morning.",
      "work_notes": "Verified identity via OKTA push. Repaired profile.",
      "close_notes": "Profile rebuilt, user confirmed mail flowing.",
      "close_code": "Solved (Permanently)",
      "location": "London",
      "assignment_group": "EMEA Onsite",
      "business_service": "Email",
      "cmdb_ci": "Outlook",
      "u_marsh": "true",
      "u_mercer": "false",
      "reassignment_count": "1",
      "reopen_count": ""
    },
    {
      "__status": "failure",
      "number": "INC0000000"
    }
  ]
}`

func TestParse(t *testing.T) {
	p := NewServiceNowParser(zap.NewNop())

	t.Run("maps fields and skips failed records", func(t *testing.T) {
		tickets, err := p.Parse(strings.NewReader(sampleExport))
		require.NoError(t, err)
		require.Len(t, tickets, 1)

		tk := tickets[0]
		assert.Equal(t, "INC4479113", tk.Number)
		assert.Equal(t, "abc123", tk.SysID)
		assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), tk.OpenedAt)
		assert.True(t, tk.ClosedAt.IsZero())
		assert.True(t, tk.IsResolved())
		assert.Equal(t, "Jane Smith", tk.OpenedFor)
		assert.Equal(t, "phone", tk.ContactType)
		assert.Equal(t, "MARSH - London - Outlook - Email not syncing", tk.ShortDescription)
		assert.True(t, tk.Marsh)
		assert.False(t, tk.Mercer)
		assert.Equal(t, 1, tk.ReassignmentCount)
		assert.Zero(t, tk.ReopenCount)
	})

	t.Run("missing records key", func(t *testing.T) {
		_, err := p.Parse(strings.NewReader(`{"result": []}`))
		assert.ErrorIs(t, err, ErrNoRecords)
	})

	t.Run("empty records is a valid empty export", func(t *testing.T) {
		tickets, err := p.Parse(strings.NewReader(`{"records": []}`))
		require.NoError(t, err)
		assert.Empty(t, tickets)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := p.Parse(strings.NewReader(`{"records": [`))
		assert.ErrorIs(t, err, ErrInvalidJSON)
	})
}

func TestParseHelpers(t *testing.T) {
	t.Run("time", func(t *testing.T) {
		assert.Equal(t, time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC), parseTime("2025-01-02 15:04:05"))
		assert.True(t, parseTime("").IsZero())
		assert.True(t, parseTime("not a date").IsZero())
	})

	t.Run("bool", func(t *testing.T) {
		assert.True(t, parseBool("true"))
		assert.True(t, parseBool("TRUE"))
		assert.False(t, parseBool("false"))
		assert.False(t, parseBool(""))
	})

	t.Run("count", func(t *testing.T) {
		assert.Equal(t, 3, parseCount("3"))
		assert.Zero(t, parseCount(""))
		assert.Zero(t, parseCount("n/a"))
	})
}
