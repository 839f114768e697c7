// Package export serializes classified meeting lists to CSV and parses the
// same column set back, for the dashboard's download/upload round trip.
// encoding/csv handles quoting, so names containing commas or quotes
// survive the round trip intact.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/outboundhq/salesops-platform/internal/dashboard"
	"github.com/outboundhq/salesops-platform/internal/meetings"
)

// Column is a selectable CSV column.
type Column string

const (
	ColSDR          Column = "sdr"
	ColClient       Column = "client"
	ColContactName  Column = "contact_name"
	ColContactEmail Column = "contact_email"
	ColContactPhone Column = "contact_phone"
	ColCompany      Column = "company"
	ColTitle        Column = "title"
	ColDate         Column = "date"
	ColStatus       Column = "status"
	ColNotes        Column = "notes"
)

// DefaultColumns is the column set the dashboard exports when the caller
// selects nothing.
var DefaultColumns = []Column{
	ColSDR, ColClient, ColContactName, ColContactEmail, ColContactPhone,
	ColDate, ColStatus, ColNotes,
}

var knownColumns = map[Column]bool{
	ColSDR: true, ColClient: true, ColContactName: true, ColContactEmail: true,
	ColContactPhone: true, ColCompany: true, ColTitle: true, ColDate: true,
	ColStatus: true, ColNotes: true,
}

// dateLayout matches the formatted date the dashboard displays.
const dateLayout = "2006-01-02 15:04"

// ParseColumns parses a comma-separated column selection, falling back to
// DefaultColumns when the selection is empty. Unknown columns are an error
// so a typo does not silently drop a field.
func ParseColumns(selection string) ([]Column, error) {
	if strings.TrimSpace(selection) == "" {
		return DefaultColumns, nil
	}
	var cols []Column
	for _, raw := range strings.Split(selection, ",") {
		col := Column(strings.ToLower(strings.TrimSpace(raw)))
		if col == "" {
			continue
		}
		if !knownColumns[col] {
			return nil, fmt.Errorf("export: unknown column %q", col)
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return DefaultColumns, nil
	}
	return cols, nil
}

// WriteMeetings writes a classified meeting list as CSV with a header row.
// sdrName labels every row; the meeting's display timezone formats the
// scheduled date when the zone name resolves, UTC otherwise.
func WriteMeetings(w io.Writer, sdrName string, list []dashboard.ClassifiedMeeting, cols []Column) error {
	if len(cols) == 0 {
		cols = DefaultColumns
	}
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = string(col)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, m := range list {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = fieldValue(sdrName, m, col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

func fieldValue(sdrName string, m dashboard.ClassifiedMeeting, col Column) string {
	switch col {
	case ColSDR:
		return sdrName
	case ColClient:
		if m.ClientName != nil {
			return *m.ClientName
		}
		return ""
	case ColContactName:
		return m.ContactFullName
	case ColContactEmail:
		return m.ContactEmail
	case ColContactPhone:
		return m.ContactPhone
	case ColCompany:
		return m.Company
	case ColTitle:
		return m.Title
	case ColDate:
		return formatScheduled(m.ScheduledDate, m.Timezone)
	case ColStatus:
		return string(m.Bucket)
	case ColNotes:
		return m.Notes
	}
	return ""
}

func formatScheduled(t *time.Time, zone string) string {
	if t == nil {
		return ""
	}
	if zone != "" {
		if loc, err := time.LoadLocation(zone); err == nil {
			return t.In(loc).Format(dateLayout)
		}
	}
	return t.UTC().Format(dateLayout)
}

// Row is one parsed import/export row keyed by column.
type Row map[Column]string

// ParseMeetings reads CSV produced by WriteMeetings (or a hand-built sheet
// with the same header names) back into rows. The header row decides the
// column order; unknown header names are an error.
func ParseMeetings(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("export: read header: %w", err)
	}

	cols := make([]Column, len(header))
	for i, name := range header {
		col := Column(strings.ToLower(strings.TrimSpace(name)))
		if !knownColumns[col] {
			return nil, fmt.Errorf("export: unknown header column %q", name)
		}
		cols[i] = col
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("export: read row: %w", err)
		}
		row := Row{}
		for i, value := range record {
			if i < len(cols) {
				row[cols[i]] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ScheduledDate parses the row's formatted date in the given zone,
// returning nil (not an error) when the cell is blank or unparseable —
// malformed spreadsheet dates degrade to a NULL scheduled_date.
func (r Row) ScheduledDate(zone string) *time.Time {
	raw := strings.TrimSpace(r[ColDate])
	if raw == "" {
		return nil
	}
	loc := time.UTC
	if zone != "" {
		if l, err := time.LoadLocation(zone); err == nil {
			loc = l
		}
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Status maps the row's status label to a booking status. Bucket labels
// from exports collapse to the underlying status; anything unrecognized
// imports as pending.
func (r Row) Status() meetings.Status {
	switch strings.ToLower(strings.TrimSpace(r[ColStatus])) {
	case string(meetings.StatusConfirmed), "held":
		return meetings.StatusConfirmed
	default:
		return meetings.StatusPending
	}
}
