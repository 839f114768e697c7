package meetings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrMeetingNotFound is returned when a meeting id does not exist.
var ErrMeetingNotFound = errors.New("meeting not found")

const meetingColumns = `
	m.id, m.sdr_id, m.client_id, c.name,
	m.scheduled_date, m.created_at, m.timezone, m.status,
	m.held_at, m.confirmed_at, m.no_show, m.no_longer_interested, m.icp_status,
	m.contact_full_name, m.contact_email, m.contact_phone,
	m.company, m.title, m.linkedin_page, m.notes`

// Repository reads and writes meeting rows. Reads return snapshots; the
// classifier and aggregator never touch the database themselves.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a meeting repository over the shared connection pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListBySDR returns every meeting booked by an SDR, client name joined in.
// Order is not guaranteed by the contract; callers must not rely on it.
func (r *Repository) ListBySDR(ctx context.Context, sdrID string) ([]Meeting, error) {
	query := `SELECT` + meetingColumns + `
		FROM meetings m
		LEFT JOIN clients c ON c.id = m.client_id
		WHERE m.sdr_id = $1
		ORDER BY m.scheduled_date DESC NULLS LAST`
	return r.list(ctx, query, sdrID)
}

// ListByClient returns every meeting booked for a client.
func (r *Repository) ListByClient(ctx context.Context, clientID string) ([]Meeting, error) {
	query := `SELECT` + meetingColumns + `
		FROM meetings m
		LEFT JOIN clients c ON c.id = m.client_id
		WHERE m.client_id = $1
		ORDER BY m.scheduled_date DESC NULLS LAST`
	return r.list(ctx, query, clientID)
}

// ListAll returns every meeting in the store, for agency-wide rollups.
func (r *Repository) ListAll(ctx context.Context) ([]Meeting, error) {
	query := `SELECT` + meetingColumns + `
		FROM meetings m
		LEFT JOIN clients c ON c.id = m.client_id
		ORDER BY m.scheduled_date DESC NULLS LAST`
	return r.list(ctx, query)
}

// GetByID returns a single meeting or ErrMeetingNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Meeting, error) {
	query := `SELECT` + meetingColumns + `
		FROM meetings m
		LEFT JOIN clients c ON c.id = m.client_id
		WHERE m.id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMeetingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("meetings: get %s: %w", id, err)
	}
	return m, nil
}

// CreateMeetingParams carries the fields an SDR supplies when booking.
type CreateMeetingParams struct {
	SDRID           string     `json:"sdr_id"`
	ClientID        string     `json:"client_id"`
	ScheduledDate   *time.Time `json:"scheduled_date"`
	Timezone        string     `json:"timezone"`
	Status          Status     `json:"status"`
	ContactFullName string     `json:"contact_full_name"`
	ContactEmail    string     `json:"contact_email"`
	ContactPhone    string     `json:"contact_phone"`
	Company         string     `json:"company"`
	Title           string     `json:"title"`
	LinkedinPage    string     `json:"linkedin_page"`
	Notes           string     `json:"notes"`
}

// Validate checks required booking fields.
func (p *CreateMeetingParams) Validate() error {
	if strings.TrimSpace(p.SDRID) == "" {
		return errors.New("sdr_id is required")
	}
	if strings.TrimSpace(p.ClientID) == "" {
		return errors.New("client_id is required")
	}
	switch p.Status {
	case "", StatusPending, StatusConfirmed:
	default:
		return fmt.Errorf("invalid status %q", p.Status)
	}
	return nil
}

// Create inserts a meeting row and returns it with generated fields set.
func (r *Repository) Create(ctx context.Context, p *CreateMeetingParams) (*Meeting, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("meetings: create: %w", err)
	}
	status := p.Status
	if status == "" {
		status = StatusPending
	}
	id := uuid.NewString()
	createdAt := time.Now().UTC()

	query := `INSERT INTO meetings (
			id, sdr_id, client_id, scheduled_date, created_at, timezone, status,
			contact_full_name, contact_email, contact_phone,
			company, title, linkedin_page, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	if _, err := r.db.ExecContext(ctx, query,
		id, p.SDRID, p.ClientID, p.ScheduledDate, createdAt, p.Timezone, string(status),
		p.ContactFullName, p.ContactEmail, p.ContactPhone,
		p.Company, p.Title, p.LinkedinPage, p.Notes,
	); err != nil {
		return nil, fmt.Errorf("meetings: insert: %w", err)
	}

	return &Meeting{
		ID:              id,
		SDRID:           p.SDRID,
		ClientID:        p.ClientID,
		ScheduledDate:   p.ScheduledDate,
		CreatedAt:       &createdAt,
		Timezone:        p.Timezone,
		Status:          status,
		ContactFullName: p.ContactFullName,
		ContactEmail:    p.ContactEmail,
		ContactPhone:    p.ContactPhone,
		Company:         p.Company,
		Title:           p.Title,
		LinkedinPage:    p.LinkedinPage,
		Notes:           p.Notes,
	}, nil
}

// UpdateMeetingParams is a partial update; nil fields are left untouched.
// Drag-and-drop status changes in the UI land here and overwrite
// status/held_at/no_show/confirmed_at directly — the classifier reads
// whatever state results, with no memory of what came before.
type UpdateMeetingParams struct {
	Status             *Status    `json:"status,omitempty"`
	ScheduledDate      *time.Time `json:"scheduled_date,omitempty"`
	Timezone           *string    `json:"timezone,omitempty"`
	HeldAt             *time.Time `json:"held_at,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	NoShow             *bool      `json:"no_show,omitempty"`
	NoLongerInterested *bool      `json:"no_longer_interested,omitempty"`
	ICPStatus          *string    `json:"icp_status,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	ClearHeldAt        bool       `json:"clear_held_at,omitempty"`
}

// Update applies a partial update and returns ErrMeetingNotFound when the
// id does not exist.
func (r *Repository) Update(ctx context.Context, id string, p *UpdateMeetingParams) error {
	var sets []string
	var args []any
	argNum := 1

	add := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.ScheduledDate != nil {
		add("scheduled_date", *p.ScheduledDate)
	}
	if p.Timezone != nil {
		add("timezone", *p.Timezone)
	}
	if p.HeldAt != nil {
		add("held_at", *p.HeldAt)
	} else if p.ClearHeldAt {
		sets = append(sets, "held_at = NULL")
	}
	if p.ConfirmedAt != nil {
		add("confirmed_at", *p.ConfirmedAt)
	}
	if p.NoShow != nil {
		add("no_show", *p.NoShow)
	}
	if p.NoLongerInterested != nil {
		add("no_longer_interested", *p.NoLongerInterested)
	}
	if p.ICPStatus != nil {
		add("icp_status", *p.ICPStatus)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE meetings SET %s WHERE id = $%d", strings.Join(sets, ", "), argNum)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("meetings: update %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMeetingNotFound
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]Meeting, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("meetings: query: %w", err)
	}
	defer rows.Close()

	var out []Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("meetings: scan: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("meetings: iterate: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (*Meeting, error) {
	var (
		m           Meeting
		clientName  sql.NullString
		scheduled   sql.NullTime
		createdAt   sql.NullTime
		timezone    sql.NullString
		status      string
		heldAt      sql.NullTime
		confirmedAt sql.NullTime
		icpStatus   sql.NullString
		contact     [7]sql.NullString
	)
	if err := row.Scan(
		&m.ID, &m.SDRID, &m.ClientID, &clientName,
		&scheduled, &createdAt, &timezone, &status,
		&heldAt, &confirmedAt, &m.NoShow, &m.NoLongerInterested, &icpStatus,
		&contact[0], &contact[1], &contact[2],
		&contact[3], &contact[4], &contact[5], &contact[6],
	); err != nil {
		return nil, err
	}

	m.Status = Status(status)
	m.Timezone = timezone.String
	if clientName.Valid {
		m.ClientName = &clientName.String
	}
	if scheduled.Valid {
		t := scheduled.Time.UTC()
		m.ScheduledDate = &t
	}
	if createdAt.Valid {
		t := createdAt.Time.UTC()
		m.CreatedAt = &t
	}
	if heldAt.Valid {
		t := heldAt.Time.UTC()
		m.HeldAt = &t
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time.UTC()
		m.ConfirmedAt = &t
	}
	if icpStatus.Valid {
		m.ICPStatus = &icpStatus.String
	}
	m.ContactFullName = contact[0].String
	m.ContactEmail = contact[1].String
	m.ContactPhone = contact[2].String
	m.Company = contact[3].String
	m.Title = contact[4].String
	m.LinkedinPage = contact[5].String
	m.Notes = contact[6].String
	return &m, nil
}
