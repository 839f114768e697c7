package clients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrClientNotFound is returned when a client id does not exist.
var ErrClientNotFound = errors.New("client not found")

// Repository reads client rows.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a client repository over the shared pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListBySDR returns the clients assigned to an SDR, name-ordered.
func (r *Repository) ListBySDR(ctx context.Context, sdrID string) ([]Client, error) {
	query := `SELECT id, sdr_id, name, monthly_set_target, monthly_hold_target, created_at
		FROM clients WHERE sdr_id = $1 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, sdrID)
	if err != nil {
		return nil, fmt.Errorf("clients: query for sdr %s: %w", sdrID, err)
	}
	defer rows.Close()
	return collect(rows)
}

// GetByID returns a single client or ErrClientNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Client, error) {
	query := `SELECT id, sdr_id, name, monthly_set_target, monthly_hold_target, created_at
		FROM clients WHERE id = $1`
	var c Client
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.SDRID, &c.Name, &c.MonthlySetTarget, &c.MonthlyHoldTarget, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("clients: get %s: %w", id, err)
	}
	return &c, nil
}

func collect(rows *sql.Rows) ([]Client, error) {
	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.SDRID, &c.Name, &c.MonthlySetTarget, &c.MonthlyHoldTarget, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("clients: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clients: iterate: %w", err)
	}
	return out, nil
}
