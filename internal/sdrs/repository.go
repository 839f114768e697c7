package sdrs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSDRNotFound is returned when an SDR id does not exist.
var ErrSDRNotFound = errors.New("sdr not found")

// SDR is a Sales Development Representative on the agency roster.
type SDR struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository reads the SDR roster.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an SDR repository over the shared pool.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns the active roster, name-ordered. Manager rollups and
// the cache warmer iterate this set.
func (r *Repository) ListActive(ctx context.Context) ([]SDR, error) {
	query := `SELECT id, full_name, email, active, created_at
		FROM sdrs WHERE active = TRUE ORDER BY full_name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sdrs: query active: %w", err)
	}
	defer rows.Close()

	var out []SDR
	for rows.Next() {
		var s SDR
		if err := rows.Scan(&s.ID, &s.FullName, &s.Email, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sdrs: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sdrs: iterate: %w", err)
	}
	return out, nil
}

// GetByID returns a single SDR or ErrSDRNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*SDR, error) {
	query := `SELECT id, full_name, email, active, created_at FROM sdrs WHERE id = $1`
	var s SDR
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.FullName, &s.Email, &s.Active, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSDRNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sdrs: get %s: %w", id, err)
	}
	return &s, nil
}
