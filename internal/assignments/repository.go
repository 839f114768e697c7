package assignments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Assignment is a per-SDR, per-client, per-month quota record. It overrides
// the client's default targets for the month it names.
type Assignment struct {
	ID                string    `json:"id"`
	SDRID             string    `json:"sdr_id"`
	ClientID          string    `json:"client_id"`
	Month             string    `json:"month"` // "YYYY-MM"
	MonthlySetTarget  int       `json:"monthly_set_target"`
	MonthlyHoldTarget int       `json:"monthly_hold_target"`
	CreatedAt         time.Time `json:"created_at"`
}

type assignmentDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository queries monthly target assignments.
type Repository struct {
	db assignmentDB
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("assignments: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(db assignmentDB) *Repository {
	return &Repository{db: db}
}

// ListForSDRMonth returns the assignments for one SDR in one "YYYY-MM"
// month. An empty result is normal and means no explicit targets exist;
// callers fall back to client defaults.
func (r *Repository) ListForSDRMonth(ctx context.Context, sdrID, month string) ([]Assignment, error) {
	sdrID = strings.TrimSpace(sdrID)
	if sdrID == "" {
		return nil, fmt.Errorf("assignments: sdr_id required")
	}
	query := `
		SELECT id, sdr_id, client_id, month, monthly_set_target, monthly_hold_target, created_at
		FROM assignments
		WHERE sdr_id = $1 AND month = $2
		ORDER BY client_id
	`
	rows, err := r.db.Query(ctx, query, sdrID, month)
	if err != nil {
		return nil, fmt.Errorf("assignments: query sdr month: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// ListForMonth returns every assignment in one month, for agency rollups.
func (r *Repository) ListForMonth(ctx context.Context, month string) ([]Assignment, error) {
	query := `
		SELECT id, sdr_id, client_id, month, monthly_set_target, monthly_hold_target, created_at
		FROM assignments
		WHERE month = $1
		ORDER BY sdr_id, client_id
	`
	rows, err := r.db.Query(ctx, query, month)
	if err != nil {
		return nil, fmt.Errorf("assignments: query month: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Assignment, error) {
	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.SDRID, &a.ClientID, &a.Month, &a.MonthlySetTarget, &a.MonthlyHoldTarget, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("assignments: scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("assignments: iterate: %w", err)
	}
	return out, nil
}

// SumTargets reduces a set of assignments to total set/hold targets.
func SumTargets(list []Assignment) (setTarget, holdTarget int) {
	for _, a := range list {
		setTarget += a.MonthlySetTarget
		holdTarget += a.MonthlyHoldTarget
	}
	return setTarget, holdTarget
}
