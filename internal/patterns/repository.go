package patterns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs. Tests inject a
// pgxmock pool through it.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists recurring patterns in Postgres.
type Repository struct {
	pool PgxPool
}

func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("patterns: pgx pool required")
	}
	return &Repository{pool: pool}
}

const patternColumns = `id, doctor_id, start_time, end_time, duration, type, week_days, start_date, end_date, is_active, created_at, updated_at`

// Create inserts a pattern from a validated draft. The draft's start time
// doubles as the anchor date.
func (r *Repository) Create(ctx context.Context, doctorID int64, d *Draft) (*Pattern, error) {
	query := `
		INSERT INTO recurring_patterns
			(doctor_id, start_time, end_time, duration, type, week_days, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING ` + patternColumns
	row := r.pool.QueryRow(ctx, query,
		doctorID, d.StartTime, d.EndTime, d.Duration, d.Type,
		toInt32s(d.WeekDays), d.StartTime, d.EndDate)
	p, err := scanPattern(row)
	if err != nil {
		return nil, fmt.Errorf("patterns: insert: %w", err)
	}
	return p, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Pattern, error) {
	query := `SELECT ` + patternColumns + ` FROM recurring_patterns WHERE id = $1`
	p, err := scanPattern(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatternNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patterns: load: %w", err)
	}
	return p, nil
}

// ListActiveForDoctor returns the doctor's active patterns ordered by
// creation. The availability read path matcher-filters this set per day.
func (r *Repository) ListActiveForDoctor(ctx context.Context, doctorID int64) ([]Pattern, error) {
	query := `
		SELECT ` + patternColumns + `
		FROM recurring_patterns
		WHERE doctor_id = $1 AND is_active = true
		ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("patterns: list active: %w", err)
	}
	defer rows.Close()

	var out []Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("patterns: scan: %w", err)
		}
		out = append(out, *p)
	}
	if out == nil {
		out = []Pattern{}
	}
	return out, rows.Err()
}

// SetActive toggles is_active and returns the updated pattern.
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) (*Pattern, error) {
	query := `
		UPDATE recurring_patterns
		SET is_active = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + patternColumns
	p, err := scanPattern(r.pool.QueryRow(ctx, query, id, active))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatternNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patterns: set active: %w", err)
	}
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM recurring_patterns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patterns: delete: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrPatternNotFound
	}
	return nil
}

func scanPattern(row pgx.Row) (*Pattern, error) {
	var p Pattern
	var weekDays []int32
	var endDate *time.Time
	if err := row.Scan(
		&p.ID, &p.DoctorID, &p.StartTime, &p.EndTime, &p.Duration, &p.Type,
		&weekDays, &p.StartDate, &endDate, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.WeekDays = toInts(weekDays)
	p.EndDate = endDate
	return &p, nil
}

func toInt32s(days []int) []int32 {
	out := make([]int32, len(days))
	for i, d := range days {
		out[i] = int32(d)
	}
	return out
}

func toInts(days []int32) []int {
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}
