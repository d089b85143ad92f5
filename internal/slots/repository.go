package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the slots package needs. The booking
// resolver requires Begin; tests inject a pgxmock pool.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads persisted slots from Postgres.
type Repository struct {
	pool PgxPool
}

func NewRepository(pool PgxPool) *Repository {
	if pool == nil {
		panic("slots: pgx pool required")
	}
	return &Repository{pool: pool}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Slot, error) {
	var s Slot
	query := `
		SELECT id, doctor_id, pattern_id, start_time, end_time, status, created_at, updated_at
		FROM slots WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.DoctorID, &s.PatternID, &s.StartTime, &s.EndTime, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("slots: load: %w", err)
	}
	return &s, nil
}

// BookedStartsBetween returns the RFC3339 start instants of the doctor's
// booked slots in [from, to), keyed for the materializer's exclusion check.
// Instants are rendered in from's location so they line up with the walk.
func (r *Repository) BookedStartsBetween(ctx context.Context, doctorID int64, from, to time.Time) (map[string]struct{}, error) {
	query := `
		SELECT start_time FROM slots
		WHERE doctor_id = $1 AND status = $2 AND start_time >= $3 AND start_time < $4`
	rows, err := r.pool.Query(ctx, query, doctorID, StatusBooked, from, to)
	if err != nil {
		return nil, fmt.Errorf("slots: booked starts: %w", err)
	}
	defer rows.Close()

	loc := from.Location()
	out := make(map[string]struct{})
	for rows.Next() {
		var start time.Time
		if err := rows.Scan(&start); err != nil {
			return nil, fmt.Errorf("slots: scan booked start: %w", err)
		}
		out[start.In(loc).Format(time.RFC3339)] = struct{}{}
	}
	return out, rows.Err()
}
