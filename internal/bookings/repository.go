package bookings

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by a pgx pool and by a pgx transaction; the booking
// resolver inserts through its transaction so the slot transition and the
// booking row commit together.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides persistence helpers for bookings.
type Repository struct {
	pool Querier
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool Querier) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{pool: pool}
}

// Insert creates a booking row through q, which may be a transaction. When q
// is nil the repository's own pool is used.
func (r *Repository) Insert(ctx context.Context, q Querier, slotID, patientID, doctorID int64, reason string) (*Booking, error) {
	if q == nil {
		q = r.pool
	}
	b := Booking{
		SlotID:    slotID,
		PatientID: patientID,
		DoctorID:  doctorID,
		Reason:    reason,
		Reference: uuid.NewString(),
	}
	query := `
		INSERT INTO bookings (slot_id, patient_id, doctor_id, reason, reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, b.SlotID, b.PatientID, b.DoctorID, b.Reason, b.Reference).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("bookings: insert: %w", err)
	}
	return &b, nil
}

// ListForPatient returns a patient's bookings, newest first.
func (r *Repository) ListForPatient(ctx context.Context, patientID int64) ([]Booking, error) {
	query := `
		SELECT id, slot_id, patient_id, doctor_id, reason, reference, created_at, updated_at
		FROM bookings
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("bookings: list for patient: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.SlotID, &b.PatientID, &b.DoctorID, &b.Reason, &b.Reference, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("bookings: scan: %w", err)
		}
		out = append(out, b)
	}
	if out == nil {
		out = []Booking{}
	}
	return out, rows.Err()
}
