package patients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists patients in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Patient, error) {
	var p Patient
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM patients WHERE id = $1`, id).Scan(
		&p.ID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: load: %w", err)
	}
	return &p, nil
}

// Exists reports whether the patient id is known, without loading the row.
func (r *Repository) Exists(ctx context.Context, id int64) error {
	var found bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&found)
	if err != nil {
		return fmt.Errorf("patients: exists: %w", err)
	}
	if !found {
		return ErrPatientNotFound
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	p := Patient{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO patients (name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		p.Name, p.Email, p.Phone, now).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("patients: insert: %w", err)
	}
	return &p, nil
}
