package doctors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists doctors in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Doctor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, specialty, email, created_at, updated_at
		FROM doctors ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Specialty, &d.Email, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("doctors: scan: %w", err)
		}
		out = append(out, d)
	}
	if out == nil {
		out = []Doctor{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	return out, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	var d Doctor
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, specialty, email, created_at, updated_at
		FROM doctors WHERE id = $1`, id).Scan(
		&d.ID, &d.Name, &d.Specialty, &d.Email, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: load: %w", err)
	}
	return &d, nil
}

func (r *Repository) Create(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	d := Doctor{
		Name:      req.Name,
		Specialty: req.Specialty,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO doctors (name, specialty, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		d.Name, d.Specialty, d.Email, now).Scan(&d.ID)
	if err != nil {
		return nil, fmt.Errorf("doctors: insert: %w", err)
	}
	return &d, nil
}
