package doctors

import "time"

// Doctor is a practitioner who owns recurring availability patterns and slots.
type Doctor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateDoctorRequest is the payload for registering a doctor.
type CreateDoctorRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
}

// Validate checks required fields.
func (r *CreateDoctorRequest) Validate() error {
	if r.Name == "" {
		return ErrInvalidName
	}
	if r.Email == "" {
		return ErrMissingEmail
	}
	return nil
}
