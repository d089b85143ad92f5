package slots

import "time"

// Slot statuses. A persisted slot only ever moves available -> booked.
const (
	StatusAvailable = "available"
	StatusBooked    = "booked"
)

// Slot is a persisted concrete appointment interval. Rows exist only for
// intervals that have been booked at least once (or were created directly);
// materialized-but-never-booked intervals live solely as VirtualSlot values.
type Slot struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctor_id"`
	PatternID *int64    `json:"pattern_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VirtualSlot is a computed-on-demand bookable interval with no persisted
// row, identified by its origin pattern and start instant.
type VirtualSlot struct {
	VirtualID string    `json:"virtual_id"`
	DoctorID  int64     `json:"doctor_id"`
	PatternID int64     `json:"pattern_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    string    `json:"status"`
}
