package bookings

import "time"

// Booking records a patient claiming a slot. It pairs with a slot whose
// status is booked at creation time, and the pairing is permanent: bookings
// are immutable fact records with no unbooking path.
type Booking struct {
	ID        int64     `json:"id"`
	SlotID    int64     `json:"slot_id"`
	PatientID int64     `json:"patient_id"`
	DoctorID  int64     `json:"doctor_id"`
	Reason    string    `json:"reason"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
