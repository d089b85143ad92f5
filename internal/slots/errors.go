package slots

import "errors"

var (
	// ErrSlotNotFound is returned when a persisted slot is not found
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotUnavailable is returned when booking a real slot that is not available
	ErrSlotUnavailable = errors.New("slot is not available")

	// ErrSlotAlreadyBooked is returned when a virtual instant has already been booked
	ErrSlotAlreadyBooked = errors.New("slot is already booked")

	// ErrInvalidSlotRef is returned when a slot identifier is neither a numeric
	// key nor a virtual id
	ErrInvalidSlotRef = errors.New("invalid slot id")

	// ErrInvalidSlotTime is returned when a virtual id's start instant does not parse
	ErrInvalidSlotTime = errors.New("invalid slot time format")
)
