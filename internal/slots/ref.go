package slots

import (
	"strconv"
	"strings"
	"time"
)

// SlotRef identifies a bookable slot at the booking boundary: either a
// persisted row's numeric key or a virtual instance encoded as
// "{patternID}-{RFC3339 start}". It is resolved once from the raw identifier
// and never re-parsed downstream.
type SlotRef interface {
	slotRef()
}

// RealRef points at a persisted slot row.
type RealRef struct {
	SlotID int64
}

// VirtualRef points at a materialized-but-unpersisted interval.
type VirtualRef struct {
	PatternID int64
	Start     time.Time
}

func (RealRef) slotRef()    {}
func (VirtualRef) slotRef() {}

// ParseSlotRef dispatches on identifier shape. The separator split happens on
// the FIRST dash only: RFC3339 instants themselves contain dashes.
func ParseSlotRef(raw string) (SlotRef, error) {
	if i := strings.Index(raw, "-"); i >= 0 {
		patternID, err := strconv.ParseInt(raw[:i], 10, 64)
		if err != nil {
			return nil, ErrInvalidSlotRef
		}
		start, err := time.Parse(time.RFC3339, raw[i+1:])
		if err != nil {
			return nil, ErrInvalidSlotTime
		}
		return VirtualRef{PatternID: patternID, Start: start}, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, ErrInvalidSlotRef
	}
	return RealRef{SlotID: id}, nil
}
