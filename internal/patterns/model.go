package patterns

import "time"

// Recurrence types. A one-time pattern applies to a single date, daily and
// weekly patterns repeat from their anchor date until end_date (if any).
const (
	TypeOneTime = "one-time"
	TypeDaily   = "daily"
	TypeWeekly  = "weekly"
)

// Pattern is a doctor-owned rule describing a repeating (or single) window of
// availability. Only the wall-clock hour and minute of StartTime/EndTime are
// meaningful when slots are materialized; the date component of StartTime is
// the anchor date.
type Pattern struct {
	ID        int64      `json:"id"`
	DoctorID  int64      `json:"doctor_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Duration  int        `json:"duration"`
	Type      string     `json:"type"`
	WeekDays  []int      `json:"week_days"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ISOWeekday returns the ISO-8601 weekday code, Monday=1 through Sunday=7.
// Pattern storage, the API, and matching all use this encoding.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// AppliesOn reports whether the pattern produces slots on the given day.
// The day is expected at midnight in the process timezone; dates are compared
// in that location. Pure function, no side effects.
func (p *Pattern) AppliesOn(day time.Time) bool {
	if !p.IsActive {
		return false
	}
	target := dateOnly(day, day.Location())
	anchor := dateOnly(p.StartDate, day.Location())

	switch p.Type {
	case TypeOneTime:
		return anchor.Equal(target)
	case TypeDaily, TypeWeekly:
		if target.Before(anchor) {
			return false
		}
		// An end date before the anchor can never satisfy this bound, so
		// such a pattern is simply always empty.
		if p.EndDate != nil && dateOnly(*p.EndDate, day.Location()).Before(target) {
			return false
		}
		if p.Type == TypeWeekly && !p.CoversWeekday(ISOWeekday(target)) {
			return false
		}
		return true
	}
	return false
}

// CoversWeekday reports whether a weekly pattern includes the ISO weekday code.
func (p *Pattern) CoversWeekday(code int) bool {
	for _, d := range p.WeekDays {
		if d == code {
			return true
		}
	}
	return false
}

// Applicable filters the given patterns down to those applying on the day,
// preserving order.
func Applicable(list []Pattern, day time.Time) []Pattern {
	var out []Pattern
	for i := range list {
		if list[i].AppliesOn(day) {
			out = append(out, list[i])
		}
	}
	return out
}

func dateOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
