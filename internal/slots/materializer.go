package slots

import (
	"fmt"
	"sort"
	"time"

	"github.com/xndbogdan/doctor-appointments-api/internal/patterns"
)

// Materialize expands one applicable pattern into the day's available virtual
// slots. dayStart must be midnight in the process timezone; bookedStarts
// holds RFC3339 start instants that already have a booked persisted slot.
//
// Only the pattern window's hour and minute are used; seconds and below are
// zeroed. The walk stops before emitting a partial trailing slot, and slots
// are emitted in ascending start order. The caller merges across patterns and
// sorts the union.
func Materialize(p *patterns.Pattern, dayStart time.Time, bookedStarts map[string]struct{}) []VirtualSlot {
	// Both filters are applied upstream by the matcher; re-checked here so a
	// stray caller cannot materialize an inapplicable pattern.
	if !p.IsActive {
		return nil
	}
	if p.Type == patterns.TypeWeekly && !p.CoversWeekday(patterns.ISOWeekday(dayStart)) {
		return nil
	}
	if p.Duration <= 0 {
		return nil
	}

	loc := dayStart.Location()
	windowStart := atWallClock(dayStart, p.StartTime.In(loc))
	windowEnd := atWallClock(dayStart, p.EndTime.In(loc))
	step := time.Duration(p.Duration) * time.Minute

	var out []VirtualSlot
	for cur := windowStart; ; cur = cur.Add(step) {
		end := cur.Add(step)
		if end.After(windowEnd) {
			break
		}
		startISO := cur.Format(time.RFC3339)
		if _, booked := bookedStarts[startISO]; booked {
			continue
		}
		out = append(out, VirtualSlot{
			VirtualID: fmt.Sprintf("%d-%s", p.ID, startISO),
			DoctorID:  p.DoctorID,
			PatternID: p.ID,
			StartTime: cur,
			EndTime:   end,
			Status:    StatusAvailable,
		})
	}
	return out
}

// SortByStart orders merged slots by start time ascending. The sort is stable
// so ties across patterns keep their materialization order.
func SortByStart(list []VirtualSlot) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StartTime.Before(list[j].StartTime)
	})
}

func atWallClock(day, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location())
}
