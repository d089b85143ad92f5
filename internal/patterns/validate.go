package patterns

import "time"

// Recurrence describes how a pattern repeats.
type Recurrence struct {
	Type     string `json:"type"`
	EndDate  string `json:"end_date,omitempty"`
	WeekDays []int  `json:"week_days,omitempty"`
}

// CreatePatternRequest is the POST /doctors/{doctorID}/slots payload.
type CreatePatternRequest struct {
	StartTime  string     `json:"start_time"`
	EndTime    string     `json:"end_time"`
	Duration   int        `json:"duration"`
	Recurrence Recurrence `json:"recurrence"`
}

// Draft is a validated, parsed pattern ready to persist. The start time's
// date component is the anchor date.
type Draft struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  int
	Type      string
	WeekDays  []int
	EndDate   *time.Time
}

// Parse validates the request shape and returns the parsed draft. A
// recurrence end date before the anchor date is accepted; such a pattern is
// well formed but never matches any day.
func (r *CreatePatternRequest) Parse() (*Draft, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, ErrInvalidStartTime
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, ErrInvalidEndTime
	}

	var endDate *time.Time
	if r.Recurrence.EndDate != "" {
		parsed, err := parseDateOrTimestamp(r.Recurrence.EndDate)
		if err != nil {
			return nil, ErrInvalidRecurrenceEndDate
		}
		endDate = &parsed
	}

	if !start.Before(end) {
		return nil, ErrStartNotBeforeEnd
	}
	if r.Duration != 15 && r.Duration != 30 {
		return nil, ErrInvalidDuration
	}

	switch r.Recurrence.Type {
	case TypeOneTime, TypeDaily:
	case TypeWeekly:
		if len(r.Recurrence.WeekDays) == 0 {
			return nil, ErrMissingWeekDays
		}
		for _, d := range r.Recurrence.WeekDays {
			if d < 1 || d > 7 {
				return nil, ErrInvalidWeekDay
			}
		}
	default:
		return nil, ErrInvalidRecurrenceType
	}

	weekDays := r.Recurrence.WeekDays
	if weekDays == nil {
		weekDays = []int{}
	}

	return &Draft{
		StartTime: start,
		EndTime:   end,
		Duration:  r.Duration,
		Type:      r.Recurrence.Type,
		WeekDays:  weekDays,
		EndDate:   endDate,
	}, nil
}

func parseDateOrTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
