package patterns

import "errors"

var (
	// ErrPatternNotFound is returned when a pattern is not found
	ErrPatternNotFound = errors.New("pattern not found")

	// ErrInvalidStartTime is returned when the start time does not parse
	ErrInvalidStartTime = errors.New("invalid start time, expected an ISO-8601 timestamp")

	// ErrInvalidEndTime is returned when the end time does not parse
	ErrInvalidEndTime = errors.New("invalid end time, expected an ISO-8601 timestamp")

	// ErrInvalidRecurrenceEndDate is returned when the recurrence end date does not parse
	ErrInvalidRecurrenceEndDate = errors.New("invalid recurrence end date, expected an ISO-8601 timestamp")

	// ErrStartNotBeforeEnd is returned when the window is empty or inverted
	ErrStartNotBeforeEnd = errors.New("start time must be before end time")

	// ErrInvalidDuration is returned for durations outside the allowed set
	ErrInvalidDuration = errors.New("duration must be either 15 or 30 minutes")

	// ErrInvalidRecurrenceType is returned for unknown recurrence types
	ErrInvalidRecurrenceType = errors.New("recurrence type must be 'daily', 'weekly', or 'one-time'")

	// ErrMissingWeekDays is returned when a weekly recurrence has no week days
	ErrMissingWeekDays = errors.New("weekly recurrence requires specified week days")

	// ErrInvalidWeekDay is returned for week day codes outside 1..7
	ErrInvalidWeekDay = errors.New("week days must be between 1 (Monday) and 7 (Sunday)")
)

// IsValidationError reports whether err is one of the request-shape errors a
// handler should surface as a 400.
func IsValidationError(err error) bool {
	for _, candidate := range []error{
		ErrInvalidStartTime,
		ErrInvalidEndTime,
		ErrInvalidRecurrenceEndDate,
		ErrStartNotBeforeEnd,
		ErrInvalidDuration,
		ErrInvalidRecurrenceType,
		ErrMissingWeekDays,
		ErrInvalidWeekDay,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
