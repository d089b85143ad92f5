package patterns

import (
	"errors"
	"testing"
	"time"
)

func validRequest() CreatePatternRequest {
	return CreatePatternRequest{
		StartTime: "2025-09-10T09:00:00Z",
		EndTime:   "2025-09-10T17:00:00Z",
		Duration:  30,
		Recurrence: Recurrence{
			Type: TypeDaily,
		},
	}
}

func TestParseValid(t *testing.T) {
	req := validRequest()
	draft, err := req.Parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Duration != 30 || draft.Type != TypeDaily {
		t.Fatalf("unexpected draft: %#v", draft)
	}
	if draft.WeekDays == nil || len(draft.WeekDays) != 0 {
		t.Fatalf("expected empty week days slice, got %#v", draft.WeekDays)
	}
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreatePatternRequest)
		want   error
	}{
		{
			name:   "unparseable start",
			mutate: func(r *CreatePatternRequest) { r.StartTime = "not-a-time" },
			want:   ErrInvalidStartTime,
		},
		{
			name:   "unparseable end",
			mutate: func(r *CreatePatternRequest) { r.EndTime = "tomorrow" },
			want:   ErrInvalidEndTime,
		},
		{
			name:   "start equals end",
			mutate: func(r *CreatePatternRequest) { r.EndTime = r.StartTime },
			want:   ErrStartNotBeforeEnd,
		},
		{
			name: "start after end",
			mutate: func(r *CreatePatternRequest) {
				r.StartTime = "2025-09-10T17:00:00Z"
				r.EndTime = "2025-09-10T09:00:00Z"
			},
			want: ErrStartNotBeforeEnd,
		},
		{
			name:   "duration 20 rejected",
			mutate: func(r *CreatePatternRequest) { r.Duration = 20 },
			want:   ErrInvalidDuration,
		},
		{
			name:   "duration 0 rejected",
			mutate: func(r *CreatePatternRequest) { r.Duration = 0 },
			want:   ErrInvalidDuration,
		},
		{
			name:   "unknown recurrence type",
			mutate: func(r *CreatePatternRequest) { r.Recurrence.Type = "monthly" },
			want:   ErrInvalidRecurrenceType,
		},
		{
			name:   "weekly without week days",
			mutate: func(r *CreatePatternRequest) { r.Recurrence = Recurrence{Type: TypeWeekly} },
			want:   ErrMissingWeekDays,
		},
		{
			name: "weekly with out-of-range day",
			mutate: func(r *CreatePatternRequest) {
				r.Recurrence = Recurrence{Type: TypeWeekly, WeekDays: []int{1, 8}}
			},
			want: ErrInvalidWeekDay,
		},
		{
			name: "weekly with zero day",
			mutate: func(r *CreatePatternRequest) {
				r.Recurrence = Recurrence{Type: TypeWeekly, WeekDays: []int{0}}
			},
			want: ErrInvalidWeekDay,
		},
		{
			name:   "bad recurrence end date",
			mutate: func(r *CreatePatternRequest) { r.Recurrence.EndDate = "soon" },
			want:   ErrInvalidRecurrenceEndDate,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := req.Parse()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !IsValidationError(err) {
				t.Fatalf("expected %v to be a validation error", err)
			}
		})
	}
}

func TestParseEndDateBeforeAnchorAccepted(t *testing.T) {
	req := validRequest()
	req.Recurrence.EndDate = "2025-09-01"
	draft, err := req.Parse()
	if err != nil {
		t.Fatalf("end date before anchor must be accepted, got %v", err)
	}
	if draft.EndDate == nil || !draft.EndDate.Before(draft.StartTime) {
		t.Fatalf("expected parsed end date before anchor, got %#v", draft.EndDate)
	}
}

func TestParseEndDateFormats(t *testing.T) {
	req := validRequest()
	req.Recurrence.EndDate = "2025-10-01T00:00:00Z"
	if _, err := req.Parse(); err != nil {
		t.Fatalf("RFC3339 end date should parse, got %v", err)
	}

	req = validRequest()
	req.Recurrence.EndDate = "2025-10-01"
	draft, err := req.Parse()
	if err != nil {
		t.Fatalf("date-only end date should parse, got %v", err)
	}
	want := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	if !draft.EndDate.Equal(want) {
		t.Fatalf("unexpected parsed end date %v", draft.EndDate)
	}
}
