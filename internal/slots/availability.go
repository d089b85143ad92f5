package slots

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xndbogdan/doctor-appointments-api/internal/observability/metrics"
	"github.com/xndbogdan/doctor-appointments-api/internal/patterns"
	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

var availabilityTracer = otel.Tracer("schedule.internal.slots")

// PatternSource lists a doctor's active patterns.
type PatternSource interface {
	ListActiveForDoctor(ctx context.Context, doctorID int64) ([]patterns.Pattern, error)
}

// BookedLookup resolves which start instants already carry a booked slot.
type BookedLookup interface {
	BookedStartsBetween(ctx context.Context, doctorID int64, from, to time.Time) (map[string]struct{}, error)
}

// AvailabilityService computes a doctor's bookable slots for a day:
// cache -> matcher -> materializer -> cache.
type AvailabilityService struct {
	patterns PatternSource
	booked   BookedLookup
	cache    *AvailabilityCache
	metrics  *metrics.SchedulingMetrics
	logger   *logging.Logger
	loc      *time.Location
}

// NewAvailabilityService constructs the availability read path. cache and
// metrics may be nil; loc defaults to UTC.
func NewAvailabilityService(
	patternSource PatternSource,
	booked BookedLookup,
	cache *AvailabilityCache,
	m *metrics.SchedulingMetrics,
	logger *logging.Logger,
	loc *time.Location,
) *AvailabilityService {
	if patternSource == nil || booked == nil {
		panic("slots: pattern source and booked lookup required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityService{
		patterns: patternSource,
		booked:   booked,
		cache:    cache,
		metrics:  m,
		logger:   logger,
		loc:      loc,
	}
}

// Available returns the doctor's open slots on the given date, sorted by
// start time ascending. Cache hits skip materialization entirely.
func (s *AvailabilityService) Available(ctx context.Context, doctorID int64, date time.Time) ([]VirtualSlot, error) {
	ctx, span := availabilityTracer.Start(ctx, "slots.available")
	defer span.End()

	dayStart := s.dayStart(date)
	dateKey := dayStart.Format(DateKeyFormat)
	span.SetAttributes(
		attribute.Int64("schedule.doctor_id", doctorID),
		attribute.String("schedule.date", dateKey),
	)

	if cached, ok := s.cache.Get(ctx, doctorID, dateKey); ok {
		s.metrics.ObserveCacheHit()
		return cached, nil
	}
	s.metrics.ObserveCacheMiss()
	started := time.Now()

	active, err := s.patterns.ListActiveForDoctor(ctx, doctorID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("slots: list patterns: %w", err)
	}
	bookedStarts, err := s.booked.BookedStartsBetween(ctx, doctorID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("slots: booked starts: %w", err)
	}

	var out []VirtualSlot
	for _, p := range patterns.Applicable(active, dayStart) {
		out = append(out, Materialize(&p, dayStart, bookedStarts)...)
	}
	if out == nil {
		out = []VirtualSlot{}
	}
	SortByStart(out)
	s.metrics.ObserveMaterializeLatency(time.Since(started).Seconds())

	if err := s.cache.Set(ctx, doctorID, dateKey, out); err != nil {
		// The cache is best-effort; the computed result is still authoritative.
		s.logger.Warn("failed to cache available slots", "error", err, "doctor_id", doctorID, "date", dateKey)
	}
	return out, nil
}

func (s *AvailabilityService) dayStart(date time.Time) time.Time {
	d := date.In(s.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
}
