package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xndbogdan/doctor-appointments-api/internal/bookings"
	"github.com/xndbogdan/doctor-appointments-api/internal/observability/metrics"
	"github.com/xndbogdan/doctor-appointments-api/internal/patterns"
	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

var bookingTracer = otel.Tracer("schedule.internal.slots")

// PatternStore loads patterns when a virtual reference must be validated
// against its origin pattern.
type PatternStore interface {
	GetByID(ctx context.Context, id int64) (*patterns.Pattern, error)
}

// PatientRegistry confirms the booking patient exists before any row is
// written.
type PatientRegistry interface {
	Exists(ctx context.Context, id int64) error
}

// BookingWriter inserts the booking row through the resolver's transaction.
type BookingWriter interface {
	Insert(ctx context.Context, q bookings.Querier, slotID, patientID, doctorID int64, reason string) (*bookings.Booking, error)
}

// BookingRequest carries the caller's intent into the resolver.
type BookingRequest struct {
	PatientID int64
	Reason    string
}

// BookingResult is what the booking endpoint renders on success.
type BookingResult struct {
	Booking *bookings.Booking `json:"booking"`
	Slot    *Slot             `json:"slot"`
}

// BookingResolver turns a slot reference into a committed booking. Both paths
// run inside one transaction so the slot transition and the booking row land
// together or not at all; concurrent claims of the same interval are decided
// by the database, never by application-level locking.
type BookingResolver struct {
	pool     PgxPool
	patterns PatternStore
	patients PatientRegistry
	writer   BookingWriter
	cache    *AvailabilityCache
	metrics  *metrics.SchedulingMetrics
	logger   *logging.Logger
	loc      *time.Location
}

// NewBookingResolver wires the booking write path. cache and metrics may be
// nil; loc defaults to UTC.
func NewBookingResolver(
	pool PgxPool,
	patternStore PatternStore,
	patients PatientRegistry,
	writer BookingWriter,
	cache *AvailabilityCache,
	m *metrics.SchedulingMetrics,
	logger *logging.Logger,
	loc *time.Location,
) *BookingResolver {
	if pool == nil || patternStore == nil || patients == nil || writer == nil {
		panic("slots: booking resolver dependencies required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BookingResolver{
		pool:     pool,
		patterns: patternStore,
		patients: patients,
		writer:   writer,
		cache:    cache,
		metrics:  m,
		logger:   logger,
		loc:      loc,
	}
}

// Book resolves the raw slot identifier and claims the interval for the
// patient. Losing a concurrent race surfaces as ErrSlotUnavailable for a
// persisted slot and ErrSlotAlreadyBooked for a virtual one.
func (r *BookingResolver) Book(ctx context.Context, rawID string, req BookingRequest) (*BookingResult, error) {
	ctx, span := bookingTracer.Start(ctx, "slots.book")
	defer span.End()

	ref, err := ParseSlotRef(rawID)
	if err != nil {
		return nil, err
	}
	if err := r.patients.Exists(ctx, req.PatientID); err != nil {
		return nil, err
	}

	var (
		result *BookingResult
		path   string
	)
	switch v := ref.(type) {
	case RealRef:
		path = "real"
		span.SetAttributes(attribute.Int64("schedule.slot_id", v.SlotID))
		result, err = r.bookReal(ctx, v, req)
	case VirtualRef:
		path = "virtual"
		span.SetAttributes(attribute.Int64("schedule.pattern_id", v.PatternID))
		result, err = r.bookVirtual(ctx, v, req)
	default:
		return nil, ErrInvalidSlotRef
	}
	if err != nil {
		span.RecordError(err)
		r.metrics.ObserveBooking(path, outcomeFor(err))
		return nil, err
	}
	r.metrics.ObserveBooking(path, "booked")

	date := result.Slot.StartTime.In(r.loc).Format(DateKeyFormat)
	if err := r.cache.Invalidate(ctx, result.Slot.DoctorID, date); err != nil {
		// A stale cache entry self-heals on TTL expiry; the booking stands.
		r.logger.Warn("failed to invalidate availability cache after booking",
			"error", err, "doctor_id", result.Slot.DoctorID, "date", date)
	}
	return result, nil
}

// bookReal claims an existing slot row. The status transition is a compare
// and swap: the UPDATE only matches while the row is still available, so of
// two concurrent bookings exactly one sees a row.
func (r *BookingResolver) bookReal(ctx context.Context, ref RealRef, req BookingRequest) (*BookingResult, error) {
	slot, err := r.loadSlot(ctx, ref.SlotID)
	if err != nil {
		return nil, err
	}
	if slot.Status != StatusAvailable {
		return nil, ErrSlotUnavailable
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("slots: begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	claimed, err := claimSlot(ctx, tx, slot.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("slots: claim slot: %w", err)
	}

	booking, err := r.writer.Insert(ctx, tx, claimed.ID, req.PatientID, claimed.DoctorID, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("slots: commit booking: %w", err)
	}
	return &BookingResult{Booking: booking, Slot: claimed}, nil
}

// bookVirtual persists the materialized interval and books it in one
// transaction. The insert races on the (doctor, start, end) uniqueness: when
// another booking persisted the row first, DO NOTHING yields no row and the
// claim falls back to the compare-and-swap on the existing row.
func (r *BookingResolver) bookVirtual(ctx context.Context, ref VirtualRef, req BookingRequest) (*BookingResult, error) {
	pattern, err := r.patterns.GetByID(ctx, ref.PatternID)
	if err != nil {
		return nil, err
	}
	start := ref.Start.In(r.loc)
	if !coversInstant(pattern, start) {
		return nil, ErrSlotUnavailable
	}
	end := start.Add(time.Duration(pattern.Duration) * time.Minute)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("slots: begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	slot, err := insertBookedSlot(ctx, tx, pattern.DoctorID, pattern.ID, start, end)
	if errors.Is(err, pgx.ErrNoRows) {
		// The interval's row already exists. Claim it if still available.
		slot, err = claimSlotByInterval(ctx, tx, pattern.DoctorID, start, end)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotAlreadyBooked
		}
	}
	if err != nil {
		return nil, fmt.Errorf("slots: persist virtual slot: %w", err)
	}

	booking, err := r.writer.Insert(ctx, tx, slot.ID, req.PatientID, slot.DoctorID, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("slots: commit booking: %w", err)
	}
	return &BookingResult{Booking: booking, Slot: slot}, nil
}

func (r *BookingResolver) loadSlot(ctx context.Context, id int64) (*Slot, error) {
	var s Slot
	query := `
		SELECT id, doctor_id, pattern_id, start_time, end_time, status, created_at, updated_at
		FROM slots WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.DoctorID, &s.PatternID, &s.StartTime, &s.EndTime, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("slots: load: %w", err)
	}
	return &s, nil
}

func claimSlot(ctx context.Context, tx pgx.Tx, id int64) (*Slot, error) {
	var s Slot
	query := `
		UPDATE slots SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
		RETURNING id, doctor_id, pattern_id, start_time, end_time, status, created_at, updated_at`
	err := tx.QueryRow(ctx, query, id, StatusBooked, StatusAvailable).Scan(
		&s.ID, &s.DoctorID, &s.PatternID, &s.StartTime, &s.EndTime, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func claimSlotByInterval(ctx context.Context, tx pgx.Tx, doctorID int64, start, end time.Time) (*Slot, error) {
	var s Slot
	query := `
		UPDATE slots SET status = $4, updated_at = now()
		WHERE doctor_id = $1 AND start_time = $2 AND end_time = $3 AND status = $5
		RETURNING id, doctor_id, pattern_id, start_time, end_time, status, created_at, updated_at`
	err := tx.QueryRow(ctx, query, doctorID, start, end, StatusBooked, StatusAvailable).Scan(
		&s.ID, &s.DoctorID, &s.PatternID, &s.StartTime, &s.EndTime, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func insertBookedSlot(ctx context.Context, tx pgx.Tx, doctorID, patternID int64, start, end time.Time) (*Slot, error) {
	var s Slot
	query := `
		INSERT INTO slots (doctor_id, pattern_id, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (doctor_id, start_time, end_time) DO NOTHING
		RETURNING id, doctor_id, pattern_id, start_time, end_time, status, created_at, updated_at`
	err := tx.QueryRow(ctx, query, doctorID, patternID, start, end, StatusBooked).Scan(
		&s.ID, &s.DoctorID, &s.PatternID, &s.StartTime, &s.EndTime, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// coversInstant verifies the pattern applies on the requested day and the
// start lies on its materialization grid, so fabricated virtual ids cannot
// book arbitrary intervals.
func coversInstant(p *patterns.Pattern, start time.Time) bool {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	if !p.AppliesOn(day) {
		return false
	}
	for _, v := range Materialize(p, day, nil) {
		if v.StartTime.Equal(start) {
			return true
		}
	}
	return false
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrSlotAlreadyBooked):
		return "conflict"
	case errors.Is(err, ErrSlotNotFound), errors.Is(err, patterns.ErrPatternNotFound):
		return "not_found"
	default:
		return "error"
	}
}
