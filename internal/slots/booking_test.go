package slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/xndbogdan/doctor-appointments-api/internal/bookings"
	"github.com/xndbogdan/doctor-appointments-api/internal/patients"
	"github.com/xndbogdan/doctor-appointments-api/internal/patterns"
)

var slotRowColumns = []string{
	"id", "doctor_id", "pattern_id", "start_time", "end_time", "status", "created_at", "updated_at",
}

type stubPatternStore struct {
	pattern *patterns.Pattern
	err     error
}

func (s *stubPatternStore) GetByID(ctx context.Context, id int64) (*patterns.Pattern, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pattern, nil
}

type stubPatientRegistry struct {
	err error
}

func (s *stubPatientRegistry) Exists(ctx context.Context, id int64) error { return s.err }

type stubBookingWriter struct {
	err  error
	last *bookings.Booking
}

func (s *stubBookingWriter) Insert(ctx context.Context, q bookings.Querier, slotID, patientID, doctorID int64, reason string) (*bookings.Booking, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.last = &bookings.Booking{
		ID:        99,
		SlotID:    slotID,
		PatientID: patientID,
		DoctorID:  doctorID,
		Reason:    reason,
		Reference: "ref-99",
	}
	return s.last, nil
}

func newTestResolver(t *testing.T, store PatternStore, registry PatientRegistry, writer BookingWriter) (*BookingResolver, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	if store == nil {
		store = &stubPatternStore{err: patterns.ErrPatternNotFound}
	}
	if registry == nil {
		registry = &stubPatientRegistry{}
	}
	if writer == nil {
		writer = &stubBookingWriter{}
	}
	return NewBookingResolver(mock, store, registry, writer, nil, nil, nil, time.UTC), mock
}

func TestBookRealSlot(t *testing.T) {
	writer := &stubBookingWriter{}
	resolver, mock := newTestResolver(t, nil, nil, writer)

	start := time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC)
	now := time.Now()
	patternID := int64(7)

	mock.ExpectQuery("FROM slots WHERE id").
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows(slotRowColumns).
			AddRow(int64(11), int64(3), &patternID, start, start.Add(30*time.Minute), StatusAvailable, now, now))
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE slots SET status").
		WithArgs(int64(11), StatusBooked, StatusAvailable).
		WillReturnRows(pgxmock.NewRows(slotRowColumns).
			AddRow(int64(11), int64(3), &patternID, start, start.Add(30*time.Minute), StatusBooked, now, now))
	mock.ExpectCommit()

	result, err := resolver.Book(context.Background(), "11", BookingRequest{PatientID: 5, Reason: "checkup"})
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if result.Slot.Status != StatusBooked {
		t.Fatalf("slot status = %q", result.Slot.Status)
	}
	if writer.last == nil || writer.last.SlotID != 11 || writer.last.PatientID != 5 {
		t.Fatalf("unexpected booking row: %#v", writer.last)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookRealSlotAlreadyBooked(t *testing.T) {
	resolver, mock := newTestResolver(t, nil, nil, nil)

	start := time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery("FROM slots WHERE id").
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows(slotRowColumns).
			AddRow(int64(11), int64(3), (*int64)(nil), start, start.Add(30*time.Minute), StatusBooked, now, now))

	_, err := resolver.Book(context.Background(), "11", BookingRequest{PatientID: 5})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestBookRealSlotLosesRace(t *testing.T) {
	resolver, mock := newTestResolver(t, nil, nil, nil)

	start := time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery("FROM slots WHERE id").
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows(slotRowColumns).
			AddRow(int64(11), int64(3), (*int64)(nil), start, start.Add(30*time.Minute), StatusAvailable, now, now))
	mock.ExpectBegin()
	// Another transaction booked the slot between the read and the claim.
	mock.ExpectQuery("UPDATE slots SET status").
		WithArgs(int64(11), StatusBooked, StatusAvailable).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := resolver.Book(context.Background(), "11", BookingRequest{PatientID: 5})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookRealSlotNotFound(t *testing.T) {
	resolver, mock := newTestResolver(t, nil, nil, nil)

	mock.ExpectQuery("FROM slots WHERE id").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := resolver.Book(context.Background(), "404", BookingRequest{PatientID: 5})
	if !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestBookVirtualSlotCreatesRow(t *testing.T) {
	pattern := dailyPattern(7, 9, 0, 17, 0, 30)
	writer := &stubBookingWriter{}
	resolver, mock := newTestResolver(t, &stubPatternStore{pattern: pattern}, nil, writer)

	start := time.Date(2025, time.September, 10, 9, 30, 0, 0, time.UTC)
	now := time.Now()
	patternID := pattern.ID

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO slots").
		WithArgs(int64(3), int64(7), start, start.Add(30*time.Minute), StatusBooked).
		WillReturnRows(pgxmock.NewRows(slotRowColumns).
			AddRow(int64(21), int64(3), &patternID, start, start.Add(30*time.Minute), StatusBooked, now, now))
	mock.ExpectCommit()

	result, err := resolver.Book(context.Background(), "7-2025-09-10T09:30:00Z", BookingRequest{PatientID: 5})
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if result.Slot.ID != 21 || result.Slot.Status != StatusBooked {
		t.Fatalf("unexpected slot: %#v", result.Slot)
	}
	if writer.last == nil || writer.last.SlotID != 21 {
		t.Fatalf("unexpected booking row: %#v", writer.last)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookVirtualSlotClaimsExistingRow(t *testing.T) {
	pattern := dailyPattern(7, 9, 0, 17, 0, 30)
	resolver, mock := newTestResolver(t, &stubPatternStore{pattern: pattern}, nil, nil)

	start := time.Date(2025, time.September, 10, 9, 30, 0, 0, time.UTC)
	now := time.Now()
	patternID := pattern.ID

	mock.ExpectBegin()
	// The row already exists but was unbooked again out of band.
	mock.ExpectQuery("INSERT INTO slots").
		WithArgs(int64(3), int64(7), start, start.Add(30*time.Minute), StatusBooked).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("UPDATE slots SET status").
		WithArgs(int64(3), start, start.Add(30*time.Minute), StatusBooked, StatusAvailable).
		WillReturnRows(pgxmock.NewRows(slotRowColumns).
			AddRow(int64(21), int64(3), &patternID, start, start.Add(30*time.Minute), StatusBooked, now, now))
	mock.ExpectCommit()

	result, err := resolver.Book(context.Background(), "7-2025-09-10T09:30:00Z", BookingRequest{PatientID: 5})
	if err != nil {
		t.Fatalf("book failed: %v", err)
	}
	if result.Slot.ID != 21 {
		t.Fatalf("unexpected slot: %#v", result.Slot)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookVirtualSlotAlreadyBooked(t *testing.T) {
	pattern := dailyPattern(7, 9, 0, 17, 0, 30)
	resolver, mock := newTestResolver(t, &stubPatternStore{pattern: pattern}, nil, nil)

	start := time.Date(2025, time.September, 10, 9, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO slots").
		WithArgs(int64(3), int64(7), start, start.Add(30*time.Minute), StatusBooked).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("UPDATE slots SET status").
		WithArgs(int64(3), start, start.Add(30*time.Minute), StatusBooked, StatusAvailable).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := resolver.Book(context.Background(), "7-2025-09-10T09:30:00Z", BookingRequest{PatientID: 5})
	if !errors.Is(err, ErrSlotAlreadyBooked) {
		t.Fatalf("expected ErrSlotAlreadyBooked, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBookVirtualSlotOffGrid(t *testing.T) {
	pattern := dailyPattern(7, 9, 0, 17, 0, 30)
	resolver, _ := newTestResolver(t, &stubPatternStore{pattern: pattern}, nil, nil)

	// 09:10 is not a start the pattern can produce.
	_, err := resolver.Book(context.Background(), "7-2025-09-10T09:10:00Z", BookingRequest{PatientID: 5})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestBookVirtualSlotPatternMissing(t *testing.T) {
	resolver, _ := newTestResolver(t, &stubPatternStore{err: patterns.ErrPatternNotFound}, nil, nil)

	_, err := resolver.Book(context.Background(), "7-2025-09-10T09:30:00Z", BookingRequest{PatientID: 5})
	if !errors.Is(err, patterns.ErrPatternNotFound) {
		t.Fatalf("expected ErrPatternNotFound, got %v", err)
	}
}

func TestBookUnknownPatient(t *testing.T) {
	resolver, _ := newTestResolver(t, nil, &stubPatientRegistry{err: patients.ErrPatientNotFound}, nil)

	_, err := resolver.Book(context.Background(), "11", BookingRequest{PatientID: 5})
	if !errors.Is(err, patients.ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestBookMalformedReference(t *testing.T) {
	resolver, _ := newTestResolver(t, nil, nil, nil)

	if _, err := resolver.Book(context.Background(), "not-a-slot", BookingRequest{PatientID: 5}); !errors.Is(err, ErrInvalidSlotRef) {
		t.Fatalf("expected ErrInvalidSlotRef, got %v", err)
	}
	if _, err := resolver.Book(context.Background(), "7-yesterday", BookingRequest{PatientID: 5}); !errors.Is(err, ErrInvalidSlotTime) {
		t.Fatalf("expected ErrInvalidSlotTime, got %v", err)
	}
}

func TestBookInvalidatesOnlyBookedDate(t *testing.T) {
	cache, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	for _, date := range []string{"2025-09-10", "2025-09-11"} {
		if err := cache.Set(ctx, 3, date, sampleSlots(3)); err != nil {
			t.Fatalf("seed cache failed: %v", err)
		}
	}

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()
	resolver := NewBookingResolver(mock, &stubPatternStore{err: patterns.ErrPatternNotFound},
		&stubPatientRegistry{}, &stubBookingWriter{}, cache, nil, nil, time.UTC)

	start := time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery("FROM slots WHERE id").
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows(slotRowColumns).
			AddRow(int64(11), int64(3), (*int64)(nil), start, start.Add(30*time.Minute), StatusAvailable, now, now))
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE slots SET status").
		WithArgs(int64(11), StatusBooked, StatusAvailable).
		WillReturnRows(pgxmock.NewRows(slotRowColumns).
			AddRow(int64(11), int64(3), (*int64)(nil), start, start.Add(30*time.Minute), StatusBooked, now, now))
	mock.ExpectCommit()

	if _, err := resolver.Book(ctx, "11", BookingRequest{PatientID: 5}); err != nil {
		t.Fatalf("book failed: %v", err)
	}

	if _, ok := cache.Get(ctx, 3, "2025-09-10"); ok {
		t.Fatal("booked date still cached after booking")
	}
	if _, ok := cache.Get(ctx, 3, "2025-09-11"); !ok {
		t.Fatal("unrelated date was invalidated")
	}
}
