package slots

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xndbogdan/doctor-appointments-api/internal/doctors"
	"github.com/xndbogdan/doctor-appointments-api/internal/patients"
	"github.com/xndbogdan/doctor-appointments-api/internal/patterns"
	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

// DoctorDirectory gates availability routes on doctor existence.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id int64) (*doctors.Doctor, error)
}

// Booker is the booking write path behind POST /slots/{slotID}/book.
type Booker interface {
	Book(ctx context.Context, rawID string, req BookingRequest) (*BookingResult, error)
}

// Availability is the read path behind GET /doctors/{doctorID}/slots.
type Availability interface {
	Available(ctx context.Context, doctorID int64, date time.Time) ([]VirtualSlot, error)
}

// Handler handles HTTP requests for slot availability and booking
type Handler struct {
	availability Availability
	booker       Booker
	doctors      DoctorDirectory
	logger       *logging.Logger
	loc          *time.Location
}

// NewHandler creates a new slots handler
func NewHandler(availability Availability, booker Booker, directory DoctorDirectory, logger *logging.Logger, loc *time.Location) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{availability: availability, booker: booker, doctors: directory, logger: logger, loc: loc}
}

// Index handles GET /doctors/{doctorID}/slots?date=YYYY-MM-DD
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.requireDoctor(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, err := parseDate(raw, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
		return
	}

	list, err := h.availability.Available(r.Context(), doctorID, date)
	if err != nil {
		h.logger.Error("failed to compute availability", "error", err, "doctor_id", doctorID, "date", raw)
		writeError(w, http.StatusInternalServerError, "An error occurred while fetching available slots")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

type bookSlotRequest struct {
	PatientID *int64 `json:"patient_id"`
	Reason    string `json:"reason"`
}

// Book handles POST /slots/{slotID}/book. The slot id may be a persisted
// row's numeric key or a virtual "{patternID}-{RFC3339}" identifier.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	rawID := chi.URLParam(r, "slotID")

	var req bookSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PatientID == nil || *req.PatientID <= 0 {
		writeError(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	result, err := h.booker.Book(r.Context(), rawID, BookingRequest{
		PatientID: *req.PatientID,
		Reason:    req.Reason,
	})
	if err != nil {
		h.renderBookingError(w, rawID, err)
		return
	}

	h.logger.Info("slot booked",
		"slot_id", result.Slot.ID,
		"doctor_id", result.Slot.DoctorID,
		"patient_id", result.Booking.PatientID,
		"reference", result.Booking.Reference)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Slot booked successfully",
		"data":    result,
	})
}

func (h *Handler) renderBookingError(w http.ResponseWriter, rawID string, err error) {
	switch {
	case errors.Is(err, ErrInvalidSlotRef), errors.Is(err, ErrInvalidSlotTime):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "Slot not found")
	case errors.Is(err, patterns.ErrPatternNotFound):
		writeError(w, http.StatusNotFound, "Pattern not found")
	case errors.Is(err, patients.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "Patient not found")
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrSlotAlreadyBooked):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("failed to book slot", "error", err, "slot_id", rawID)
		writeError(w, http.StatusInternalServerError, "An error occurred while booking the slot")
	}
}

func (h *Handler) requireDoctor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	doctorID, err := strconv.ParseInt(chi.URLParam(r, "doctorID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid doctor id")
		return 0, false
	}
	if _, err := h.doctors.GetByID(r.Context(), doctorID); err != nil {
		if errors.Is(err, doctors.ErrDoctorNotFound) {
			writeError(w, http.StatusNotFound, "Doctor not found")
			return 0, false
		}
		h.logger.Error("failed to load doctor", "error", err, "doctor_id", doctorID)
		writeError(w, http.StatusInternalServerError, "An error occurred while finding the doctor")
		return 0, false
	}
	return doctorID, true
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if d, err := time.ParseInLocation(DateKeyFormat, raw, loc); err == nil {
		return d, nil
	}
	// A full instant also names a day.
	return time.Parse(time.RFC3339, raw)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
