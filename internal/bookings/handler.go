package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xndbogdan/doctor-appointments-api/internal/patients"
	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

// Ledger is the read surface the handler needs.
type Ledger interface {
	ListForPatient(ctx context.Context, patientID int64) ([]Booking, error)
}

// PatientRegistry gates booking routes on patient existence.
type PatientRegistry interface {
	GetByID(ctx context.Context, id int64) (*patients.Patient, error)
}

// Handler handles HTTP requests for bookings
type Handler struct {
	ledger   Ledger
	patients PatientRegistry
	logger   *logging.Logger
}

// NewHandler creates a new bookings handler
func NewHandler(ledger Ledger, registry PatientRegistry, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{ledger: ledger, patients: registry, logger: logger}
}

// Index handles GET /patients/{patientID}/bookings
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	patientID, err := strconv.ParseInt(chi.URLParam(r, "patientID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid patient id")
		return
	}
	if _, err := h.patients.GetByID(r.Context(), patientID); err != nil {
		if errors.Is(err, patients.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, "Patient not found")
			return
		}
		h.logger.Error("failed to load patient", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "An error occurred while finding the patient")
		return
	}

	list, err := h.ledger.ListForPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err, "patient_id", patientID)
		writeError(w, http.StatusInternalServerError, "An error occurred while fetching bookings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
