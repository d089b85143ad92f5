package patients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

// Registry is the patient lookup surface the booking resolver depends on.
type Registry interface {
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error)
}

// Handler handles HTTP requests for patients
type Handler struct {
	repo   Registry
	logger *logging.Logger
}

// NewHandler creates a new patients handler
func NewHandler(repo Registry, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Show handles GET /patients/{patientID}
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "patientID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid patient id")
		return
	}
	patient, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrPatientNotFound) {
		writeError(w, http.StatusNotFound, "Patient not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load patient", "error", err, "patient_id", id)
		writeError(w, http.StatusInternalServerError, "An error occurred while finding the patient")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": patient})
}

// Store handles POST /patients
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	patient, err := h.repo.Create(r.Context(), &req)
	if errors.Is(err, ErrInvalidName) || errors.Is(err, ErrMissingContact) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to create patient", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while creating the patient")
		return
	}

	h.logger.Info("patient created", "patient_id", patient.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Patient created successfully",
		"data":    patient,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
