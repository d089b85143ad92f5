package doctors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

// Directory is the read surface other packages use to gate on doctor existence.
type Directory interface {
	List(ctx context.Context) ([]Doctor, error)
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	Create(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error)
}

// Handler handles HTTP requests for doctors
type Handler struct {
	repo   Directory
	logger *logging.Logger
}

// NewHandler creates a new doctors handler
func NewHandler(repo Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Index handles GET /doctors
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while fetching doctors")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

// Show handles GET /doctors/{doctorID}
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "doctorID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid doctor id")
		return
	}
	doctor, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, ErrDoctorNotFound) {
		writeError(w, http.StatusNotFound, "Doctor not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load doctor", "error", err, "doctor_id", id)
		writeError(w, http.StatusInternalServerError, "An error occurred while finding the doctor")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": doctor})
}

// Store handles POST /doctors
func (h *Handler) Store(w http.ResponseWriter, r *http.Request) {
	var req CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	doctor, err := h.repo.Create(r.Context(), &req)
	if errors.Is(err, ErrInvalidName) || errors.Is(err, ErrMissingEmail) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to create doctor", "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred while creating the doctor")
		return
	}

	h.logger.Info("doctor created", "doctor_id", doctor.ID, "name", doctor.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Doctor created successfully",
		"data":    doctor,
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
