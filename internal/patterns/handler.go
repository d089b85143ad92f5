package patterns

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xndbogdan/doctor-appointments-api/internal/doctors"
	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Create(ctx context.Context, doctorID int64, d *Draft) (*Pattern, error)
	GetByID(ctx context.Context, id int64) (*Pattern, error)
	ListActiveForDoctor(ctx context.Context, doctorID int64) ([]Pattern, error)
	SetActive(ctx context.Context, id int64, active bool) (*Pattern, error)
	Delete(ctx context.Context, id int64) error
}

// DoctorDirectory gates pattern routes on doctor existence.
type DoctorDirectory interface {
	GetByID(ctx context.Context, id int64) (*doctors.Doctor, error)
}

// Invalidator drops availability cache entries after pattern writes. Pattern
// writes can affect unboundedly many future dates, so every write invalidates
// all of the doctor's cached days.
type Invalidator interface {
	InvalidateAll(ctx context.Context, doctorID int64) error
}

// Handler handles HTTP requests for recurring patterns
type Handler struct {
	store   Store
	doctors DoctorDirectory
	cache   Invalidator
	logger  *logging.Logger
}

// NewHandler creates a new patterns handler
func NewHandler(store Store, directory DoctorDirectory, cache Invalidator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, doctors: directory, cache: cache, logger: logger}
}

// Index handles GET /doctors/{doctorID}/patterns
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.requireDoctor(w, r)
	if !ok {
		return
	}
	list, err := h.store.ListActiveForDoctor(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to list patterns", "error", err, "doctor_id", doctorID)
		writeError(w, http.StatusInternalServerError, "An error occurred while fetching patterns")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

// Create handles POST /doctors/{doctorID}/slots, which declares a new
// recurring availability pattern for the doctor.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.requireDoctor(w, r)
	if !ok {
		return
	}

	var req CreatePatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	draft, err := req.Parse()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pattern, err := h.store.Create(r.Context(), doctorID, draft)
	if err != nil {
		h.logger.Error("failed to create pattern", "error", err, "doctor_id", doctorID)
		writeError(w, http.StatusInternalServerError, "An error occurred while creating slots")
		return
	}

	h.invalidateAll(r.Context(), doctorID)
	h.logger.Info("pattern created", "pattern_id", pattern.ID, "doctor_id", doctorID, "type", pattern.Type)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Recurring pattern created successfully",
		"data":    pattern,
	})
}

type updatePatternRequest struct {
	IsActive *bool `json:"is_active"`
}

// Update handles PATCH /doctors/{doctorID}/patterns/{patternID}. Only the
// is_active toggle is supported; a pattern's window is never edited.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.requireDoctor(w, r)
	if !ok {
		return
	}
	pattern, ok := h.requireOwnedPattern(w, r, doctorID)
	if !ok {
		return
	}

	var req updatePatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "is_active must be a boolean value")
		return
	}

	updated, err := h.store.SetActive(r.Context(), pattern.ID, *req.IsActive)
	if errors.Is(err, ErrPatternNotFound) {
		writeError(w, http.StatusNotFound, "Pattern not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update pattern", "error", err, "pattern_id", pattern.ID)
		writeError(w, http.StatusInternalServerError, "An error occurred while updating the pattern")
		return
	}

	h.invalidateAll(r.Context(), doctorID)

	message := "Pattern deactivated successfully"
	if *req.IsActive {
		message = "Pattern activated successfully"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"data":    updated,
	})
}

// Destroy handles DELETE /doctors/{doctorID}/patterns/{patternID}
func (h *Handler) Destroy(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := h.requireDoctor(w, r)
	if !ok {
		return
	}
	pattern, ok := h.requireOwnedPattern(w, r, doctorID)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), pattern.ID); err != nil {
		if errors.Is(err, ErrPatternNotFound) {
			writeError(w, http.StatusNotFound, "Pattern not found")
			return
		}
		h.logger.Error("failed to delete pattern", "error", err, "pattern_id", pattern.ID)
		writeError(w, http.StatusInternalServerError, "An error occurred while deleting the pattern")
		return
	}

	h.invalidateAll(r.Context(), doctorID)
	h.logger.Info("pattern deleted", "pattern_id", pattern.ID, "doctor_id", doctorID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Pattern deleted successfully"})
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

func (h *Handler) requireOwnedPattern(w http.ResponseWriter, r *http.Request, doctorID int64) (*Pattern, bool) {
	patternID, err := strconv.ParseInt(chi.URLParam(r, "patternID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pattern id")
		return nil, false
	}
	pattern, err := h.store.GetByID(r.Context(), patternID)
	if errors.Is(err, ErrPatternNotFound) {
		writeError(w, http.StatusNotFound, "Pattern not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("failed to load pattern", "error", err, "pattern_id", patternID)
		writeError(w, http.StatusInternalServerError, "An error occurred while loading the pattern")
		return nil, false
	}
	// A pattern owned by another doctor is indistinguishable from a missing one.
	if pattern.DoctorID != doctorID {
		writeError(w, http.StatusNotFound, "Pattern not found")
		return nil, false
	}
	return pattern, true
}

func (h *Handler) invalidateAll(ctx context.Context, doctorID int64) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateAll(ctx, doctorID); err != nil {
		// A stale entry self-heals on its TTL; never fail the write for it.
		h.logger.Warn("failed to invalidate availability cache", "error", err, "doctor_id", doctorID)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
