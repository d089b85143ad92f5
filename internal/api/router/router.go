package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/xndbogdan/doctor-appointments-api/internal/bookings"
	"github.com/xndbogdan/doctor-appointments-api/internal/doctors"
	httpmiddleware "github.com/xndbogdan/doctor-appointments-api/internal/http/middleware"
	"github.com/xndbogdan/doctor-appointments-api/internal/patients"
	"github.com/xndbogdan/doctor-appointments-api/internal/patterns"
	"github.com/xndbogdan/doctor-appointments-api/internal/slots"
	"github.com/xndbogdan/doctor-appointments-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	DoctorsHandler  *doctors.Handler
	PatientsHandler *patients.Handler
	PatternsHandler *patterns.Handler
	SlotsHandler    *slots.Handler
	BookingsHandler *bookings.Handler
	MetricsHandler  http.Handler

	CORSAllowedOrigins []string

	// Booking endpoint rate limit; zero disables it.
	BookingRatePerSec float64
	BookingBurst      int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/doctors", func(r chi.Router) {
		r.Get("/", cfg.DoctorsHandler.Index)
		r.Post("/", cfg.DoctorsHandler.Store)
		r.Route("/{doctorID}", func(r chi.Router) {
			r.Get("/", cfg.DoctorsHandler.Show)
			r.Get("/slots", cfg.SlotsHandler.Index)
			r.Post("/slots", cfg.PatternsHandler.Create)
			r.Route("/patterns", func(r chi.Router) {
				r.Get("/", cfg.PatternsHandler.Index)
				r.Patch("/{patternID}", cfg.PatternsHandler.Update)
				r.Delete("/{patternID}", cfg.PatternsHandler.Destroy)
			})
		})
	})

	r.Route("/patients", func(r chi.Router) {
		r.Post("/", cfg.PatientsHandler.Store)
		r.Route("/{patientID}", func(r chi.Router) {
			r.Get("/", cfg.PatientsHandler.Show)
			r.Get("/bookings", cfg.BookingsHandler.Index)
		})
	})

	r.Route("/slots", func(r chi.Router) {
		if cfg.BookingRatePerSec > 0 && cfg.BookingBurst > 0 {
			r.Use(httpmiddleware.RateLimit(cfg.BookingRatePerSec, cfg.BookingBurst))
		}
		r.Post("/{slotID}/book", cfg.SlotsHandler.Book)
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
