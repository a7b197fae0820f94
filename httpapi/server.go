// Package httpapi exposes the marketplace over HTTP: a chi router, a JSON
// envelope, and the mapping from domain faults to status codes.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"parcelflow/auth"
	"parcelflow/job"
	"parcelflow/locker"
)

// Server wires the domain services to routes.
type Server struct {
	log     *logrus.Logger
	jobs    *job.Service
	auth    *auth.Service
	lockers *locker.Service
	router  chi.Router
}

// NewServer builds the router over the given services.
func NewServer(log *logrus.Logger, jobs *job.Service, authSvc *auth.Service, lockers *locker.Service) *Server {
	s := &Server{
		log:     log,
		jobs:    jobs,
		auth:    authSvc,
		lockers: lockers,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(s.identity)

	r.Get("/health", s.handleHealth)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/nonce", s.handleNonce)
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Get("/me", s.handleMe)
	})

	r.Route("/api/jobs", func(r chi.Router) {
		r.Get("/", s.handleListJobs)
		r.Post("/", s.handleCreateJob)
		r.Get("/available", s.handleAvailableJobs)
		r.Get("/my-jobs", s.handleMyJobs)
		r.Get("/{id}", s.handleGetJob)
		r.Post("/{id}/accept", s.handleAcceptJob)
		r.Post("/{id}/decline", s.handleDeclineJob)
		r.Post("/{id}/pickup", s.handleConfirmPickup)
		r.Post("/{id}/deliver", s.handleConfirmDelivery)
		r.Post("/{id}/pay", s.handleConfirmPayment)
		r.Post("/{id}/cancel", s.handleCancelJob)
		r.Post("/{id}/rate", s.handleRateJob)
	})

	r.Route("/api/pricing", func(r chi.Router) {
		r.Post("/calculate", s.handlePricingCalculate)
		r.Post("/estimate", s.handlePricingEstimate)
		r.Get("/rates", s.handlePricingRates)
	})

	r.Route("/api/lockers", func(r chi.Router) {
		r.Get("/", s.handleListLockers)
		r.Post("/", s.handleCreateLocker)
		r.Post("/seed", s.handleSeedLockers)
		r.Get("/{id}", s.handleGetLocker)
		r.Put("/{id}", s.handleUpdateLocker)
		r.Delete("/{id}", s.handleDeleteLocker)
	})

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, envelope{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}
