// Package server wires the router, middleware chain and HTTP lifecycle for
// the Medica web client. It includes graceful shutdown with proper error
// handling and logging.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medica/medica-web/config"
	"github.com/medica/medica-web/handlers"
	"github.com/medica/medica-web/logging"
	"github.com/medica/medica-web/metrics"
	"github.com/medica/medica-web/session"
	"github.com/medica/medica-web/views"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	router   chi.Router
	handlers *handlers.Handler
	sessions *session.Manager
	config   *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, h *handlers.Handler, sessions *session.Manager) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:   router,
		handlers: h,
		sessions: sessions,
		config:   cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLoggingService.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(metrics.Metrics)
	s.router.Use(RateLimitHandler)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	h := s.handlers

	// Public routes
	s.router.Get("/", h.LoginPage)
	s.router.Get("/login", h.LoginPage)
	s.router.Post("/login", h.Login)
	s.router.Get("/logout", h.Logout)
	s.router.Post("/logout", h.Logout)
	s.router.Get("/health", h.HealthCheck)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Admin area
	s.router.Route("/admin", func(r chi.Router) {
		r.Use(views.RequireRole(s.sessions, session.RoleAdmin))
		r.Get("/", h.AdminHome)

		r.Get("/doctors", h.ListDoctors)
		r.Get("/doctors/new", h.NewDoctorForm)
		r.Post("/doctors", h.CreateDoctor)
		r.Get("/doctors/{id}/edit", h.EditDoctorForm)
		r.Post("/doctors/{id}", h.UpdateDoctor)
		r.Get("/doctors/{id}/delete", h.ConfirmDeleteDoctor)
		r.Post("/doctors/{id}/delete", h.DeleteDoctor)

		r.Get("/admins", h.ListAdmins)
		r.Get("/admins/new", h.NewAdminForm)
		r.Post("/admins", h.CreateAdmin)
		r.Get("/admins/{id}/edit", h.EditAdminForm)
		r.Post("/admins/{id}", h.UpdateAdmin)
		r.Get("/admins/{id}/delete", h.ConfirmDeleteAdmin)
		r.Post("/admins/{id}/delete", h.DeleteAdmin)

		r.Get("/companies", h.ListCompanies)
		r.Get("/companies/new", h.NewCompanyForm)
		r.Post("/companies", h.CreateCompany)
		r.Get("/companies/{id}/edit", h.EditCompanyForm)
		r.Post("/companies/{id}", h.UpdateCompany)
		r.Get("/companies/{id}/delete", h.ConfirmDeleteCompany)
		r.Post("/companies/{id}/delete", h.DeleteCompany)

		r.Get("/logs", h.ListActionLogs)
	})

	// Doctor area
	s.router.Route("/doctor", func(r chi.Router) {
		r.Use(views.RequireRole(s.sessions, session.RoleDoctor))
		r.Get("/", h.DoctorHome)

		r.Get("/patients", h.ListPatients)
		r.Get("/patients/new", h.NewPatientForm)
		r.Post("/patients", h.CreatePatient)
		r.Get("/patients/{id}", h.PatientDetail)
		r.Get("/patients/{id}/edit", h.EditPatientForm)
		r.Post("/patients/{id}", h.UpdatePatient)
		r.Get("/patients/{id}/delete", h.ConfirmDeletePatient)
		r.Post("/patients/{id}/delete", h.DeletePatient)

		r.Get("/patients/{id}/visits/new", h.NewVisitForm)
		r.Post("/patients/{id}/visits", h.CreateVisit)
		r.Get("/patients/{id}/visits/{visitID}/edit", h.EditVisitForm)
		r.Post("/patients/{id}/visits/{visitID}", h.UpdateVisit)
		r.Get("/patients/{id}/visits/{visitID}/delete", h.ConfirmDeleteVisit)
		r.Post("/patients/{id}/visits/{visitID}/delete", h.DeleteVisit)

		r.Get("/recommend", h.RecommendForm)
		r.Post("/recommend", h.Recommend)
		r.Get("/suitability", h.SuitabilityForm)
		r.Post("/suitability", h.Suitability)
		r.Get("/interactions", h.InteractionsForm)
		r.Post("/interactions", h.CheckInteractions)

		r.Get("/companies", h.DoctorCompanies)
		r.Post("/companies/{id}/favorite", h.ToggleFavorite)
		r.Get("/companies/{id}/medicines", h.CompanyMedicines)

		r.Get("/medicines", h.SearchMedicinesPage)
		r.Get("/medicines/info", h.MedicineInfo)
		r.Get("/medicines/{companyID}/{medicineID}", h.MedicineDetail)
	})

	// Pharma company area
	s.router.Route("/pharma", func(r chi.Router) {
		r.Use(views.RequireRole(s.sessions, session.RolePharmaCompany))
		r.Get("/", h.PharmaHome)

		r.Get("/medicines", h.ListOwnMedicines)
		r.Get("/medicines/new", h.NewMedicineForm)
		r.Post("/medicines", h.CreateMedicine)
		r.Get("/medicines/{id}/edit", h.EditMedicineForm)
		r.Post("/medicines/{id}", h.UpdateMedicine)
		r.Get("/medicines/{id}/delete", h.ConfirmDeleteMedicine)
		r.Post("/medicines/{id}/delete", h.DeleteMedicine)

		r.Get("/upload", h.UploadForm)
		r.Post("/upload", h.UploadDataset)
	})

	// Typeahead JSON API, same-origin only
	s.router.Route("/api/suggest", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{},
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(views.RequireRole(s.sessions, session.RoleDoctor))
		r.Get("/medicines", h.SuggestMedicines)
		r.Get("/interactions", h.SuggestInteractions)
	})
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	// Wait a bit for any ongoing requests to complete
	logging.Info("Waiting for ongoing requests to complete...")
	time.Sleep(2 * time.Second)

	logging.Info("Server shutdown complete")
	return nil
}
