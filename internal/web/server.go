// Package web provides the JSON HTTP API for field visits, plans, and
// customers.
package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/evcraddock/field-visits/internal/customer"
	"github.com/evcraddock/field-visits/internal/history"
	"github.com/evcraddock/field-visits/internal/logging"
	"github.com/evcraddock/field-visits/internal/photo"
	"github.com/evcraddock/field-visits/internal/plan"
	"github.com/evcraddock/field-visits/internal/visit"
)

// Config wires the server to its stores and services.
type Config struct {
	Visits    visit.Store
	History   *history.Service
	Plans     *plan.Service
	Customers *customer.Repository
	// Uploader is optional; photo upload returns 503 without it.
	Uploader *photo.Uploader

	// DefaultUser is the acting user when a request names none.
	DefaultUser string
	CORSOrigins []string

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Server is the API HTTP server.
type Server struct {
	visits      visit.Store
	history     *history.Service
	plans       *plan.Service
	customers   *customer.Repository
	uploader    *photo.Uploader
	defaultUser string
	now         func() time.Time
	router      chi.Router
}

// NewServer creates an API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Visits == nil || cfg.History == nil || cfg.Plans == nil || cfg.Customers == nil {
		return nil, errors.New("web: visits, history, plans and customers are required")
	}

	s := &Server{
		visits:      cfg.Visits,
		history:     cfg.History,
		plans:       cfg.Plans,
		customers:   cfg.Customers,
		uploader:    cfg.Uploader,
		defaultUser: cfg.DefaultUser,
		now:         cfg.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logging.RequestID)
	r.Use(logging.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", userHeader, logging.RequestIDHeader},
		ExposedHeaders: []string{logging.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/history", s.apiHistory)

		r.Route("/visits", func(r chi.Router) {
			r.Get("/", s.apiListVisits)
			r.Post("/", s.apiAddVisit)
			r.Get("/export.csv", s.apiExportCSV)
			r.Get("/export.xlsx", s.apiExportXLSX)
			r.Get("/map", s.apiVisitMap)
		})

		r.Post("/photos", s.apiUploadPhoto)

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", s.apiListPlans)
			r.Post("/", s.apiAddPlan)
			r.Get("/today", s.apiTodayPlans)
			r.Post("/adhoc", s.apiAddAdHoc)
			r.Put("/{id}/status", s.apiUpdatePlanStatus)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", s.apiListCustomers)
			r.Post("/", s.apiAddCustomer)
			r.Get("/lite", s.apiListCustomersLite)
			r.Get("/{code}", s.apiGetCustomer)
		})
	})

	s.router = r
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
