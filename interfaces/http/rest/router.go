package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"inspect-backend/application/inspections"
	"inspect-backend/interfaces/http/rest/handlers"
	"inspect-backend/interfaces/http/rest/middleware"
	apperrors "inspect-backend/pkg/errors"
)

// Router creates and configures the HTTP router
type Router struct {
	inspectionService *inspections.Service
	venueService      *inspections.VenueService
	enableCORS        bool
	logger            *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	inspectionService *inspections.Service,
	venueService *inspections.VenueService,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		inspectionService: inspectionService,
		venueService:      venueService,
		enableCORS:        enableCORS,
		logger:            logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(apperrors.NewErrorHandler(rt.logger, false).Middleware)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/inspections", func(r chi.Router) {
			inspectionHandler := handlers.NewInspectionHandler(rt.inspectionService, rt.logger)
			r.Post("/", inspectionHandler.CreateInspection)
			r.Post("/save", inspectionHandler.SaveInspection)
			r.Get("/", inspectionHandler.ListInspections)
			r.Get("/{inspectionID}/items", inspectionHandler.GetItems)
			r.Get("/{inspectionID}/summary", inspectionHandler.GetSummary)
			r.Get("/{inspectionID}/complete", inspectionHandler.CheckComplete)
			r.Post("/{inspectionID}/reopen", inspectionHandler.ReopenInspection)
			r.Delete("/{inspectionID}", inspectionHandler.DeleteInspection)
		})

		r.Route("/venues", func(r chi.Router) {
			venueHandler := handlers.NewVenueHandler(rt.venueService, rt.logger)
			r.Post("/", venueHandler.PutVenue)
			r.Get("/", venueHandler.ListVenues)
			r.Get("/{venueID}", venueHandler.GetVenue)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
