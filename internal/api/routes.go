package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yegors/gateops/internal/assignment"
	"github.com/yegors/gateops/internal/billing"
	"github.com/yegors/gateops/internal/config"
	"github.com/yegors/gateops/internal/core"
	"github.com/yegors/gateops/internal/query"
	"github.com/yegors/gateops/internal/storage/sqlite"
	"github.com/yegors/gateops/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(
	registry *core.Registry,
	assigner *assignment.Engine,
	biller *billing.Engine,
	queries *query.Service,
	cfg *config.Config,
	defaults core.FeeSchedule,
	assignmentStorage *sqlite.AssignmentStorage,
	invoiceStorage *sqlite.InvoiceStorage,
	logger *logger.Logger,
) *Router {
	return &Router{
		handler:    NewHandler(registry, assigner, biller, queries, cfg, defaults, assignmentStorage, invoiceStorage, logger),
		middleware: NewMiddleware(logger),
		config:     cfg,
		logger:     logger.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		// Airline routes
		router.Get("/airlines", r.handler.GetAllAirlines)
		router.Post("/airlines", r.handler.CreateAirline)
		router.Get("/airlines/{code}/flights", r.handler.GetAirlineFlights)
		router.Get("/airlines/{code}/invoice", r.handler.GetAirlineInvoice)
		router.Get("/airlines/{code}/invoices", r.handler.GetArchivedInvoices)

		// Flight routes
		router.Get("/flights", r.handler.GetAllFlights)
		router.Post("/flights", r.handler.CreateFlight)
		router.Get("/flights/{number}", r.handler.GetFlightByNumber)
		router.Patch("/flights/{number}", r.handler.UpdateFlight)
		router.Delete("/flights/{number}", r.handler.DeleteFlight)
		router.Post("/flights/{number}/assign/{gate}", r.handler.AssignGate)
		router.Delete("/flights/{number}/assignment", r.handler.UnassignGate)

		// Gate routes
		router.Get("/gates", r.handler.GetGateStatuses)
		router.Post("/gates", r.handler.CreateGate)
		router.Delete("/gates/{name}", r.handler.DeleteGate)

		// Bulk assignment routes
		router.Post("/assignments/auto", r.handler.AutoAssign)
		router.Get("/assignments/recent", r.handler.GetRecentAssignments)

		// Health check
		router.Get("/health", r.handler.GetHealth)

		// Station configuration
		router.Get("/station", r.handler.GetStationConfig)
	})

	return router
}
