package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yegors/gateops/internal/assignment"
	"github.com/yegors/gateops/internal/billing"
	"github.com/yegors/gateops/internal/config"
	"github.com/yegors/gateops/internal/core"
	"github.com/yegors/gateops/internal/query"
	"github.com/yegors/gateops/internal/storage/sqlite"
	"github.com/yegors/gateops/pkg/logger"
)

// Handler implements the HTTP handlers over the engine operations. The
// storage fields are optional; when nil, nothing is archived.
type Handler struct {
	registry          *core.Registry
	assigner          *assignment.Engine
	biller            *billing.Engine
	queries           *query.Service
	config            *config.Config
	defaults          core.FeeSchedule
	assignmentStorage *sqlite.AssignmentStorage
	invoiceStorage    *sqlite.InvoiceStorage
	logger            *logger.Logger
}

// NewHandler creates the handler set.
func NewHandler(
	registry *core.Registry,
	assigner *assignment.Engine,
	biller *billing.Engine,
	queries *query.Service,
	cfg *config.Config,
	defaults core.FeeSchedule,
	assignmentStorage *sqlite.AssignmentStorage,
	invoiceStorage *sqlite.InvoiceStorage,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		registry:          registry,
		assigner:          assigner,
		biller:            biller,
		queries:           queries,
		config:            cfg,
		defaults:          defaults,
		assignmentStorage: assignmentStorage,
		invoiceStorage:    invoiceStorage,
		logger:            logger.Named("api-handler"),
	}
}

// GetHealth returns a liveness response.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// GetStationConfig returns the station section of the configuration.
func (h *Handler) GetStationConfig(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.config.Station)
}

// --- Airlines ---

type createAirlineRequest struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	FeeSchedule *core.FeeSchedule `json:"fee_schedule,omitempty"`
}

// CreateAirline adds an airline; a missing fee schedule inherits the
// configured defaults.
func (h *Handler) CreateAirline(w http.ResponseWriter, r *http.Request) {
	var req createAirlineRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	airline := core.Airline{Code: req.Code, Name: req.Name, FeeSchedule: h.defaults}
	if req.FeeSchedule != nil {
		airline.FeeSchedule = *req.FeeSchedule
	}
	if err := h.registry.AddAirline(airline); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, airline)
}

// GetAllAirlines lists airlines in insertion order.
func (h *Handler) GetAllAirlines(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.registry.Snapshot().Airlines)
}

// GetAirlineFlights lists one airline's flights chronologically.
func (h *Handler) GetAirlineFlights(w http.ResponseWriter, r *http.Request) {
	listing, err := h.queries.ListByAirline(chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, listing)
}

// GetAirlineInvoice computes (and, when storage is configured, archives) the
// airline's invoice for the day.
func (h *Handler) GetAirlineInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.biller.ComputeAirlineInvoice(chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if h.invoiceStorage != nil {
		if _, err := h.invoiceStorage.StoreInvoice(&inv); err != nil {
			h.logger.WithError(err).Error("Failed to archive invoice")
		}
	}
	h.respondJSON(w, http.StatusOK, inv)
}

// GetArchivedInvoices returns archived invoices for one airline.
func (h *Handler) GetArchivedInvoices(w http.ResponseWriter, r *http.Request) {
	if h.invoiceStorage == nil {
		h.respondJSON(w, http.StatusNotImplemented, errorResponse{Error: "archive storage is not configured"})
		return
	}
	records, err := h.invoiceStorage.GetInvoicesByAirline(chi.URLParam(r, "code"), 100)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, records)
}

// --- Flights ---

// CreateFlight adds a flight. Status defaults to Scheduled and the special
// request code to None.
func (h *Handler) CreateFlight(w http.ResponseWriter, r *http.Request) {
	var flight core.Flight
	if err := decodeJSON(r, &flight); err != nil {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if flight.Status == "" {
		flight.Status = core.StatusScheduled
	}
	if flight.SpecialRequestCode == "" {
		flight.SpecialRequestCode = core.RequestNone
	}
	if err := h.registry.AddFlight(flight); err != nil {
		h.respondError(w, err)
		return
	}
	created, err := h.registry.Flight(flight.Number)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

// GetAllFlights lists every flight in chronological order.
func (h *Handler) GetAllFlights(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.queries.ListChronological())
}

// GetFlightByNumber returns one flight.
func (h *Handler) GetFlightByNumber(w http.ResponseWriter, r *http.Request) {
	flight, err := h.registry.Flight(chi.URLParam(r, "number"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, flight)
}

type updateFlightRequest struct {
	AirlineCode        *string                  `json:"airline_code,omitempty"`
	Origin             *string                  `json:"origin,omitempty"`
	Destination        *string                  `json:"destination,omitempty"`
	ScheduledTime      *core.DayTime            `json:"scheduled_time,omitempty"`
	Status             *core.FlightStatus       `json:"status,omitempty"`
	SpecialRequestCode *core.SpecialRequestCode `json:"special_request_code,omitempty"`
}

// UpdateFlight applies a partial update to a flight.
func (h *Handler) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	var req updateFlightRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	upd := core.FlightUpdate{
		AirlineCode:        req.AirlineCode,
		Origin:             req.Origin,
		Destination:        req.Destination,
		ScheduledTime:      req.ScheduledTime,
		Status:             req.Status,
		SpecialRequestCode: req.SpecialRequestCode,
	}
	if err := h.registry.UpdateFlight(number, upd); err != nil {
		h.respondError(w, err)
		return
	}
	updated, err := h.registry.Flight(number)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, updated)
}

// DeleteFlight removes a flight, freeing its gate if one was assigned.
func (h *Handler) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.RemoveFlight(chi.URLParam(r, "number")); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// --- Gates ---

// CreateGate adds a boarding gate.
func (h *Handler) CreateGate(w http.ResponseWriter, r *http.Request) {
	var gate core.BoardingGate
	if err := decodeJSON(r, &gate); err != nil {
		h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := h.registry.AddGate(gate); err != nil {
		h.respondError(w, err)
		return
	}
	created, err := h.registry.Gate(gate.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, created)
}

// GetGateStatuses lists every gate with its current pairing.
func (h *Handler) GetGateStatuses(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.queries.GateStatuses())
}

// DeleteGate removes a gate, unassigning its flight if one was paired.
func (h *Handler) DeleteGate(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.RemoveGate(chi.URLParam(r, "name")); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// --- Assignments ---

// AssignGate pairs one flight with one gate.
func (h *Handler) AssignGate(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	gate := chi.URLParam(r, "gate")
	if err := h.assigner.Assign(number, gate); err != nil {
		h.respondError(w, err)
		return
	}
	h.archiveAssignment(number, gate, sqlite.SourceManual)
	flight, err := h.registry.Flight(number)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, flight)
}

// UnassignGate clears a flight's pairing.
func (h *Handler) UnassignGate(w http.ResponseWriter, r *http.Request) {
	if err := h.assigner.Unassign(chi.URLParam(r, "number")); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// AutoAssign runs the bulk assignment pass and returns its summary.
func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	summary, err := h.assigner.AutoAssignAll()
	if err != nil {
		h.respondError(w, err)
		return
	}
	for _, p := range summary.Pairings {
		h.archiveAssignment(p.FlightNumber, p.GateName, sqlite.SourceAuto)
	}
	h.respondJSON(w, http.StatusOK, summary)
}

// GetRecentAssignments returns archived assignment events.
func (h *Handler) GetRecentAssignments(w http.ResponseWriter, r *http.Request) {
	if h.assignmentStorage == nil {
		h.respondJSON(w, http.StatusNotImplemented, errorResponse{Error: "archive storage is not configured"})
		return
	}
	records, err := h.assignmentStorage.GetRecentAssignments(100)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, records)
}

// archiveAssignment stores an event when storage is configured. Archive
// failures are logged, never surfaced: the assignment itself already
// succeeded.
func (h *Handler) archiveAssignment(flightNumber, gateName, source string) {
	if h.assignmentStorage == nil {
		return
	}
	_, err := h.assignmentStorage.StoreAssignment(&sqlite.AssignmentRecord{
		FlightNumber: flightNumber,
		GateName:     gateName,
		Source:       source,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to archive assignment")
	}
}
