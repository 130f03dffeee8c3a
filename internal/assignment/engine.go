// Package assignment pairs flights with compatible boarding gates, one at a
// time or in a deterministic bulk pass.
package assignment

import (
	"sort"

	"github.com/yegors/gateops/internal/core"
	"github.com/yegors/gateops/pkg/logger"
)

// Engine performs gate assignments against a registry.
type Engine struct {
	registry *core.Registry
	logger   *logger.Logger
}

// NewEngine creates a new assignment engine.
func NewEngine(registry *core.Registry, logger *logger.Logger) *Engine {
	return &Engine{
		registry: registry,
		logger:   logger.Named("assignment"),
	}
}

// Assign pairs one flight with one gate. Preconditions: both exist, both are
// unassigned, and the gate supports the flight's special-request code. All
// failures are non-mutating.
func (e *Engine) Assign(flightNumber, gateName string) error {
	err := e.registry.Update(func(tx *core.Tx) error {
		return tx.Pair(flightNumber, gateName)
	})
	if err != nil {
		return err
	}
	e.logger.Info("Assigned gate",
		logger.String("flight", flightNumber),
		logger.String("gate", gateName),
	)
	return nil
}

// Unassign clears a flight's gate pairing, freeing the gate.
func (e *Engine) Unassign(flightNumber string) error {
	err := e.registry.Update(func(tx *core.Tx) error {
		return tx.Unpair(flightNumber)
	})
	if err != nil {
		return err
	}
	e.logger.Info("Cleared gate assignment", logger.String("flight", flightNumber))
	return nil
}

// Pairing records one flight→gate match made by a bulk pass.
type Pairing struct {
	FlightNumber string `json:"flight_number"`
	GateName     string `json:"gate_name"`
}

// Summary reports the outcome of a bulk pass. Skipped flights are a normal
// outcome, not an error: they simply found no compatible free gate this pass.
type Summary struct {
	Assigned int       `json:"assigned"`
	Pairings []Pairing `json:"pairings,omitempty"`
	Skipped  []string  `json:"skipped,omitempty"` // flight numbers left unassigned
}

// AutoAssignAll assigns every currently-unassigned flight it can, in one
// greedy pass. Flights are processed in ascending scheduled-time order with
// flight number as the tie-break; for each flight, gates are searched in
// ascending name order and the first free compatible gate wins.
//
// The pass is single-shot: matches already made within the call are never
// revisited, so the result is not guaranteed to be a maximum matching; a
// known limitation accepted for predictability. Re-invoking only affects
// flights still unassigned, which makes the operation idempotent between
// registry changes. The whole pass runs inside one exclusive critical section.
func (e *Engine) AutoAssignAll() (Summary, error) {
	var summary Summary
	err := e.registry.Update(func(tx *core.Tx) error {
		candidates := unassignedByScheduleOrder(tx.Flights())
		gateNames := freeGatesByName(tx.Gates())

		for _, flight := range candidates {
			matched := ""
			for i, name := range gateNames {
				gate, err := tx.Gate(name)
				if err != nil {
					return err
				}
				if gate.Supports(flight.SpecialRequestCode) {
					if err := tx.Pair(flight.Number, name); err != nil {
						return err
					}
					matched = name
					gateNames = append(gateNames[:i], gateNames[i+1:]...)
					break
				}
			}
			if matched == "" {
				summary.Skipped = append(summary.Skipped, flight.Number)
				continue
			}
			summary.Assigned++
			summary.Pairings = append(summary.Pairings, Pairing{
				FlightNumber: flight.Number,
				GateName:     matched,
			})
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	e.logger.Info("Bulk assignment pass complete",
		logger.Int("assigned", summary.Assigned),
		logger.Int("skipped", len(summary.Skipped)),
	)
	return summary, nil
}

// unassignedByScheduleOrder filters to unassigned flights and sorts them by
// scheduled time, then flight number. The ordering decides which flight gets
// a scarce gate, so it must be deterministic.
func unassignedByScheduleOrder(flights []core.Flight) []core.Flight {
	out := make([]core.Flight, 0, len(flights))
	for _, f := range flights {
		if !f.Assigned() {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledTime != out[j].ScheduledTime {
			return out[i].ScheduledTime < out[j].ScheduledTime
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// freeGatesByName returns the names of all free gates in ascending order.
func freeGatesByName(gates []core.BoardingGate) []string {
	out := make([]string, 0, len(gates))
	for _, g := range gates {
		if !g.Assigned() {
			out = append(out, g.Name)
		}
	}
	sort.Strings(out)
	return out
}
