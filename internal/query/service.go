// Package query provides the read-only views over the day's registry state.
package query

import (
	"fmt"
	"sort"
	"time"

	"github.com/yegors/gateops/internal/core"
)

// Service serves read-only views. It consumes registry snapshots only and
// never mutates.
type Service struct {
	registry *core.Registry
}

// NewService creates a query service over the given registry.
func NewService(registry *core.Registry) *Service {
	return &Service{registry: registry}
}

// FlightListing is the response envelope for flight list views.
type FlightListing struct {
	Timestamp time.Time     `json:"timestamp"`
	Count     int           `json:"count"`
	Flights   []core.Flight `json:"flights"`
}

// GateStatus describes one gate as either paired or free.
type GateStatus struct {
	GateName       string                    `json:"gate_name"`
	SupportedCodes []core.SpecialRequestCode `json:"supported_codes,omitempty"`
	FlightNumber   string                    `json:"flight_number,omitempty"`
	Free           bool                      `json:"free"`
}

// GateStatusListing is the response envelope for the gate status view.
type GateStatusListing struct {
	Timestamp time.Time    `json:"timestamp"`
	Count     int          `json:"count"`
	Gates     []GateStatus `json:"gates"`
}

// ListChronological returns every flight ordered by scheduled time, flight
// number breaking ties. The tie-break matches the bulk assignment pass so the
// two views of "the day in order" agree.
func (s *Service) ListChronological() FlightListing {
	flights := s.registry.Snapshot().Flights
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].ScheduledTime != flights[j].ScheduledTime {
			return flights[i].ScheduledTime < flights[j].ScheduledTime
		}
		return flights[i].Number < flights[j].Number
	})
	return FlightListing{
		Timestamp: time.Now().UTC(),
		Count:     len(flights),
		Flights:   flights,
	}
}

// ListByAirline returns the airline's flights in chronological order. Unknown
// airline codes fail with ErrNotFound.
func (s *Service) ListByAirline(airlineCode string) (FlightListing, error) {
	snap := s.registry.Snapshot()

	known := false
	for _, a := range snap.Airlines {
		if a.Code == airlineCode {
			known = true
			break
		}
	}
	if !known {
		return FlightListing{}, fmt.Errorf("airline %q: %w", airlineCode, core.ErrNotFound)
	}

	flights := make([]core.Flight, 0)
	for _, f := range snap.Flights {
		if f.AirlineCode == airlineCode {
			flights = append(flights, f)
		}
	}
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].ScheduledTime != flights[j].ScheduledTime {
			return flights[i].ScheduledTime < flights[j].ScheduledTime
		}
		return flights[i].Number < flights[j].Number
	})
	return FlightListing{
		Timestamp: time.Now().UTC(),
		Count:     len(flights),
		Flights:   flights,
	}, nil
}

// GateStatuses returns every gate with its current pairing, ordered by gate
// name.
func (s *Service) GateStatuses() GateStatusListing {
	gates := s.registry.Snapshot().Gates
	sort.Slice(gates, func(i, j int) bool { return gates[i].Name < gates[j].Name })

	out := make([]GateStatus, 0, len(gates))
	for _, g := range gates {
		out = append(out, GateStatus{
			GateName:       g.Name,
			SupportedCodes: g.SupportedRequestCodes,
			FlightNumber:   g.AssignedFlight,
			Free:           !g.Assigned(),
		})
	}
	return GateStatusListing{
		Timestamp: time.Now().UTC(),
		Count:     len(out),
		Gates:     out,
	}
}
