// Package billing computes per-airline invoices: movement fees, gate base
// fees, special-request fees, and stackable promotional discounts.
package billing

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yegors/gateops/internal/core"
	"github.com/yegors/gateops/pkg/logger"
)

// Engine computes invoices from registry snapshots. Direction of a movement
// is resolved against the station airport: a flight whose destination is the
// station is an arrival, everything else is billed as a departure.
type Engine struct {
	registry       *core.Registry
	stationAirport string
	rules          []DiscountRule
	logger         *logger.Logger
}

// NewEngine creates a billing engine. Discount rules are validated once here;
// their registration order does not matter, application order is fixed.
func NewEngine(registry *core.Registry, stationAirport string, rules []DiscountRule, logger *logger.Logger) (*Engine, error) {
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return nil, err
		}
	}
	return &Engine{
		registry:       registry,
		stationAirport: stationAirport,
		rules:          append([]DiscountRule(nil), rules...),
		logger:         logger.Named("billing"),
	}, nil
}

// ComputeAirlineInvoice produces the billing breakdown for one airline over
// the operational day. It reads a consistent snapshot, so a concurrent
// assignment cannot surface as a half-updated pairing. A flight whose
// special-request code has no fee-schedule entry fails the whole computation
// with ErrMissingFeeRule rather than billing zero.
func (e *Engine) ComputeAirlineInvoice(airlineCode string) (Invoice, error) {
	snap := e.registry.Snapshot()

	var airline *core.Airline
	for i := range snap.Airlines {
		if snap.Airlines[i].Code == airlineCode {
			airline = &snap.Airlines[i]
			break
		}
	}
	if airline == nil {
		return Invoice{}, fmt.Errorf("airline %q: %w", airlineCode, core.ErrNotFound)
	}

	inv := Invoice{
		AirlineCode:          airline.Code,
		AirlineName:          airline.Name,
		ArrivalDepartureFees: decimal.Zero,
		GateBaseFees:         decimal.Zero,
		SpecialRequestFees:   decimal.Zero,
		GeneratedAt:          time.Now().UTC(),
	}

	for _, flight := range snap.Flights {
		if flight.AirlineCode != airline.Code {
			continue
		}
		line, err := e.flightLine(airline, flight)
		if err != nil {
			return Invoice{}, err
		}
		inv.Lines = append(inv.Lines, line)
		inv.FlightCount++
		inv.ArrivalDepartureFees = inv.ArrivalDepartureFees.Add(line.MovementFee)
		inv.GateBaseFees = inv.GateBaseFees.Add(line.GateFee)
		inv.SpecialRequestFees = inv.SpecialRequestFees.Add(line.SpecialFee)
	}

	inv.Subtotal = inv.ArrivalDepartureFees.Add(inv.GateBaseFees).Add(inv.SpecialRequestFees)
	inv.Discounts, inv.DiscountTotal = ApplyDiscounts(inv.Subtotal, e.rulesFor(airline.Code))
	inv.Total = inv.Subtotal.Sub(inv.DiscountTotal)

	e.logger.Debug("Computed invoice",
		logger.String("airline", airline.Code),
		logger.Int("flights", inv.FlightCount),
		logger.String("total", inv.Total.String()),
	)
	return inv, nil
}

// ComputeAllInvoices produces invoices for every airline, in registry
// insertion order.
func (e *Engine) ComputeAllInvoices() ([]Invoice, error) {
	snap := e.registry.Snapshot()
	out := make([]Invoice, 0, len(snap.Airlines))
	for _, airline := range snap.Airlines {
		inv, err := e.ComputeAirlineInvoice(airline.Code)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func (e *Engine) flightLine(airline *core.Airline, flight core.Flight) (InvoiceLine, error) {
	line := InvoiceLine{
		FlightNumber: flight.Number,
		GateFee:      decimal.Zero,
		SpecialFee:   decimal.Zero,
	}

	if flight.Destination == e.stationAirport {
		line.Direction = DirectionArrival
		line.MovementFee = airline.FeeSchedule.ArrivalFee
	} else {
		line.Direction = DirectionDeparture
		line.MovementFee = airline.FeeSchedule.DepartureFee
	}

	if flight.Assigned() {
		line.GateName = flight.AssignedGate
		line.GateFee = airline.FeeSchedule.GateBaseFee
	}

	if flight.SpecialRequestCode != core.RequestNone {
		line.SpecialCode = string(flight.SpecialRequestCode)
	}
	fee, err := airline.FeeSchedule.SpecialFee(flight.SpecialRequestCode)
	if err != nil {
		return InvoiceLine{}, fmt.Errorf("flight %q: %w", flight.Number, err)
	}
	line.SpecialFee = fee

	return line, nil
}

// rulesFor filters the rule set to those applying to the airline.
func (e *Engine) rulesFor(airlineCode string) []DiscountRule {
	out := make([]DiscountRule, 0, len(e.rules))
	for _, r := range e.rules {
		if r.AirlineCode == "" || r.AirlineCode == airlineCode {
			out = append(out, r)
		}
	}
	return out
}

// ApplyDiscounts applies stackable discounts to a subtotal in the canonical
// order: percentage rules first, each computed on the pre-discount subtotal,
// then flat rules. Within each kind, rules apply by ascending priority, name
// breaking ties, so the result is deterministic regardless of registration
// order. The combined discount never drives the total below zero.
func ApplyDiscounts(subtotal decimal.Decimal, rules []DiscountRule) ([]AppliedDiscount, decimal.Decimal) {
	ordered := append([]DiscountRule(nil), rules...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Kind != ordered[j].Kind {
			return ordered[i].Kind == DiscountPercentage
		}
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].Name < ordered[j].Name
	})

	hundred := decimal.NewFromInt(100)
	remaining := subtotal
	total := decimal.Zero
	var applied []AppliedDiscount

	for _, rule := range ordered {
		var amount decimal.Decimal
		switch rule.Kind {
		case DiscountPercentage:
			amount = subtotal.Mul(rule.Value).Div(hundred)
		case DiscountFlat:
			amount = rule.Value
		}
		if amount.GreaterThan(remaining) {
			amount = remaining
		}
		remaining = remaining.Sub(amount)
		total = total.Add(amount)
		applied = append(applied, AppliedDiscount{
			RuleName: rule.Name,
			Kind:     rule.Kind,
			Amount:   amount,
		})
	}
	return applied, total
}
