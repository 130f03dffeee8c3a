package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yegors/gateops/internal/core"
)

// DiscountKind distinguishes percentage from flat-amount reductions.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFlat       DiscountKind = "flat"
)

// DiscountRule is one stackable promotional reduction. Percentage values are
// whole percents (10 = 10%). An empty AirlineCode applies the rule to every
// airline.
type DiscountRule struct {
	Name        string          `json:"name"`
	Kind        DiscountKind    `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	Priority    int             `json:"priority"`
	AirlineCode string          `json:"airline_code,omitempty"`
}

// Validate checks the rule's fields.
func (r *DiscountRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("discount rule name is required: %w", core.ErrValidation)
	}
	if r.Kind != DiscountPercentage && r.Kind != DiscountFlat {
		return fmt.Errorf("discount rule %q: unknown kind %q: %w", r.Name, r.Kind, core.ErrValidation)
	}
	if r.Value.IsNegative() {
		return fmt.Errorf("discount rule %q: value must not be negative: %w", r.Name, core.ErrValidation)
	}
	if r.Kind == DiscountPercentage && r.Value.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("discount rule %q: percentage above 100: %w", r.Name, core.ErrValidation)
	}
	return nil
}

// FlightDirection classifies a movement relative to the station airport.
type FlightDirection string

const (
	DirectionArrival   FlightDirection = "arrival"
	DirectionDeparture FlightDirection = "departure"
)

// InvoiceLine is the per-flight portion of an invoice, kept for audit.
type InvoiceLine struct {
	FlightNumber string          `json:"flight_number"`
	Direction    FlightDirection `json:"direction"`
	MovementFee  decimal.Decimal `json:"movement_fee"`
	GateName     string          `json:"gate_name,omitempty"`
	GateFee      decimal.Decimal `json:"gate_fee"`
	SpecialCode  string          `json:"special_code,omitempty"`
	SpecialFee   decimal.Decimal `json:"special_fee"`
}

// AppliedDiscount records one discount taken on an invoice, in application
// order.
type AppliedDiscount struct {
	RuleName string          `json:"rule_name"`
	Kind     DiscountKind    `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
}

// Invoice is the structured billing breakdown for one airline for the day.
// Total = ArrivalDepartureFees + GateBaseFees + SpecialRequestFees -
// DiscountTotal, all in exact decimal arithmetic.
type Invoice struct {
	AirlineCode          string            `json:"airline_code"`
	AirlineName          string            `json:"airline_name"`
	FlightCount          int               `json:"flight_count"`
	Lines                []InvoiceLine     `json:"lines,omitempty"`
	ArrivalDepartureFees decimal.Decimal   `json:"arrival_departure_fees"`
	GateBaseFees         decimal.Decimal   `json:"gate_base_fees"`
	SpecialRequestFees   decimal.Decimal   `json:"special_request_fees"`
	Subtotal             decimal.Decimal   `json:"subtotal"`
	Discounts            []AppliedDiscount `json:"discounts,omitempty"`
	DiscountTotal        decimal.Decimal   `json:"discount_total"`
	Total                decimal.Decimal   `json:"total"`
	GeneratedAt          time.Time         `json:"generated_at"`
}
