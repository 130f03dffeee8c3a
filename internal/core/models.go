package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SpecialRequestCode is a categorical tag on a flight indicating it needs a
// gate with matching physical capability.
type SpecialRequestCode string

const (
	RequestNone         SpecialRequestCode = "None"
	RequestLWTT         SpecialRequestCode = "LWTT" // large wide-body / tall-tail
	RequestOverSize     SpecialRequestCode = "OverSize"
	RequestHeavyVehicle SpecialRequestCode = "HeavyVehicle"
)

// SpecialRequestCodes lists every known code, RequestNone included.
var SpecialRequestCodes = []SpecialRequestCode{
	RequestNone,
	RequestLWTT,
	RequestOverSize,
	RequestHeavyVehicle,
}

// Valid reports whether the code is a member of the known set.
func (c SpecialRequestCode) Valid() bool {
	for _, known := range SpecialRequestCodes {
		if c == known {
			return true
		}
	}
	return false
}

// FlightStatus represents the handling state of a flight within the
// operational day.
type FlightStatus string

const (
	StatusScheduled FlightStatus = "Scheduled"
	StatusDelayed   FlightStatus = "Delayed"
	StatusBoarding  FlightStatus = "Boarding"
	StatusDeparted  FlightStatus = "Departed"
)

// Valid reports whether the status is a member of the known set.
func (s FlightStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusDelayed, StatusBoarding, StatusDeparted:
		return true
	}
	return false
}

// DayTime is a time-of-day value with minute resolution, used for
// chronological ordering within a single operational day.
type DayTime int

// ParseDayTime parses a "HH:MM" string into a DayTime.
func ParseDayTime(s string) (DayTime, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return DayTime(hh*60 + mm), nil
}

// String formats the time as "HH:MM".
func (t DayTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// MarshalJSON encodes the time as a "HH:MM" string.
func (t DayTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a "HH:MM" string.
func (t *DayTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDayTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Flight represents one flight movement on the operational day. The gate
// association is held as a gate name, never a pointer; the Registry keeps the
// two sides of the pairing in lockstep.
type Flight struct {
	Number             string             `json:"number"`
	AirlineCode        string             `json:"airline_code"`
	Origin             string             `json:"origin"`
	Destination        string             `json:"destination"`
	ScheduledTime      DayTime            `json:"scheduled_time"`
	Status             FlightStatus       `json:"status"`
	SpecialRequestCode SpecialRequestCode `json:"special_request_code"`
	AssignedGate       string             `json:"assigned_gate,omitempty"` // empty = unassigned
}

// Assigned reports whether the flight currently holds a gate.
func (f *Flight) Assigned() bool {
	return f.AssignedGate != ""
}

// BoardingGate represents one physical gate. SupportedRequestCodes lists the
// special-request codes the gate can service; an empty set means ordinary
// flights only.
type BoardingGate struct {
	Name                  string               `json:"name"`
	SupportedRequestCodes []SpecialRequestCode `json:"supported_request_codes,omitempty"`
	AssignedFlight        string               `json:"assigned_flight,omitempty"` // empty = free
}

// Assigned reports whether the gate currently holds a flight.
func (g *BoardingGate) Assigned() bool {
	return g.AssignedFlight != ""
}

// Supports reports whether the gate can service a flight carrying the given
// special-request code. Every gate supports RequestNone.
func (g *BoardingGate) Supports(code SpecialRequestCode) bool {
	if code == RequestNone {
		return true
	}
	for _, supported := range g.SupportedRequestCodes {
		if supported == code {
			return true
		}
	}
	return false
}

// FeeSchedule holds the per-airline billing parameters. All amounts are exact
// decimals; a special-request code missing from the table is a configuration
// gap surfaced as ErrMissingFeeRule at billing time, never a silent zero.
type FeeSchedule struct {
	ArrivalFee         decimal.Decimal                        `json:"arrival_fee"`
	DepartureFee       decimal.Decimal                        `json:"departure_fee"`
	GateBaseFee        decimal.Decimal                        `json:"gate_base_fee"`
	SpecialRequestFees map[SpecialRequestCode]decimal.Decimal `json:"special_request_fees,omitempty"`
}

// SpecialFee looks up the fee for a special-request code. RequestNone is
// always zero.
func (s *FeeSchedule) SpecialFee(code SpecialRequestCode) (decimal.Decimal, error) {
	if code == RequestNone {
		return decimal.Zero, nil
	}
	fee, ok := s.SpecialRequestFees[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("special request code %s: %w", code, ErrMissingFeeRule)
	}
	return fee, nil
}

// Airline represents one carrier operating on the day.
type Airline struct {
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	FeeSchedule FeeSchedule `json:"fee_schedule"`
}
