package core

import "fmt"

// Pure validation predicates. None of these mutate state; callers decide
// whether to surface the error or retry with corrected input.

// ValidateAirline checks field-level constraints on an airline record.
func ValidateAirline(a *Airline) error {
	if a.Code == "" {
		return fmt.Errorf("airline code is required: %w", ErrValidation)
	}
	if a.Name == "" {
		return fmt.Errorf("airline %q: name is required: %w", a.Code, ErrValidation)
	}
	if a.FeeSchedule.ArrivalFee.IsNegative() || a.FeeSchedule.DepartureFee.IsNegative() || a.FeeSchedule.GateBaseFee.IsNegative() {
		return fmt.Errorf("airline %q: fees must not be negative: %w", a.Code, ErrValidation)
	}
	for code, fee := range a.FeeSchedule.SpecialRequestFees {
		if !code.Valid() || code == RequestNone {
			return fmt.Errorf("airline %q: unknown special request code %q in fee table: %w", a.Code, code, ErrValidation)
		}
		if fee.IsNegative() {
			return fmt.Errorf("airline %q: fee for %s must not be negative: %w", a.Code, code, ErrValidation)
		}
	}
	return nil
}

// ValidateFlight checks field-level constraints on a flight record. The
// airline reference is a cross-entity check performed by the Registry, which
// knows the airline collection.
func ValidateFlight(f *Flight) error {
	if f.Number == "" {
		return fmt.Errorf("flight number is required: %w", ErrValidation)
	}
	if f.AirlineCode == "" {
		return fmt.Errorf("flight %q: airline code is required: %w", f.Number, ErrValidation)
	}
	if f.Origin == "" || f.Destination == "" {
		return fmt.Errorf("flight %q: origin and destination are required: %w", f.Number, ErrValidation)
	}
	if f.Origin == f.Destination {
		return fmt.Errorf("flight %q: origin and destination must differ: %w", f.Number, ErrValidation)
	}
	if !f.Status.Valid() {
		return fmt.Errorf("flight %q: unknown status %q: %w", f.Number, f.Status, ErrValidation)
	}
	if !f.SpecialRequestCode.Valid() {
		return fmt.Errorf("flight %q: unknown special request code %q: %w", f.Number, f.SpecialRequestCode, ErrValidation)
	}
	return nil
}

// ValidateGate checks field-level constraints on a boarding gate record.
func ValidateGate(g *BoardingGate) error {
	if g.Name == "" {
		return fmt.Errorf("gate name is required: %w", ErrValidation)
	}
	seen := make(map[SpecialRequestCode]bool, len(g.SupportedRequestCodes))
	for _, code := range g.SupportedRequestCodes {
		if !code.Valid() || code == RequestNone {
			return fmt.Errorf("gate %q: unknown supported code %q: %w", g.Name, code, ErrValidation)
		}
		if seen[code] {
			return fmt.Errorf("gate %q: duplicate supported code %q: %w", g.Name, code, ErrValidation)
		}
		seen[code] = true
	}
	return nil
}

// ValidateGateCompatibility checks that a gate can service a flight's
// special-request code. A flight with RequestNone may use any gate.
func ValidateGateCompatibility(g *BoardingGate, f *Flight) error {
	if !g.Supports(f.SpecialRequestCode) {
		return fmt.Errorf("gate %q does not support %s (flight %q): %w",
			g.Name, f.SpecialRequestCode, f.Number, ErrIncompatibleGate)
	}
	return nil
}
