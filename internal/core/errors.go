package core

import "errors"

// Error taxonomy for the engine. Callers match with errors.Is; call sites wrap
// with fmt.Errorf("...: %w", ...) to add the offending key.
var (
	// ErrDuplicateKey is returned when a create operation would violate a
	// uniqueness invariant (flight number, gate name, airline code).
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound is returned when an operation references an unknown
	// identifier.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyAssigned is returned when an assignment targets a flight or
	// gate that already holds a pairing.
	ErrAlreadyAssigned = errors.New("already assigned")

	// ErrIncompatibleGate is returned when a gate does not support the
	// flight's special-request code.
	ErrIncompatibleGate = errors.New("incompatible gate")

	// ErrMissingFeeRule is returned when billing finds no fee-schedule entry
	// for a flight's special-request code.
	ErrMissingFeeRule = errors.New("missing fee rule")

	// ErrValidation is returned for field-level constraint violations on
	// entity records.
	ErrValidation = errors.New("validation failed")
)
