package domain

import "errors"

var (
	// ErrNotFound is returned when the liquidation, property, or charge
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadySettled is returned when saving or settling a liquidation
	// that is already settled.
	ErrAlreadySettled = errors.New("liquidation already settled")

	// ErrNoCoefficients is returned by settle when no property in the
	// building has a positive coefficient.
	ErrNoCoefficients = errors.New("no property with a positive coefficient")

	// ErrChargeAlreadyPaid is returned when paying a charge twice.
	ErrChargeAlreadyPaid = errors.New("unit charge already paid")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("invalid input")
)
