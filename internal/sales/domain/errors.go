package domain

import "errors"

var (
	// ErrNotFound is returned when the sale does not exist.
	ErrNotFound = errors.New("sale not found")

	// ErrInvalidInstallment is returned when the targeted installment does
	// not exist or is already fully paid.
	ErrInvalidInstallment = errors.New("installment missing or already paid")

	// ErrDownPaymentPaid is returned when recording the down payment twice.
	ErrDownPaymentPaid = errors.New("down payment already paid")

	// ErrInvalidTransition is returned for a status change outside the
	// administrative lifecycle, or an edit after deed/cancellation.
	ErrInvalidTransition = errors.New("invalid sale status transition")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("invalid input")
)
