package domain

import "errors"

var (
	// ErrNotFound is returned when an account or entry does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrInsufficientFunds is returned when a debit would take the balance
	// below zero. The balance is left untouched.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidTransfer is returned when source and destination are the
	// same account.
	ErrInvalidTransfer = errors.New("source and destination accounts must differ")

	// ErrMissingExchangeRate is returned for a cross-currency transfer
	// without a positive exchange rate.
	ErrMissingExchangeRate = errors.New("cross-currency transfer requires a positive exchange rate")

	// ErrVersionConflict is returned by the account repository when an
	// optimistic-lock update matched no row; callers re-read and retry.
	ErrVersionConflict = errors.New("account modified concurrently")

	// ErrValidation is returned for malformed input (non-positive amount,
	// unknown kind or currency, empty concept).
	ErrValidation = errors.New("invalid input")
)
