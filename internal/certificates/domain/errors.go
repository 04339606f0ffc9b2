package domain

import "errors"

var (
	// ErrNotFound is returned when the certificate does not exist.
	ErrNotFound = errors.New("certificate not found")

	// ErrInvalidTransition is returned for a move the state machine does
	// not allow (approving a paid certificate, rejecting a paid one, paying
	// anything not approved).
	ErrInvalidTransition = errors.New("invalid certificate status transition")

	// ErrCurrencyMismatch is returned when the paying account's currency
	// differs from the certificate's.
	ErrCurrencyMismatch = errors.New("account currency does not match certificate currency")

	// ErrDuplicateNumber is returned by the repository when the allocated
	// sequential number collided with a concurrent insert; the service
	// retries with a fresh number.
	ErrDuplicateNumber = errors.New("certificate number already taken")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("invalid input")
)
