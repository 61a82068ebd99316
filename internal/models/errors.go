package models

import "errors"

// Failure kinds returned by ledger operations. Every mutating operation either
// fully commits or returns exactly one of these (possibly wrapped); callers
// branch with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyPurchased   = errors.New("already purchased")
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)
