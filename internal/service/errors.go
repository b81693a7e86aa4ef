package service

import "errors"

// Errors returned by the engine. Callers match them with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidState         = errors.New("invalid state")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrConsistency          = errors.New("order total does not match its lines")
	ErrInvalidQuantity      = errors.New("quantity must be between 1 and 999")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidFilter        = errors.New("invalid filter")
)
