package model

import "errors"

// Error kinds surfaced by the ledger and its collaborators. Callers match them
// with errors.Is; the message of the wrapping error carries the detail.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnavailable       = errors.New("store unavailable")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("already exists")
)
