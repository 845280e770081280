package services

import (
	"errors"
	"fmt"
)

// Error taxonomy for the loyalty core. Every operation returns one of
// these (or wraps a database error); nothing is retried internally.
var (
	ErrTableNotFound  = errors.New("table not found or inactive")
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateTable = errors.New("table number or QR code already exists")
	ErrForbidden      = errors.New("actor lacks the required role")
)

// ValidationError reports an input that failed a bound or format check.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientBalanceError is returned when a redeem asks for more
// points than the table holds. It carries both sides so the caller can
// render a precise message.
type InsufficientBalanceError struct {
	Available int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient points: available %d, requested %d", e.Available, e.Requested)
}
