package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not allowed")

// ErrInvalidDebt indicates a malformed debt batch handed to balance
// aggregation (self-debt, non-positive amount). The whole batch is
// rejected; nothing is partially applied.
var ErrInvalidDebt = errors.New("invalid debt")

// ErrImbalancedLedger indicates that a set of balances does not sum to
// zero. This is an upstream bug, never retried automatically.
var ErrImbalancedLedger = errors.New("ledger balances do not sum to zero")

// ErrInvalidTransition indicates a settlement state-machine violation.
// The caller's view is stale; they should refetch and redo the user
// action, not retry the same mutation.
var ErrInvalidTransition = errors.New("invalid settlement status transition")

// ErrSettlementInFlight indicates a non-terminal settlement already
// exists for the same ordered member pair in the group.
var ErrSettlementInFlight = errors.New("settlement already in flight for this member pair")

// AppError wraps a lower-level error with an HTTP-ish status code and a
// caller-facing message. Repositories use it to surface infrastructure
// failures without leaking driver details.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
