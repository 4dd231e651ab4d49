package services

import "context"

// ChargeRequest describes one payment to execute. IdempotencyKey is the
// settlement id; the processor must be idempotent on it so retries from
// the reconciliation sweep never double-charge.
type ChargeRequest struct {
	IdempotencyKey string
	Amount         int64 // Minor units
	CurrencyCode   string
	PaymentMethod  string
	FromMemberID   string
	ToMemberID     string
}

// ChargeResult is the processor's definitive outcome for a charge.
type ChargeResult struct {
	Success        bool
	TransactionRef string // Set when Success
	FailureReason  string // Set when !Success
}

// PaymentProcessor is the opaque external collaborator that moves the
// money. This core performs no financial movement itself. Charge must
// respect ctx cancellation; the coordinator calls it with a bounded
// timeout and treats a deadline as failure, never as "still pending".
//
// A returned error means the outcome is unknown (transport failure) and
// the charge may be retried under the same idempotency key. A returned
// ChargeResult with Success=false is definitive and never auto-retried.
type PaymentProcessor interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
