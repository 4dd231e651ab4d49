package domain

import "time"

// SettlementStatus indicates where a settlement is in its lifecycle.
type SettlementStatus string

const (
	SettlementPending    SettlementStatus = "PENDING"
	SettlementProcessing SettlementStatus = "PROCESSING"
	SettlementCompleted  SettlementStatus = "COMPLETED"
	SettlementFailed     SettlementStatus = "FAILED"
	SettlementCancelled  SettlementStatus = "CANCELLED"
)

// IsTerminal reports whether the status permits no further transitions.
func (s SettlementStatus) IsTerminal() bool {
	switch s {
	case SettlementCompleted, SettlementFailed, SettlementCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to target is a legal
// lifecycle transition:
//
//	PENDING    -> PROCESSING | FAILED | CANCELLED
//	PROCESSING -> COMPLETED | FAILED
//
// Terminal states permit nothing.
func (s SettlementStatus) CanTransitionTo(target SettlementStatus) bool {
	switch s {
	case SettlementPending:
		return target == SettlementProcessing || target == SettlementFailed || target == SettlementCancelled
	case SettlementProcessing:
		return target == SettlementCompleted || target == SettlementFailed
	}
	return false
}

// Settlement is one concrete money-movement attempt between two members,
// tracked through the lifecycle above. Amount is immutable once created;
// corrections happen via cancellation plus a new settlement, never mutation.
type Settlement struct {
	SettlementID   string           `json:"settlementID"` // Primary Key (UUID); doubles as processor idempotency key
	GroupID        string           `json:"groupID"`
	FromMemberID   string           `json:"fromMemberID"` // Payer
	ToMemberID     string           `json:"toMemberID"`   // Payee
	Amount         int64            `json:"amount"`       // Minor units, > 0
	CurrencyCode   string           `json:"currencyCode"`
	Status         SettlementStatus `json:"status"`
	PaymentMethod  string           `json:"paymentMethod"`
	TransactionRef *string          `json:"transactionRef,omitempty"` // Set by the processor on completion
	FailureReason  *string          `json:"failureReason,omitempty"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
	AuditFields
}
