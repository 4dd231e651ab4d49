package models

import "time"

// SettlementStatus indicates where a settlement row is in its lifecycle.
type SettlementStatus string

const (
	SettlementPending    SettlementStatus = "PENDING"
	SettlementProcessing SettlementStatus = "PROCESSING"
	SettlementCompleted  SettlementStatus = "COMPLETED"
	SettlementFailed     SettlementStatus = "FAILED"
	SettlementCancelled  SettlementStatus = "CANCELLED"
)

// Settlement mirrors the settlements table. Status transitions are only
// ever made through the repository, which locks the row first.
type Settlement struct {
	SettlementID   string           `db:"settlement_id"`
	GroupID        string           `db:"group_id"`
	FromMemberID   string           `db:"from_member_id"`
	ToMemberID     string           `db:"to_member_id"`
	Amount         int64            `db:"amount"` // Minor units
	CurrencyCode   string           `db:"currency_code"`
	Status         SettlementStatus `db:"status"`
	PaymentMethod  string           `db:"payment_method"`
	TransactionRef *string          `db:"transaction_ref"`
	FailureReason  *string          `db:"failure_reason"`
	CompletedAt    *time.Time       `db:"completed_at"`
	AuditFields
}
