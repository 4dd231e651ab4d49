package models

// Debt mirrors the debts table: one directed pairwise debt edge.
type Debt struct {
	DebtID       string `db:"debt_id"`
	GroupID      string `db:"group_id"`
	FromMemberID string `db:"from_member_id"`
	ToMemberID   string `db:"to_member_id"`
	Amount       int64  `db:"amount"` // Minor units
	CurrencyCode string `db:"currency_code"`
	AuditFields
}
