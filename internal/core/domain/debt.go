package domain

// Debt is a directed edge in a group's debt graph: FromMemberID owes
// ToMemberID the given amount. Amounts are integer minor units (e.g. cents).
// Multiple debts may exist between the same pair; the aggregator nets them.
type Debt struct {
	DebtID       string `json:"debtID"`       // Primary Key (e.g., UUID)
	GroupID      string `json:"groupID"`      // Group this debt belongs to
	FromMemberID string `json:"fromMemberID"` // Debtor
	ToMemberID   string `json:"toMemberID"`   // Creditor
	Amount       int64  `json:"amount"`       // Minor units, always > 0
	CurrencyCode string `json:"currencyCode"` // ISO 4217; one currency per group debt set
	AuditFields
}
