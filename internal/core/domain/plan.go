package domain

// PlannedTransfer is one payment in an optimized settlement plan:
// FromMemberID pays ToMemberID the given amount (minor units).
type PlannedTransfer struct {
	FromMemberID string `json:"fromMemberID"`
	ToMemberID   string `json:"toMemberID"`
	Amount       int64  `json:"amount"`
}

// SettlementPlan is the output of netting optimization. Applying every
// transfer (summed per member as +receive/-pay) reproduces exactly the
// net balance vector the plan was computed from.
//
// The transfer set comes from a greedy largest-creditor/largest-debtor
// match. It never produces more transfers than the naive debt list, but
// it is not a certified minimum in the general min-cash-flow sense.
type SettlementPlan struct {
	Transfers              []PlannedTransfer `json:"transfers"`
	TransactionCountBefore int               `json:"transactionCountBefore"`
	TransactionCountAfter  int               `json:"transactionCountAfter"`
	SavingsPercent         int               `json:"savingsPercent"`
}
