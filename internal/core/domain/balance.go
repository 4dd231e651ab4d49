package domain

// MemberAmount pairs a counterpart member with an amount in minor units.
type MemberAmount struct {
	MemberID string `json:"memberID"`
	Amount   int64  `json:"amount"` // Always > 0; direction comes from the containing list
}

// BalanceDetail is one member's position within a group after netting
// every pairwise debt. NetBalance = sum(OwedBy) - sum(OwesTo).
// A member with no outstanding debts has NetBalance 0 and empty lists;
// they are settled, not absent.
type BalanceDetail struct {
	MemberID   string         `json:"memberID"`
	NetBalance int64          `json:"netBalance"` // Minor units; positive = group owes them
	OwesTo     []MemberAmount `json:"owesTo"`     // Sorted by counterpart MemberID asc
	OwedBy     []MemberAmount `json:"owedBy"`     // Sorted by counterpart MemberID asc
}
