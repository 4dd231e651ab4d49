package dto

import (
	"github.com/shopspring/decimal"

	"github.com/splitkit/settlement_app/internal/core/domain"
	"github.com/splitkit/settlement_app/internal/utils/money"
)

// MemberAmountResponse is one counterpart entry in a balance breakdown.
type MemberAmountResponse struct {
	MemberID    string          `json:"memberID"`
	DisplayName string          `json:"displayName,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
}

// BalanceDetailResponse is one member's position in the group.
type BalanceDetailResponse struct {
	MemberID    string                 `json:"memberID"`
	DisplayName string                 `json:"displayName,omitempty"`
	NetBalance  decimal.Decimal        `json:"netBalance"`
	OwesTo      []MemberAmountResponse `json:"owesTo"`
	OwedBy      []MemberAmountResponse `json:"owedBy"`
}

// GroupBalancesResponse is the full balance view for a group.
type GroupBalancesResponse struct {
	GroupID      string                  `json:"groupID"`
	CurrencyCode string                  `json:"currencyCode"`
	Balances     []BalanceDetailResponse `json:"balances"`
}

// ToBalanceDetailResponse converts a domain BalanceDetail to its DTO,
// enriching counterparts with display names where known.
func ToBalanceDetailResponse(d domain.BalanceDetail, currencyCode string, names map[string]string) BalanceDetailResponse {
	toAmounts := func(in []domain.MemberAmount) []MemberAmountResponse {
		out := make([]MemberAmountResponse, len(in))
		for i, ma := range in {
			out[i] = MemberAmountResponse{
				MemberID:    ma.MemberID,
				DisplayName: names[ma.MemberID],
				Amount:      money.FromMinorUnits(ma.Amount, currencyCode),
			}
		}
		return out
	}
	return BalanceDetailResponse{
		MemberID:    d.MemberID,
		DisplayName: names[d.MemberID],
		NetBalance:  money.FromMinorUnits(d.NetBalance, currencyCode),
		OwesTo:      toAmounts(d.OwesTo),
		OwedBy:      toAmounts(d.OwedBy),
	}
}
