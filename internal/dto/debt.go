package dto

import (
	"github.com/shopspring/decimal"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	"github.com/splitkit/settlement_app/internal/utils/money"
)

// DebtEntry is one directed debt edge as fed by the expense system.
type DebtEntry struct {
	FromMemberID string          `json:"fromMemberID" binding:"required"`
	ToMemberID   string          `json:"toMemberID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// ReplaceDebtsRequest replaces a group's entire raw debt set.
type ReplaceDebtsRequest struct {
	CurrencyCode string      `json:"currencyCode" binding:"required,len=3"`
	Debts        []DebtEntry `json:"debts" binding:"dive"`
}

// ToDomainDebts converts submitted debt entries to domain debts in
// minor units. IDs and audit fields are filled by the service.
func (r ReplaceDebtsRequest) ToDomainDebts(groupID string) ([]domain.Debt, error) {
	out := make([]domain.Debt, len(r.Debts))
	for i, e := range r.Debts {
		minor, err := money.ToMinorUnits(e.Amount, r.CurrencyCode)
		if err != nil {
			return nil, apperrors.NewAppError(400, "invalid debt amount", err)
		}
		out[i] = domain.Debt{
			GroupID:      groupID,
			FromMemberID: e.FromMemberID,
			ToMemberID:   e.ToMemberID,
			Amount:       minor,
			CurrencyCode: r.CurrencyCode,
		}
	}
	return out, nil
}
