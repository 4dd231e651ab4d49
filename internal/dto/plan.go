package dto

import (
	"github.com/shopspring/decimal"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	"github.com/splitkit/settlement_app/internal/utils/money"
)

// PlannedTransferDTO is one transfer in a settlement plan, in major units.
type PlannedTransferDTO struct {
	FromMemberID string          `json:"fromMemberID" binding:"required"`
	ToMemberID   string          `json:"toMemberID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
}

// SettlementPlanResponse is the API shape of an optimized plan.
type SettlementPlanResponse struct {
	Transfers              []PlannedTransferDTO `json:"transfers"`
	TransactionCountBefore int                  `json:"transactionCountBefore"`
	TransactionCountAfter  int                  `json:"transactionCountAfter"`
	SavingsPercent         int                  `json:"savingsPercent"`
}

// ApplyPlanRequest submits a previously presented plan for execution.
// The coordinator revalidates it against live balances; a plan computed
// before a concurrent payment shifted the ledger is rejected.
type ApplyPlanRequest struct {
	CurrencyCode  string               `json:"currencyCode" binding:"required,len=3"`
	PaymentMethod string               `json:"paymentMethod" binding:"required,paymentmethod"`
	Transfers     []PlannedTransferDTO `json:"transfers" binding:"required,min=1,dive"`
}

// ToSettlementPlanResponse converts a domain plan to its DTO.
func ToSettlementPlanResponse(p domain.SettlementPlan, currencyCode string) SettlementPlanResponse {
	transfers := make([]PlannedTransferDTO, len(p.Transfers))
	for i, t := range p.Transfers {
		transfers[i] = PlannedTransferDTO{
			FromMemberID: t.FromMemberID,
			ToMemberID:   t.ToMemberID,
			Amount:       money.FromMinorUnits(t.Amount, currencyCode),
		}
	}
	return SettlementPlanResponse{
		Transfers:              transfers,
		TransactionCountBefore: p.TransactionCountBefore,
		TransactionCountAfter:  p.TransactionCountAfter,
		SavingsPercent:         p.SavingsPercent,
	}
}

// ToDomainTransfers converts submitted plan transfers back to minor
// units for the given currency.
func ToDomainTransfers(in []PlannedTransferDTO, currencyCode string) ([]domain.PlannedTransfer, error) {
	out := make([]domain.PlannedTransfer, len(in))
	for i, t := range in {
		minor, err := money.ToMinorUnits(t.Amount, currencyCode)
		if err != nil {
			return nil, apperrors.NewAppError(400, "invalid transfer amount", err)
		}
		out[i] = domain.PlannedTransfer{
			FromMemberID: t.FromMemberID,
			ToMemberID:   t.ToMemberID,
			Amount:       minor,
		}
	}
	return out, nil
}
