package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/splitkit/settlement_app/internal/core/domain"
	"github.com/splitkit/settlement_app/internal/utils/money"
)

// CreateSettlementRequest initiates one payment between two members.
// Amount is in major units; the currency's precision is enforced on
// conversion.
type CreateSettlementRequest struct {
	FromMemberID  string          `json:"fromMemberID" binding:"required"`
	ToMemberID    string          `json:"toMemberID" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode  string          `json:"currencyCode" binding:"required,len=3"`
	PaymentMethod string          `json:"paymentMethod" binding:"required,paymentmethod"`
}

// CancelSettlementRequest carries the user's cancellation reason.
type CancelSettlementRequest struct {
	Reason string `json:"reason"`
}

// ListSettlementsParams narrows and pages a settlement listing.
type ListSettlementsParams struct {
	Status *domain.SettlementStatus `form:"status"`
	Page   int                      `form:"page,default=1" binding:"omitempty,min=1"`
	Limit  int                      `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// SettlementResponse is the API shape of one settlement.
type SettlementResponse struct {
	SettlementID   string          `json:"settlementID"`
	GroupID        string          `json:"groupID"`
	FromMemberID   string          `json:"fromMemberID"`
	ToMemberID     string          `json:"toMemberID"`
	Amount         decimal.Decimal `json:"amount"`
	CurrencyCode   string          `json:"currencyCode"`
	Status         string          `json:"status"`
	PaymentMethod  string          `json:"paymentMethod"`
	TransactionRef *string         `json:"transactionRef,omitempty"`
	FailureReason  *string         `json:"failureReason,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty"`
}

// ListSettlementsResponse is a page of settlements plus the total count.
type ListSettlementsResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
	TotalCount  int                  `json:"totalCount"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
}

// AppliedTransferResult reports the outcome of one transfer from an
// applied plan. Transfers are independent; one failing does not roll
// back the others.
type AppliedTransferResult struct {
	Settlement *SettlementResponse `json:"settlement,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// ToSettlementResponse converts a domain Settlement to its DTO.
func ToSettlementResponse(s *domain.Settlement) SettlementResponse {
	return SettlementResponse{
		SettlementID:   s.SettlementID,
		GroupID:        s.GroupID,
		FromMemberID:   s.FromMemberID,
		ToMemberID:     s.ToMemberID,
		Amount:         money.FromMinorUnits(s.Amount, s.CurrencyCode),
		CurrencyCode:   s.CurrencyCode,
		Status:         string(s.Status),
		PaymentMethod:  s.PaymentMethod,
		TransactionRef: s.TransactionRef,
		FailureReason:  s.FailureReason,
		CreatedAt:      s.CreatedAt,
		CompletedAt:    s.CompletedAt,
	}
}

// ToSettlementResponses converts a slice of domain Settlements.
func ToSettlementResponses(ss []domain.Settlement) []SettlementResponse {
	out := make([]SettlementResponse, len(ss))
	for i := range ss {
		out[i] = ToSettlementResponse(&ss[i])
	}
	return out
}
