package mapping

import (
	"github.com/splitkit/settlement_app/internal/core/domain"
	"github.com/splitkit/settlement_app/internal/models"
)

// ToModelSettlement converts a domain Settlement to a model Settlement
func ToModelSettlement(d domain.Settlement) models.Settlement {
	return models.Settlement{
		SettlementID:   d.SettlementID,
		GroupID:        d.GroupID,
		FromMemberID:   d.FromMemberID,
		ToMemberID:     d.ToMemberID,
		Amount:         d.Amount,
		CurrencyCode:   d.CurrencyCode,
		Status:         models.SettlementStatus(d.Status),
		PaymentMethod:  d.PaymentMethod,
		TransactionRef: d.TransactionRef,
		FailureReason:  d.FailureReason,
		CompletedAt:    d.CompletedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSettlement converts a model Settlement to a domain Settlement
func ToDomainSettlement(m models.Settlement) domain.Settlement {
	return domain.Settlement{
		SettlementID:   m.SettlementID,
		GroupID:        m.GroupID,
		FromMemberID:   m.FromMemberID,
		ToMemberID:     m.ToMemberID,
		Amount:         m.Amount,
		CurrencyCode:   m.CurrencyCode,
		Status:         domain.SettlementStatus(m.Status),
		PaymentMethod:  m.PaymentMethod,
		TransactionRef: m.TransactionRef,
		FailureReason:  m.FailureReason,
		CompletedAt:    m.CompletedAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSettlements converts a slice of model Settlements to domain Settlements
func ToDomainSettlements(ms []models.Settlement) []domain.Settlement {
	out := make([]domain.Settlement, len(ms))
	for i, m := range ms {
		out[i] = ToDomainSettlement(m)
	}
	return out
}
