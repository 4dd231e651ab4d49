package mapping

import (
	"github.com/splitkit/settlement_app/internal/core/domain"
	"github.com/splitkit/settlement_app/internal/models"
)

// ToModelDebt converts a domain Debt to a model Debt
func ToModelDebt(d domain.Debt) models.Debt {
	return models.Debt{
		DebtID:       d.DebtID,
		GroupID:      d.GroupID,
		FromMemberID: d.FromMemberID,
		ToMemberID:   d.ToMemberID,
		Amount:       d.Amount,
		CurrencyCode: d.CurrencyCode,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDebt converts a model Debt to a domain Debt
func ToDomainDebt(m models.Debt) domain.Debt {
	return domain.Debt{
		DebtID:       m.DebtID,
		GroupID:      m.GroupID,
		FromMemberID: m.FromMemberID,
		ToMemberID:   m.ToMemberID,
		Amount:       m.Amount,
		CurrencyCode: m.CurrencyCode,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDebts converts a slice of model Debts to domain Debts
func ToDomainDebts(ms []models.Debt) []domain.Debt {
	out := make([]domain.Debt, len(ms))
	for i, m := range ms {
		out[i] = ToDomainDebt(m)
	}
	return out
}

// ToDomainMember converts a model Member to a domain Member
func ToDomainMember(m models.Member) domain.Member {
	return domain.Member{
		MemberID:    m.MemberID,
		GroupID:     m.GroupID,
		DisplayName: m.DisplayName,
		AvatarRef:   m.AvatarRef,
	}
}
