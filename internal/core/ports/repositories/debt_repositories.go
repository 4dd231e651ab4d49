package repositories

import (
	"context"

	"github.com/splitkit/settlement_app/internal/core/domain"
)

// DebtReader defines read operations for debt data
type DebtReader interface {
	// ListDebtsByGroup retrieves every raw debt edge for a group.
	ListDebtsByGroup(ctx context.Context, groupID string) ([]domain.Debt, error)
}

// DebtWriter defines write operations for debt data
type DebtWriter interface {
	// ReplaceGroupDebts atomically replaces the group's debt set with the
	// given batch. Debts arrive pre-aggregated from the expense system;
	// this core never edits individual edges.
	ReplaceGroupDebts(ctx context.Context, groupID string, debts []domain.Debt) error
}

// DebtRepositoryFacade combines all debt repository interfaces
type DebtRepositoryFacade interface {
	DebtReader
	DebtWriter
}

// MemberReader defines read-only access to the member directory.
type MemberReader interface {
	// FindMemberByID retrieves a single member for display purposes.
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)

	// ListMembersByGroup retrieves the group's membership, sorted by
	// member id for deterministic aggregation output.
	ListMembersByGroup(ctx context.Context, groupID string) ([]domain.Member, error)
}
