package services

import (
	"context"

	"github.com/splitkit/settlement_app/internal/core/domain"
)

// BalanceAggregatorSvc turns raw pairwise debts into per-member balance
// details. Aggregate is pure: no state, no I/O, safe for concurrent use.
type BalanceAggregatorSvc interface {
	// Aggregate nets every unordered member pair down to a single edge
	// and builds one BalanceDetail per member (zero-debt members
	// included with empty lists). Given the same debt multiset the
	// output is byte-identical. The whole batch is rejected with
	// apperrors.ErrInvalidDebt on a self-debt or non-positive amount.
	Aggregate(debts []domain.Debt, memberIDs []string) ([]domain.BalanceDetail, error)
}

// BalanceReaderSvc derives a group's current balances from authoritative
// state. Balances are never stored; recompute-from-debts is the
// canonical read path.
type BalanceReaderSvc interface {
	// GetGroupBalances recomputes balances from the group's stored debts
	// and its completed settlements. The returned currency code is the
	// one the group's debt set is denominated in.
	GetGroupBalances(ctx context.Context, groupID string) ([]domain.BalanceDetail, string, error)
}

// DebtIngestSvc accepts pre-aggregated debt batches from the upstream
// expense system.
type DebtIngestSvc interface {
	// ReplaceGroupDebts validates and atomically replaces the group's
	// raw debt set, then announces the balance change.
	ReplaceGroupDebts(ctx context.Context, groupID string, debts []domain.Debt, actorMemberID string) error
}

// BalanceSvcFacade combines balance aggregation interfaces
type BalanceSvcFacade interface {
	BalanceAggregatorSvc
	BalanceReaderSvc
	DebtIngestSvc
}

// NettingSvc computes minimal settlement plans from net balances.
// Optimize is pure and side-effect-free.
type NettingSvc interface {
	// Optimize reduces the balance vector to the smallest transfer set
	// the greedy matcher finds, plus savings metrics. A non-zero-sum
	// input fails with apperrors.ErrImbalancedLedger; an empty input
	// returns an empty plan.
	Optimize(balances []domain.BalanceDetail) (domain.SettlementPlan, error)
}
