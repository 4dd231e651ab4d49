package services_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	"github.com/splitkit/settlement_app/internal/core/services"
)

// balanceFromNet builds a minimal BalanceDetail carrying only the net
// position; Optimize reads OwesTo solely for the before-count.
func balanceFromNet(memberID string, net int64, owesTo ...domain.MemberAmount) domain.BalanceDetail {
	return domain.BalanceDetail{
		MemberID:   memberID,
		NetBalance: net,
		OwesTo:     owesTo,
		OwedBy:     []domain.MemberAmount{},
	}
}

// netPositions sums each member's position change if every transfer in
// the plan were applied: payers go down, payees go up.
func netPositions(transfers []domain.PlannedTransfer) map[string]int64 {
	out := make(map[string]int64)
	for _, t := range transfers {
		out[t.FromMemberID] -= t.Amount
		out[t.ToMemberID] += t.Amount
	}
	return out
}

func TestOptimizeEmptyInput(t *testing.T) {
	svc := services.NewNettingService()

	plan, err := svc.Optimize(nil)

	require.NoError(t, err)
	assert.Empty(t, plan.Transfers)
	assert.Equal(t, 0, plan.TransactionCountBefore)
	assert.Equal(t, 0, plan.TransactionCountAfter)
	assert.Equal(t, 0, plan.SavingsPercent)
}

func TestOptimizeAllSettledGroup(t *testing.T) {
	svc := services.NewNettingService()
	balances := []domain.BalanceDetail{
		balanceFromNet("alice", 0),
		balanceFromNet("bob", 0),
	}

	plan, err := svc.Optimize(balances)

	require.NoError(t, err)
	assert.Empty(t, plan.Transfers)
	assert.Equal(t, 0, plan.SavingsPercent)
}

// A three-member debt cycle nets to zero everywhere: three raw debts,
// zero transfers, 100% savings.
func TestOptimizeDebtCycleCollapsesToNothing(t *testing.T) {
	svc := services.NewNettingService()
	balances := []domain.BalanceDetail{
		balanceFromNet("alice", 0, domain.MemberAmount{MemberID: "bob", Amount: 1000}),
		balanceFromNet("bob", 0, domain.MemberAmount{MemberID: "carol", Amount: 1000}),
		balanceFromNet("carol", 0, domain.MemberAmount{MemberID: "alice", Amount: 1000}),
	}

	plan, err := svc.Optimize(balances)

	require.NoError(t, err)
	assert.Empty(t, plan.Transfers)
	assert.Equal(t, 3, plan.TransactionCountBefore)
	assert.Equal(t, 0, plan.TransactionCountAfter)
	assert.Equal(t, 100, plan.SavingsPercent)
}

// One creditor owed by several debtors: the plan is one transfer per
// debtor, largest debtor matched first.
func TestOptimizeSingleCreditorFanIn(t *testing.T) {
	svc := services.NewNettingService()
	balances := []domain.BalanceDetail{
		balanceFromNet("alice", 6000),
		balanceFromNet("bob", -1000, domain.MemberAmount{MemberID: "alice", Amount: 1000}),
		balanceFromNet("carol", -2000, domain.MemberAmount{MemberID: "alice", Amount: 2000}),
		balanceFromNet("dave", -3000, domain.MemberAmount{MemberID: "alice", Amount: 3000}),
	}

	plan, err := svc.Optimize(balances)

	require.NoError(t, err)
	require.Len(t, plan.Transfers, 3)
	assert.Equal(t, domain.PlannedTransfer{FromMemberID: "dave", ToMemberID: "alice", Amount: 3000}, plan.Transfers[0])
	assert.Equal(t, domain.PlannedTransfer{FromMemberID: "carol", ToMemberID: "alice", Amount: 2000}, plan.Transfers[1])
	assert.Equal(t, domain.PlannedTransfer{FromMemberID: "bob", ToMemberID: "alice", Amount: 1000}, plan.Transfers[2])
}

// Chain A->B->C collapses to a single A->C transfer when the middle
// member nets out.
func TestOptimizeChainCollapses(t *testing.T) {
	svc := services.NewNettingService()
	balances := []domain.BalanceDetail{
		balanceFromNet("alice", -500, domain.MemberAmount{MemberID: "bob", Amount: 500}),
		balanceFromNet("bob", 0, domain.MemberAmount{MemberID: "carol", Amount: 500}),
		balanceFromNet("carol", 500),
	}

	plan, err := svc.Optimize(balances)

	require.NoError(t, err)
	require.Len(t, plan.Transfers, 1)
	assert.Equal(t, domain.PlannedTransfer{FromMemberID: "alice", ToMemberID: "carol", Amount: 500}, plan.Transfers[0])
	assert.Equal(t, 2, plan.TransactionCountBefore)
	assert.Equal(t, 1, plan.TransactionCountAfter)
	assert.Equal(t, 50, plan.SavingsPercent)
}

func TestOptimizeTieBreaksOnMemberID(t *testing.T) {
	svc := services.NewNettingService()
	// Two debtors with identical magnitude: the lexically smaller id
	// pays first.
	balances := []domain.BalanceDetail{
		balanceFromNet("creditor", 2000),
		balanceFromNet("zoe", -1000),
		balanceFromNet("amy", -1000),
	}

	plan, err := svc.Optimize(balances)

	require.NoError(t, err)
	require.Len(t, plan.Transfers, 2)
	assert.Equal(t, "amy", plan.Transfers[0].FromMemberID)
	assert.Equal(t, "zoe", plan.Transfers[1].FromMemberID)
}

func TestOptimizeRejectsImbalancedLedger(t *testing.T) {
	svc := services.NewNettingService()
	balances := []domain.BalanceDetail{
		balanceFromNet("alice", 1000),
		balanceFromNet("bob", -700),
	}

	_, err := svc.Optimize(balances)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrImbalancedLedger)
}

func TestOptimizeDeterministicAcrossRuns(t *testing.T) {
	svc := services.NewNettingService()
	balances := []domain.BalanceDetail{
		balanceFromNet("alice", 1500),
		balanceFromNet("bob", -500),
		balanceFromNet("carol", 2500),
		balanceFromNet("dave", -1500),
		balanceFromNet("erin", -2000),
	}

	first, err := svc.Optimize(balances)
	require.NoError(t, err)
	for run := 0; run < 5; run++ {
		again, err := svc.Optimize(balances)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// The plan must reproduce the exact net balance vector it was computed
// from, and never use more transfers than members minus one within each
// connected match. Checked over a spread of seeded random ledgers.
func TestOptimizePreservesBalancesOnRandomLedgers(t *testing.T) {
	svc := services.NewNettingService()
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		memberCount := 2 + rng.Intn(10)
		balances := make([]domain.BalanceDetail, memberCount)
		var running int64
		for i := 0; i < memberCount; i++ {
			id := fmt.Sprintf("member-%02d", i)
			if i == memberCount-1 {
				balances[i] = balanceFromNet(id, -running)
				continue
			}
			net := int64(rng.Intn(20001) - 10000)
			running += net
			balances[i] = balanceFromNet(id, net)
		}

		plan, err := svc.Optimize(balances)
		require.NoError(t, err, "trial %d", trial)

		positions := netPositions(plan.Transfers)
		nonZero := 0
		for _, b := range balances {
			assert.Equal(t, b.NetBalance, positions[b.MemberID], "trial %d member %s", trial, b.MemberID)
			if b.NetBalance != 0 {
				nonZero++
			}
		}
		if nonZero > 0 {
			assert.LessOrEqual(t, len(plan.Transfers), nonZero-1, "trial %d", trial)
		} else {
			assert.Empty(t, plan.Transfers, "trial %d", trial)
		}
		for _, tr := range plan.Transfers {
			assert.Positive(t, tr.Amount, "trial %d", trial)
			assert.NotEqual(t, tr.FromMemberID, tr.ToMemberID, "trial %d", trial)
		}
	}
}
