package services

import (
	"fmt"
	"sort"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
)

// nettingService reduces a group's net balances to the smallest transfer
// set a greedy largest-against-largest match produces. The result is
// never larger than the naive pairwise debt list, but minimality is
// heuristic: the true minimum-transaction problem is NP-hard in general
// and the product only requires "fewer than naive".
type nettingService struct{}

// NewNettingService creates a new NettingService.
func NewNettingService() portssvc.NettingSvc {
	return &nettingService{}
}

var _ portssvc.NettingSvc = (*nettingService)(nil)

// memberRemainder tracks how much of a member's position is still unmatched.
type memberRemainder struct {
	memberID  string
	remaining int64
}

// Optimize partitions members into creditors and debtors, matches the
// largest remaining positions against each other, and emits one
// debtor-to-creditor transfer per match. All arithmetic is integer
// minor units, so both queues drain to exactly zero together whenever
// the input is zero-sum.
func (s *nettingService) Optimize(balances []domain.BalanceDetail) (domain.SettlementPlan, error) {
	var creditors, debtors []memberRemainder
	var creditTotal, debitTotal int64
	countBefore := 0

	for _, b := range balances {
		countBefore += len(b.OwesTo)
		switch {
		case b.NetBalance > 0:
			creditors = append(creditors, memberRemainder{memberID: b.MemberID, remaining: b.NetBalance})
			creditTotal += b.NetBalance
		case b.NetBalance < 0:
			debtors = append(debtors, memberRemainder{memberID: b.MemberID, remaining: -b.NetBalance})
			debitTotal += -b.NetBalance
		}
	}

	if creditTotal != debitTotal {
		return domain.SettlementPlan{}, fmt.Errorf("%w: creditors total %d, debtors total %d",
			apperrors.ErrImbalancedLedger, creditTotal, debitTotal)
	}

	// Largest first; ties break on member id so the same ledger always
	// yields the same plan.
	byMagnitude := func(rs []memberRemainder) func(i, j int) bool {
		return func(i, j int) bool {
			if rs[i].remaining != rs[j].remaining {
				return rs[i].remaining > rs[j].remaining
			}
			return rs[i].memberID < rs[j].memberID
		}
	}
	sort.Slice(creditors, byMagnitude(creditors))
	sort.Slice(debtors, byMagnitude(debtors))

	transfers := []domain.PlannedTransfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].remaining
		if creditors[j].remaining < amount {
			amount = creditors[j].remaining
		}
		transfers = append(transfers, domain.PlannedTransfer{
			FromMemberID: debtors[i].memberID,
			ToMemberID:   creditors[j].memberID,
			Amount:       amount,
		})
		debtors[i].remaining -= amount
		creditors[j].remaining -= amount
		if debtors[i].remaining == 0 {
			i++
		}
		if creditors[j].remaining == 0 {
			j++
		}
	}

	// With equal totals both queues empty on the same iteration; a
	// leftover means the balance vector itself was inconsistent.
	if i < len(debtors) || j < len(creditors) {
		return domain.SettlementPlan{}, fmt.Errorf("%w: unmatched remainder after netting", apperrors.ErrImbalancedLedger)
	}

	countAfter := len(transfers)
	return domain.SettlementPlan{
		Transfers:              transfers,
		TransactionCountBefore: countBefore,
		TransactionCountAfter:  countAfter,
		SavingsPercent:         savingsPercent(countBefore, countAfter),
	}, nil
}

// savingsPercent is the rounded percentage of transactions eliminated.
// A group with no debts saves nothing rather than dividing by zero.
func savingsPercent(before, after int) int {
	if before == 0 {
		return 0
	}
	return int((100*(before-after) + before/2) / before)
}
