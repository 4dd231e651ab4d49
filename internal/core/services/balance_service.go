package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
)

// balanceService aggregates raw pairwise debts into per-member balance
// details. Aggregate itself is pure; the reader methods derive balances
// from the stored debt set plus completed settlements on every call, so
// balances are never cached as a source of truth.
type balanceService struct {
	debtRepo       portsrepo.DebtRepositoryFacade
	settlementRepo portsrepo.SettlementReader
	memberRepo     portsrepo.MemberReader
	notifier       portssvc.RealtimeNotifier
}

// NewBalanceService creates a new BalanceService.
func NewBalanceService(debtRepo portsrepo.DebtRepositoryFacade, settlementRepo portsrepo.SettlementReader, memberRepo portsrepo.MemberReader, notifier portssvc.RealtimeNotifier) portssvc.BalanceSvcFacade {
	return &balanceService{
		debtRepo:       debtRepo,
		settlementRepo: settlementRepo,
		memberRepo:     memberRepo,
		notifier:       notifier,
	}
}

var _ portssvc.BalanceSvcFacade = (*balanceService)(nil)

// pairKey orders two member ids canonically so that both directions of
// a debt land on the same netting bucket.
type pairKey struct {
	lo, hi string
}

func newPairKey(a, b string) pairKey {
	if a < b {
		return pairKey{lo: a, hi: b}
	}
	return pairKey{lo: b, hi: a}
}

// Aggregate nets each unordered member pair down to a single signed
// edge and builds one BalanceDetail per member. The invariant
// sum(NetBalance) == 0 holds for every valid input because each debt
// contributes +amount to one member and -amount to another.
func (s *balanceService) Aggregate(debts []domain.Debt, memberIDs []string) ([]domain.BalanceDetail, error) {
	known := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		known[id] = struct{}{}
	}

	// Reject the whole batch on the first malformed debt; partial
	// application would break the closed-system invariant.
	for _, d := range debts {
		if d.FromMemberID == d.ToMemberID {
			return nil, fmt.Errorf("%w: self-debt for member %s", apperrors.ErrInvalidDebt, d.FromMemberID)
		}
		if d.Amount <= 0 {
			return nil, fmt.Errorf("%w: non-positive amount %d from %s to %s", apperrors.ErrInvalidDebt, d.Amount, d.FromMemberID, d.ToMemberID)
		}
		if _, ok := known[d.FromMemberID]; !ok {
			return nil, fmt.Errorf("%w: debtor %s is not a group member", apperrors.ErrInvalidDebt, d.FromMemberID)
		}
		if _, ok := known[d.ToMemberID]; !ok {
			return nil, fmt.Errorf("%w: creditor %s is not a group member", apperrors.ErrInvalidDebt, d.ToMemberID)
		}
	}

	// Net every unordered pair to one signed amount: positive means
	// lo owes hi.
	netted := make(map[pairKey]int64)
	for _, d := range debts {
		key := newPairKey(d.FromMemberID, d.ToMemberID)
		if d.FromMemberID == key.lo {
			netted[key] += d.Amount
		} else {
			netted[key] -= d.Amount
		}
	}

	owesTo := make(map[string][]domain.MemberAmount, len(memberIDs))
	owedBy := make(map[string][]domain.MemberAmount, len(memberIDs))
	for key, amount := range netted {
		if amount == 0 {
			continue
		}
		debtor, creditor := key.lo, key.hi
		if amount < 0 {
			debtor, creditor = key.hi, key.lo
			amount = -amount
		}
		owesTo[debtor] = append(owesTo[debtor], domain.MemberAmount{MemberID: creditor, Amount: amount})
		owedBy[creditor] = append(owedBy[creditor], domain.MemberAmount{MemberID: debtor, Amount: amount})
	}

	details := make([]domain.BalanceDetail, 0, len(memberIDs))
	for _, id := range memberIDs {
		owes := owesTo[id]
		owed := owedBy[id]
		sort.Slice(owes, func(i, j int) bool { return owes[i].MemberID < owes[j].MemberID })
		sort.Slice(owed, func(i, j int) bool { return owed[i].MemberID < owed[j].MemberID })

		var net int64
		for _, ma := range owed {
			net += ma.Amount
		}
		for _, ma := range owes {
			net -= ma.Amount
		}

		// Empty lists stay non-nil so a settled member serializes as
		// [] rather than null.
		if owes == nil {
			owes = []domain.MemberAmount{}
		}
		if owed == nil {
			owed = []domain.MemberAmount{}
		}
		details = append(details, domain.BalanceDetail{
			MemberID:   id,
			NetBalance: net,
			OwesTo:     owes,
			OwedBy:     owed,
		})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].MemberID < details[j].MemberID })
	return details, nil
}

// defaultCurrencyCode is reported for a group whose debt set is empty.
const defaultCurrencyCode = "USD"

// GetGroupBalances recomputes the group's balances from authoritative
// state: the stored debt set plus a reverse edge for every completed
// settlement (a payment from A to B cancels A's debt to B).
func (s *balanceService) GetGroupBalances(ctx context.Context, groupID string) ([]domain.BalanceDetail, string, error) {
	members, err := s.memberRepo.ListMembersByGroup(ctx, groupID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list group members: %w", err)
	}
	if len(members) == 0 {
		return nil, "", fmt.Errorf("%w: group %s has no members", apperrors.ErrNotFound, groupID)
	}

	debts, err := s.debtRepo.ListDebtsByGroup(ctx, groupID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list group debts: %w", err)
	}
	currencyCode := defaultCurrencyCode
	if len(debts) > 0 {
		currencyCode = debts[0].CurrencyCode
	}

	completed, err := s.settlementRepo.ListCompletedSettlements(ctx, groupID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list completed settlements: %w", err)
	}
	for _, st := range completed {
		debts = append(debts, domain.Debt{
			DebtID:       st.SettlementID,
			GroupID:      groupID,
			FromMemberID: st.ToMemberID,
			ToMemberID:   st.FromMemberID,
			Amount:       st.Amount,
			CurrencyCode: st.CurrencyCode,
		})
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.MemberID
	}
	details, err := s.Aggregate(debts, memberIDs)
	if err != nil {
		return nil, "", err
	}
	return details, currencyCode, nil
}

// ReplaceGroupDebts validates the incoming batch against the group's
// membership, replaces the stored debt set atomically, and announces the
// balance change.
func (s *balanceService) ReplaceGroupDebts(ctx context.Context, groupID string, debts []domain.Debt, actorMemberID string) error {
	members, err := s.memberRepo.ListMembersByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to list group members: %w", err)
	}
	if len(members) == 0 {
		return fmt.Errorf("%w: group %s has no members", apperrors.ErrNotFound, groupID)
	}
	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.MemberID
	}

	// Aggregate performs the full batch validation; its output is discarded.
	if _, err := s.Aggregate(debts, memberIDs); err != nil {
		return err
	}

	now := time.Now().UTC()
	for i := range debts {
		debts[i].DebtID = uuid.NewString()
		debts[i].GroupID = groupID
		debts[i].AuditFields = domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorMemberID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorMemberID,
		}
	}

	if err := s.debtRepo.ReplaceGroupDebts(ctx, groupID, debts); err != nil {
		return fmt.Errorf("failed to replace group debts: %w", err)
	}

	s.notifier.Publish(groupID, domain.Event{
		EventType:  domain.BalanceChanged,
		GroupID:    groupID,
		OccurredAt: now,
	})
	return nil
}
