package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
	"github.com/splitkit/settlement_app/internal/core/services"
)

func debt(from, to string, amount int64) domain.Debt {
	return domain.Debt{
		GroupID:      "group-1",
		FromMemberID: from,
		ToMemberID:   to,
		Amount:       amount,
		CurrencyCode: "USD",
	}
}

func member(id string) domain.Member {
	return domain.Member{MemberID: id, GroupID: "group-1", DisplayName: id}
}

// --- Aggregate (pure) ---

func TestAggregatePairwiseNetting(t *testing.T) {
	svc := services.NewBalanceService(nil, nil, nil, nil)
	debts := []domain.Debt{
		debt("alice", "bob", 3000),
		debt("bob", "alice", 1000),
	}

	details, err := svc.Aggregate(debts, []string{"alice", "bob"})

	require.NoError(t, err)
	require.Len(t, details, 2)

	alice, bob := details[0], details[1]
	assert.Equal(t, "alice", alice.MemberID)
	assert.Equal(t, int64(-2000), alice.NetBalance)
	require.Len(t, alice.OwesTo, 1)
	assert.Equal(t, domain.MemberAmount{MemberID: "bob", Amount: 2000}, alice.OwesTo[0])
	assert.Empty(t, alice.OwedBy)

	assert.Equal(t, int64(2000), bob.NetBalance)
	require.Len(t, bob.OwedBy, 1)
	assert.Equal(t, domain.MemberAmount{MemberID: "alice", Amount: 2000}, bob.OwedBy[0])
}

func TestAggregateEqualOppositeDebtsCancel(t *testing.T) {
	svc := services.NewBalanceService(nil, nil, nil, nil)
	debts := []domain.Debt{
		debt("alice", "bob", 1500),
		debt("bob", "alice", 1500),
	}

	details, err := svc.Aggregate(debts, []string{"alice", "bob"})

	require.NoError(t, err)
	for _, d := range details {
		assert.Zero(t, d.NetBalance)
		assert.NotNil(t, d.OwesTo)
		assert.NotNil(t, d.OwedBy)
		assert.Empty(t, d.OwesTo)
		assert.Empty(t, d.OwedBy)
	}
}

func TestAggregateZeroSumInvariant(t *testing.T) {
	svc := services.NewBalanceService(nil, nil, nil, nil)
	debts := []domain.Debt{
		debt("alice", "bob", 1234),
		debt("bob", "carol", 5678),
		debt("carol", "alice", 910),
		debt("alice", "carol", 1112),
		debt("bob", "alice", 131),
	}

	details, err := svc.Aggregate(debts, []string{"alice", "bob", "carol", "dave"})

	require.NoError(t, err)
	require.Len(t, details, 4)
	var sum int64
	for _, d := range details {
		sum += d.NetBalance
	}
	assert.Zero(t, sum)
}

func TestAggregateIncludesSettledMembers(t *testing.T) {
	svc := services.NewBalanceService(nil, nil, nil, nil)
	debts := []domain.Debt{debt("alice", "bob", 100)}

	details, err := svc.Aggregate(debts, []string{"alice", "bob", "quietone"})

	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, "quietone", details[2].MemberID)
	assert.Zero(t, details[2].NetBalance)
	assert.Empty(t, details[2].OwesTo)
	assert.Empty(t, details[2].OwedBy)
}

func TestAggregateDeterministicOrdering(t *testing.T) {
	svc := services.NewBalanceService(nil, nil, nil, nil)
	debts := []domain.Debt{
		debt("zoe", "amy", 100),
		debt("mia", "amy", 200),
		debt("amy", "bea", 300),
	}
	members := []string{"zoe", "amy", "mia", "bea"}

	first, err := svc.Aggregate(debts, members)
	require.NoError(t, err)

	// Same multiset in a different order yields identical output.
	shuffled := []domain.Debt{debts[2], debts[0], debts[1]}
	second, err := svc.Aggregate(shuffled, members)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].MemberID, first[i].MemberID)
	}
}

func TestAggregateRejectsWholeBatch(t *testing.T) {
	svc := services.NewBalanceService(nil, nil, nil, nil)
	members := []string{"alice", "bob"}

	tests := []struct {
		name  string
		debts []domain.Debt
	}{
		{"self debt", []domain.Debt{debt("alice", "bob", 100), debt("alice", "alice", 100)}},
		{"zero amount", []domain.Debt{debt("alice", "bob", 0)}},
		{"negative amount", []domain.Debt{debt("alice", "bob", -5)}},
		{"unknown debtor", []domain.Debt{debt("mallory", "bob", 100)}},
		{"unknown creditor", []domain.Debt{debt("alice", "mallory", 100)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Aggregate(tt.debts, members)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidDebt)
		})
	}
}

// --- Derived reads and ingestion (mocked repos) ---

type BalanceServiceTestSuite struct {
	suite.Suite
	mockDebtRepo       *MockDebtRepository
	mockSettlementRepo *MockSettlementRepository
	mockMemberRepo     *MockMemberRepository
	mockNotifier       *MockNotifier
	service            portssvc.BalanceSvcFacade
}

func (s *BalanceServiceTestSuite) SetupTest() {
	s.mockDebtRepo = new(MockDebtRepository)
	s.mockSettlementRepo = new(MockSettlementRepository)
	s.mockMemberRepo = new(MockMemberRepository)
	s.mockNotifier = new(MockNotifier)
	s.service = services.NewBalanceService(s.mockDebtRepo, s.mockSettlementRepo, s.mockMemberRepo, s.mockNotifier)
}

func (s *BalanceServiceTestSuite) TestGetGroupBalances_CompletedSettlementReducesDebt() {
	ctx := context.Background()
	s.mockMemberRepo.On("ListMembersByGroup", ctx, "group-1").
		Return([]domain.Member{member("alice"), member("bob")}, nil).Once()
	s.mockDebtRepo.On("ListDebtsByGroup", ctx, "group-1").
		Return([]domain.Debt{debt("alice", "bob", 5000)}, nil).Once()
	s.mockSettlementRepo.On("ListCompletedSettlements", ctx, "group-1").
		Return([]domain.Settlement{{
			SettlementID: "stl-1",
			GroupID:      "group-1",
			FromMemberID: "alice",
			ToMemberID:   "bob",
			Amount:       2000,
			CurrencyCode: "USD",
			Status:       domain.SettlementCompleted,
		}}, nil).Once()

	details, currency, err := s.service.GetGroupBalances(ctx, "group-1")

	s.Require().NoError(err)
	s.Equal("USD", currency)
	s.Require().Len(details, 2)
	s.Equal(int64(-3000), details[0].NetBalance)
	s.Equal(int64(3000), details[1].NetBalance)
	s.mockSettlementRepo.AssertExpectations(s.T())
}

func (s *BalanceServiceTestSuite) TestGetGroupBalances_UnknownGroup() {
	ctx := context.Background()
	s.mockMemberRepo.On("ListMembersByGroup", ctx, "nope").
		Return([]domain.Member{}, nil).Once()

	_, _, err := s.service.GetGroupBalances(ctx, "nope")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *BalanceServiceTestSuite) TestReplaceGroupDebts_PersistsAndNotifies() {
	ctx := context.Background()
	s.mockMemberRepo.On("ListMembersByGroup", ctx, "group-1").
		Return([]domain.Member{member("alice"), member("bob")}, nil).Once()
	s.mockDebtRepo.On("ReplaceGroupDebts", ctx, "group-1", mock.AnythingOfType("[]domain.Debt")).
		Return(nil).Once()
	s.mockNotifier.On("Publish", "group-1", mock.MatchedBy(func(e domain.Event) bool {
		return e.EventType == domain.BalanceChanged && e.GroupID == "group-1"
	})).Once()

	debts := []domain.Debt{debt("alice", "bob", 700)}
	err := s.service.ReplaceGroupDebts(ctx, "group-1", debts, "alice")

	s.Require().NoError(err)
	s.NotEmpty(debts[0].DebtID)
	s.Equal("alice", debts[0].CreatedBy)
	s.WithinDuration(time.Now(), debts[0].CreatedAt, time.Second)
	s.mockDebtRepo.AssertExpectations(s.T())
	s.mockNotifier.AssertExpectations(s.T())
}

func (s *BalanceServiceTestSuite) TestReplaceGroupDebts_InvalidBatchNothingStored() {
	ctx := context.Background()
	s.mockMemberRepo.On("ListMembersByGroup", ctx, "group-1").
		Return([]domain.Member{member("alice"), member("bob")}, nil).Once()

	err := s.service.ReplaceGroupDebts(ctx, "group-1", []domain.Debt{debt("alice", "alice", 100)}, "alice")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrInvalidDebt)
	s.mockDebtRepo.AssertNotCalled(s.T(), "ReplaceGroupDebts", mock.Anything, mock.Anything, mock.Anything)
	s.mockNotifier.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func TestBalanceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BalanceServiceTestSuite))
}
