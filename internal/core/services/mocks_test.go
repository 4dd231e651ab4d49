package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
	"github.com/splitkit/settlement_app/internal/dto"
)

// MockSettlementRepository is a mock type for the SettlementRepositoryFacade interface
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	args := m.Called(ctx, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) ListSettlements(ctx context.Context, groupID string, filter portsrepo.ListSettlementsFilter, page int, limit int) ([]domain.Settlement, int, error) {
	args := m.Called(ctx, groupID, filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Settlement), args.Int(1), args.Error(2)
}

func (m *MockSettlementRepository) ListCompletedSettlements(ctx context.Context, groupID string) ([]domain.Settlement, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindStaleSettlements(ctx context.Context, cutoff time.Time, limit int) ([]domain.Settlement, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) CreateSettlement(ctx context.Context, settlement domain.Settlement) error {
	args := m.Called(ctx, settlement)
	return args.Error(0)
}

func (m *MockSettlementRepository) MarkProcessing(ctx context.Context, settlementID string, updatedAt time.Time) error {
	args := m.Called(ctx, settlementID, updatedAt)
	return args.Error(0)
}

func (m *MockSettlementRepository) MarkCompleted(ctx context.Context, settlementID string, transactionRef string, completedAt time.Time) error {
	args := m.Called(ctx, settlementID, transactionRef, completedAt)
	return args.Error(0)
}

func (m *MockSettlementRepository) MarkFailed(ctx context.Context, settlementID string, reason string, updatedAt time.Time) error {
	args := m.Called(ctx, settlementID, reason, updatedAt)
	return args.Error(0)
}

func (m *MockSettlementRepository) MarkCancelled(ctx context.Context, settlementID string, reason string, updatedAt time.Time) error {
	args := m.Called(ctx, settlementID, reason, updatedAt)
	return args.Error(0)
}

// MockDebtRepository is a mock type for the DebtRepositoryFacade interface
type MockDebtRepository struct {
	mock.Mock
}

func (m *MockDebtRepository) ListDebtsByGroup(ctx context.Context, groupID string) ([]domain.Debt, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Debt), args.Error(1)
}

func (m *MockDebtRepository) ReplaceGroupDebts(ctx context.Context, groupID string, debts []domain.Debt) error {
	args := m.Called(ctx, groupID, debts)
	return args.Error(0)
}

// MockMemberRepository is a mock type for the MemberReader interface
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) ListMembersByGroup(ctx context.Context, groupID string) ([]domain.Member, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Member), args.Error(1)
}

// MockOutboxRepository is a mock type for the OutboxRepositoryFacade interface
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) ListUndispatched(ctx context.Context, limit int) ([]portsrepo.OutboxEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]portsrepo.OutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) MarkDispatched(ctx context.Context, eventIDs []string, dispatchedAt time.Time) error {
	args := m.Called(ctx, eventIDs, dispatchedAt)
	return args.Error(0)
}

// MockNotifier is a mock type for the RealtimeNotifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(groupID string, event domain.Event) {
	m.Called(groupID, event)
}

func (m *MockNotifier) PublishToMember(memberID string, event domain.Event) {
	m.Called(memberID, event)
}

// MockPaymentProcessor is a mock type for the PaymentProcessor interface
type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) Charge(ctx context.Context, req portssvc.ChargeRequest) (*portssvc.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.ChargeResult), args.Error(1)
}

// MockBalanceSvc is a mock type for the BalanceSvcFacade interface
type MockBalanceSvc struct {
	mock.Mock
}

func (m *MockBalanceSvc) Aggregate(debts []domain.Debt, memberIDs []string) ([]domain.BalanceDetail, error) {
	args := m.Called(debts, memberIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BalanceDetail), args.Error(1)
}

func (m *MockBalanceSvc) GetGroupBalances(ctx context.Context, groupID string) ([]domain.BalanceDetail, string, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.BalanceDetail), args.String(1), args.Error(2)
}

func (m *MockBalanceSvc) ReplaceGroupDebts(ctx context.Context, groupID string, debts []domain.Debt, actorMemberID string) error {
	args := m.Called(ctx, groupID, debts, actorMemberID)
	return args.Error(0)
}

// MockNettingSvc is a mock type for the NettingSvc interface
type MockNettingSvc struct {
	mock.Mock
}

func (m *MockNettingSvc) Optimize(balances []domain.BalanceDetail) (domain.SettlementPlan, error) {
	args := m.Called(balances)
	return args.Get(0).(domain.SettlementPlan), args.Error(1)
}

// MockSettlementSvc is a mock type for the SettlementSvcFacade interface
type MockSettlementSvc struct {
	mock.Mock
}

func (m *MockSettlementSvc) GetSettlementByID(ctx context.Context, groupID string, settlementID string) (*domain.Settlement, error) {
	args := m.Called(ctx, groupID, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}

func (m *MockSettlementSvc) ListSettlements(ctx context.Context, groupID string, params dto.ListSettlementsParams) (*dto.ListSettlementsResponse, error) {
	args := m.Called(ctx, groupID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListSettlementsResponse), args.Error(1)
}

func (m *MockSettlementSvc) CreateSettlement(ctx context.Context, groupID string, req dto.CreateSettlementRequest, creatorMemberID string) (*domain.Settlement, error) {
	args := m.Called(ctx, groupID, req, creatorMemberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settlement), args.Error(1)
}

func (m *MockSettlementSvc) MarkProcessing(ctx context.Context, settlementID string) error {
	args := m.Called(ctx, settlementID)
	return args.Error(0)
}

func (m *MockSettlementSvc) CompleteSettlement(ctx context.Context, settlementID string, transactionRef string) error {
	args := m.Called(ctx, settlementID, transactionRef)
	return args.Error(0)
}

func (m *MockSettlementSvc) FailSettlement(ctx context.Context, settlementID string, reason string) error {
	args := m.Called(ctx, settlementID, reason)
	return args.Error(0)
}

func (m *MockSettlementSvc) CancelSettlement(ctx context.Context, settlementID string, reason string, requestingMemberID string) error {
	args := m.Called(ctx, settlementID, reason, requestingMemberID)
	return args.Error(0)
}
