package services_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	"github.com/splitkit/settlement_app/internal/core/services"
)

type ReconcilerServiceTestSuite struct {
	suite.Suite
	mockSettlementRepo *MockSettlementRepository
	mockOutboxRepo     *MockOutboxRepository
	mockNotifier       *MockNotifier
	service            *services.ReconcilerService
}

func (s *ReconcilerServiceTestSuite) SetupTest() {
	s.mockSettlementRepo = new(MockSettlementRepository)
	s.mockOutboxRepo = new(MockOutboxRepository)
	s.mockNotifier = new(MockNotifier)
	s.service = services.NewReconcilerService(
		s.mockSettlementRepo,
		s.mockOutboxRepo,
		s.mockNotifier,
		slog.Default(),
		time.Second,
		2*time.Minute,
	)
}

func (s *ReconcilerServiceTestSuite) TestDispatchOutbox_PublishesAndStamps() {
	ctx := context.Background()
	entries := []portsrepo.OutboxEntry{
		{EventID: "evt-1", Event: domain.Event{EventType: domain.BalanceChanged, GroupID: "group-1"}},
		{EventID: "evt-2", Event: domain.Event{EventType: domain.SettlementStatusChanged, GroupID: "group-2", SettlementID: "stl-7"}},
	}
	s.mockOutboxRepo.On("ListUndispatched", ctx, mock.AnythingOfType("int")).Return(entries, nil).Once()
	s.mockNotifier.On("Publish", "group-1", entries[0].Event).Once()
	s.mockNotifier.On("Publish", "group-2", entries[1].Event).Once()
	s.mockOutboxRepo.On("MarkDispatched", ctx, []string{"evt-1", "evt-2"}, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	count, err := s.service.DispatchOutbox(ctx)

	s.Require().NoError(err)
	s.Equal(2, count)
	s.mockOutboxRepo.AssertExpectations(s.T())
	s.mockNotifier.AssertExpectations(s.T())
}

func (s *ReconcilerServiceTestSuite) TestDispatchOutbox_EmptyIsQuiet() {
	ctx := context.Background()
	s.mockOutboxRepo.On("ListUndispatched", ctx, mock.AnythingOfType("int")).
		Return([]portsrepo.OutboxEntry{}, nil).Once()

	count, err := s.service.DispatchOutbox(ctx)

	s.Require().NoError(err)
	s.Zero(count)
	s.mockNotifier.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *ReconcilerServiceTestSuite) TestSweep_FailsStaleSettlements() {
	ctx := context.Background()
	stale := []domain.Settlement{
		{SettlementID: "stl-1", GroupID: "group-1", Status: domain.SettlementProcessing},
		{SettlementID: "stl-2", GroupID: "group-1", Status: domain.SettlementPending},
	}
	s.mockSettlementRepo.On("FindStaleSettlements", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).
		Return(stale, nil).Once()
	s.mockSettlementRepo.On("MarkFailed", ctx, "stl-1", "processor timeout", mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	s.mockSettlementRepo.On("MarkFailed", ctx, "stl-2", "processor timeout", mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	s.mockNotifier.On("Publish", "group-1", mock.MatchedBy(func(e domain.Event) bool {
		return e.EventType == domain.SettlementStatusChanged
	})).Twice()

	swept, err := s.service.SweepStaleSettlements(ctx)

	s.Require().NoError(err)
	s.Equal(2, swept)
	s.mockSettlementRepo.AssertExpectations(s.T())
	s.mockNotifier.AssertExpectations(s.T())
}

// A settlement that completed between the stale query and the sweep
// loses the MarkFailed race; the sweep skips it rather than aborting.
func (s *ReconcilerServiceTestSuite) TestSweep_SkipsSettlementsThatProgressed() {
	ctx := context.Background()
	stale := []domain.Settlement{
		{SettlementID: "stl-1", GroupID: "group-1", Status: domain.SettlementProcessing},
		{SettlementID: "stl-2", GroupID: "group-1", Status: domain.SettlementProcessing},
	}
	s.mockSettlementRepo.On("FindStaleSettlements", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("int")).
		Return(stale, nil).Once()
	s.mockSettlementRepo.On("MarkFailed", ctx, "stl-1", "processor timeout", mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrInvalidTransition).Once()
	s.mockSettlementRepo.On("MarkFailed", ctx, "stl-2", "processor timeout", mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	s.mockNotifier.On("Publish", "group-1", mock.AnythingOfType("domain.Event")).Once()

	swept, err := s.service.SweepStaleSettlements(ctx)

	s.Require().NoError(err)
	s.Equal(1, swept)
	s.mockSettlementRepo.AssertExpectations(s.T())
}

func TestReconcilerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerServiceTestSuite))
}
