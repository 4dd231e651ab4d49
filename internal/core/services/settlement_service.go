package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
	"github.com/splitkit/settlement_app/internal/dto"
	"github.com/splitkit/settlement_app/internal/utils/money"
)

var (
	ErrSamePayerPayee   = errors.New("payer and payee must be different members")
	ErrNonPositiveValue = errors.New("settlement amount must be positive")
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// settlementService owns the settlement lifecycle. Transition legality
// is enforced twice: here against the domain state machine for fast
// caller feedback, and again inside the repository under a row lock,
// which is the authoritative check when writers race.
type settlementService struct {
	settlementRepo portsrepo.SettlementRepositoryFacade
	memberRepo     portsrepo.MemberReader
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(settlementRepo portsrepo.SettlementRepositoryFacade, memberRepo portsrepo.MemberReader) portssvc.SettlementSvcFacade {
	return &settlementService{
		settlementRepo: settlementRepo,
		memberRepo:     memberRepo,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// CreateSettlement records a new PENDING settlement attempt. The
// repository insert is conditional on no other in-flight settlement for
// the same ordered pair, which closes the duplicate "Pay Now" race.
func (s *settlementService) CreateSettlement(ctx context.Context, groupID string, req dto.CreateSettlementRequest, creatorMemberID string) (*domain.Settlement, error) {
	if req.FromMemberID == req.ToMemberID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrSamePayerPayee)
	}

	amount, err := money.ToMinorUnits(req.Amount, req.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNonPositiveValue)
	}

	for _, memberID := range []string{req.FromMemberID, req.ToMemberID} {
		member, err := s.memberRepo.FindMemberByID(ctx, memberID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: member %s not found", apperrors.ErrValidation, memberID)
			}
			return nil, fmt.Errorf("failed to look up member %s: %w", memberID, err)
		}
		if member.GroupID != groupID {
			return nil, fmt.Errorf("%w: member %s does not belong to group %s", apperrors.ErrValidation, memberID, groupID)
		}
	}

	now := time.Now().UTC()
	settlement := domain.Settlement{
		SettlementID:  uuid.NewString(),
		GroupID:       groupID,
		FromMemberID:  req.FromMemberID,
		ToMemberID:    req.ToMemberID,
		Amount:        amount,
		CurrencyCode:  req.CurrencyCode,
		Status:        domain.SettlementPending,
		PaymentMethod: req.PaymentMethod,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorMemberID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorMemberID,
		},
	}

	if err := s.settlementRepo.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}
	return &settlement, nil
}

// MarkProcessing hands the settlement to the payment processor.
func (s *settlementService) MarkProcessing(ctx context.Context, settlementID string) error {
	return s.settlementRepo.MarkProcessing(ctx, settlementID, time.Now().UTC())
}

// CompleteSettlement finalizes a PROCESSING settlement. The repository
// writes the BalanceChanged outbox event in the same transaction, so a
// crash between completion and notification cannot lose the cue.
func (s *settlementService) CompleteSettlement(ctx context.Context, settlementID string, transactionRef string) error {
	if transactionRef == "" {
		return fmt.Errorf("%w: transaction reference is required to complete a settlement", apperrors.ErrValidation)
	}
	return s.settlementRepo.MarkCompleted(ctx, settlementID, transactionRef, time.Now().UTC())
}

// FailSettlement marks a settlement failed. Repeating the call with the
// same reason is a no-op so duplicate delivery of processor failure
// notifications stays harmless.
func (s *settlementService) FailSettlement(ctx context.Context, settlementID string, reason string) error {
	return s.settlementRepo.MarkFailed(ctx, settlementID, reason, time.Now().UTC())
}

// CancelSettlement honors a user-initiated cancel while the settlement
// is still PENDING. Only the payer may cancel.
func (s *settlementService) CancelSettlement(ctx context.Context, settlementID string, reason string, requestingMemberID string) error {
	settlement, err := s.settlementRepo.FindSettlementByID(ctx, settlementID)
	if err != nil {
		return err
	}
	if settlement.FromMemberID != requestingMemberID {
		return fmt.Errorf("%w: only the payer may cancel a settlement", apperrors.ErrForbidden)
	}
	return s.settlementRepo.MarkCancelled(ctx, settlementID, reason, time.Now().UTC())
}

// GetSettlementByID retrieves a settlement scoped to a group.
func (s *settlementService) GetSettlementByID(ctx context.Context, groupID string, settlementID string) (*domain.Settlement, error) {
	settlement, err := s.settlementRepo.FindSettlementByID(ctx, settlementID)
	if err != nil {
		return nil, err
	}
	if settlement.GroupID != groupID {
		return nil, apperrors.ErrNotFound
	}
	return settlement, nil
}

// ListSettlements retrieves a page of the group's settlements.
func (s *settlementService) ListSettlements(ctx context.Context, groupID string, params dto.ListSettlementsParams) (*dto.ListSettlementsResponse, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := portsrepo.ListSettlementsFilter{Status: params.Status}
	settlements, total, err := s.settlementRepo.ListSettlements(ctx, groupID, filter, page, limit)
	if err != nil {
		return nil, err
	}

	return &dto.ListSettlementsResponse{
		Settlements: dto.ToSettlementResponses(settlements),
		TotalCount:  total,
		Page:        page,
		Limit:       limit,
	}, nil
}
