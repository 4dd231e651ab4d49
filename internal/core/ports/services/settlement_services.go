package services

import (
	"context"

	"github.com/splitkit/settlement_app/internal/core/domain"
	"github.com/splitkit/settlement_app/internal/dto"
)

// SettlementReaderSvc defines read operations for settlement data
type SettlementReaderSvc interface {
	// GetSettlementByID retrieves a single settlement.
	GetSettlementByID(ctx context.Context, groupID string, settlementID string) (*domain.Settlement, error)

	// ListSettlements retrieves a page of a group's settlements.
	ListSettlements(ctx context.Context, groupID string, params dto.ListSettlementsParams) (*dto.ListSettlementsResponse, error)
}

// SettlementWriterSvc defines lifecycle operations on settlements. It is
// the only path that mutates settlement state.
type SettlementWriterSvc interface {
	// CreateSettlement records a new PENDING settlement attempt.
	CreateSettlement(ctx context.Context, groupID string, req dto.CreateSettlementRequest, creatorMemberID string) (*domain.Settlement, error)

	// MarkProcessing hands the settlement to the payment processor.
	MarkProcessing(ctx context.Context, settlementID string) error

	// CompleteSettlement finalizes a PROCESSING settlement with the
	// processor's transaction reference.
	CompleteSettlement(ctx context.Context, settlementID string, transactionRef string) error

	// FailSettlement marks a PENDING or PROCESSING settlement failed.
	// Idempotent for repeated calls with the same reason.
	FailSettlement(ctx context.Context, settlementID string, reason string) error

	// CancelSettlement cancels a PENDING settlement. Once processing has
	// started cancellation is rejected with apperrors.ErrInvalidTransition;
	// undoing a processed settlement means a refund settlement in the
	// opposite direction.
	CancelSettlement(ctx context.Context, settlementID string, reason string, requestingMemberID string) error
}

// SettlementSvcFacade combines all settlement service interfaces
type SettlementSvcFacade interface {
	SettlementReaderSvc
	SettlementWriterSvc
}

// CoordinatorSvc orchestrates settlement execution: validation against
// live balances, delegation to the payment processor, persistence of the
// outcome, and realtime propagation.
type CoordinatorSvc interface {
	// Initiate runs one settlement end to end and returns its final
	// persisted record.
	Initiate(ctx context.Context, groupID string, req dto.CreateSettlementRequest, initiatorMemberID string) (*domain.Settlement, error)

	// ApplyPlan validates a previously presented plan against live
	// balances and initiates each planned transfer.
	ApplyPlan(ctx context.Context, groupID string, req dto.ApplyPlanRequest, initiatorMemberID string) ([]dto.AppliedTransferResult, error)

	// OptimizeGroup computes a settlement plan from the group's live
	// balances, returning the currency the plan is denominated in.
	OptimizeGroup(ctx context.Context, groupID string) (domain.SettlementPlan, string, error)
}
