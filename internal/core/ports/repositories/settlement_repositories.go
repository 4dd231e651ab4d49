package repositories

import (
	"context"
	"time"

	"github.com/splitkit/settlement_app/internal/core/domain"
)

// ListSettlementsFilter narrows a settlement listing.
type ListSettlementsFilter struct {
	Status *domain.SettlementStatus
}

// SettlementReader defines read operations for settlement data
type SettlementReader interface {
	// FindSettlementByID retrieves a settlement by its unique identifier.
	FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error)

	// ListSettlements retrieves a page of settlements for a group, newest
	// first, along with the total count matching the filter.
	ListSettlements(ctx context.Context, groupID string, filter ListSettlementsFilter, page int, limit int) ([]domain.Settlement, int, error)

	// ListCompletedSettlements retrieves every completed settlement for a
	// group; used when deriving balances.
	ListCompletedSettlements(ctx context.Context, groupID string) ([]domain.Settlement, error)

	// FindStaleSettlements retrieves non-terminal settlements whose last
	// update is older than the cutoff. Used by the reconciliation sweep.
	FindStaleSettlements(ctx context.Context, cutoff time.Time, limit int) ([]domain.Settlement, error)
}

// SettlementWriter defines lifecycle operations for settlement data.
// Every mutation locks the settlement row first, so concurrent callers
// racing on the same settlement resolve deterministically: the loser
// sees apperrors.ErrInvalidTransition.
type SettlementWriter interface {
	// CreateSettlement inserts a new PENDING settlement. The insert is
	// conditional on no other non-terminal settlement existing for the
	// same ordered (group, from, to) pair; a conflict surfaces as
	// apperrors.ErrSettlementInFlight.
	CreateSettlement(ctx context.Context, settlement domain.Settlement) error

	// MarkProcessing transitions PENDING -> PROCESSING.
	MarkProcessing(ctx context.Context, settlementID string, updatedAt time.Time) error

	// MarkCompleted transitions PROCESSING -> COMPLETED, records the
	// processor's transaction reference, and writes a BalanceChanged
	// outbox event in the same database transaction.
	MarkCompleted(ctx context.Context, settlementID string, transactionRef string, completedAt time.Time) error

	// MarkFailed transitions PENDING or PROCESSING -> FAILED. Calling it
	// again with the same reason on an already-failed settlement is a
	// no-op, so duplicate failure notifications are tolerated.
	MarkFailed(ctx context.Context, settlementID string, reason string, updatedAt time.Time) error

	// MarkCancelled transitions PENDING -> CANCELLED.
	MarkCancelled(ctx context.Context, settlementID string, reason string, updatedAt time.Time) error
}

// SettlementRepositoryFacade combines all settlement repository interfaces
type SettlementRepositoryFacade interface {
	SettlementReader
	SettlementWriter
}
