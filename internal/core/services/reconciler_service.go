package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
)

const reconcilerBatchSize = 100

// ReconcilerService is the backstop for the two gaps the happy path can
// leave: outbox events written with a completion but not yet published,
// and settlements stuck non-terminal because the process died mid-charge.
type ReconcilerService struct {
	settlementRepo portsrepo.SettlementRepositoryFacade
	outboxRepo     portsrepo.OutboxRepositoryFacade
	notifier       portssvc.RealtimeNotifier
	logger         *slog.Logger

	interval      time.Duration
	staleDeadline time.Duration
}

// NewReconcilerService creates a new ReconcilerService.
func NewReconcilerService(settlementRepo portsrepo.SettlementRepositoryFacade, outboxRepo portsrepo.OutboxRepositoryFacade, notifier portssvc.RealtimeNotifier, logger *slog.Logger, interval, staleDeadline time.Duration) *ReconcilerService {
	return &ReconcilerService{
		settlementRepo: settlementRepo,
		outboxRepo:     outboxRepo,
		notifier:       notifier,
		logger:         logger,
		interval:       interval,
		staleDeadline:  staleDeadline,
	}
}

// Run loops both reconciliation passes until ctx is cancelled.
func (r *ReconcilerService) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.DispatchOutbox(ctx); err != nil {
				r.logger.Error("outbox dispatch pass failed", slog.String("error", err.Error()))
			}
			if _, err := r.SweepStaleSettlements(ctx); err != nil {
				r.logger.Error("stale settlement sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

// DispatchOutbox publishes undispatched events and stamps them
// delivered. Publishing is at-least-once: a crash after Publish but
// before MarkDispatched re-delivers, which subscribers tolerate because
// events are only cues to refetch.
func (r *ReconcilerService) DispatchOutbox(ctx context.Context) (int, error) {
	entries, err := r.outboxRepo.ListUndispatched(ctx, reconcilerBatchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		r.notifier.Publish(entry.Event.GroupID, entry.Event)
		ids = append(ids, entry.EventID)
	}
	if err := r.outboxRepo.MarkDispatched(ctx, ids, time.Now().UTC()); err != nil {
		return 0, err
	}
	r.logger.Debug("dispatched outbox events", slog.Int("count", len(ids)))
	return len(ids), nil
}

// SweepStaleSettlements fails any settlement that has sat non-terminal
// past the deadline. The processor's idempotency on the settlement id
// means a charge that eventually lands after the sweep cannot be
// duplicated by a later manual retry.
func (r *ReconcilerService) SweepStaleSettlements(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-r.staleDeadline)
	stale, err := r.settlementRepo.FindStaleSettlements(ctx, cutoff, reconcilerBatchSize)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, settlement := range stale {
		err := r.settlementRepo.MarkFailed(ctx, settlement.SettlementID, processorTimeoutReason, time.Now().UTC())
		if err != nil {
			// Lost a race with a legitimate transition; that settlement
			// no longer needs sweeping.
			if errors.Is(err, apperrors.ErrInvalidTransition) {
				continue
			}
			return swept, err
		}
		swept++
		r.logger.Warn("swept stale settlement to failed",
			slog.String("settlement_id", settlement.SettlementID),
			slog.String("group_id", settlement.GroupID),
			slog.String("previous_status", string(settlement.Status)))
		r.notifier.Publish(settlement.GroupID, domain.Event{
			EventType:    domain.SettlementStatusChanged,
			GroupID:      settlement.GroupID,
			SettlementID: settlement.SettlementID,
			OccurredAt:   time.Now().UTC(),
		})
	}
	return swept, nil
}
