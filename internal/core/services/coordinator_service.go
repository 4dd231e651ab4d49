package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
	"github.com/splitkit/settlement_app/internal/dto"
	"github.com/splitkit/settlement_app/internal/middleware"
	"github.com/splitkit/settlement_app/internal/utils/money"
)

const processorTimeoutReason = "processor timeout"

// CoordinatorOption customizes coordinator behavior.
type CoordinatorOption func(*coordinatorService)

// WithProcessorTimeout bounds each individual charge call.
func WithProcessorTimeout(d time.Duration) CoordinatorOption {
	return func(c *coordinatorService) { c.processorTimeout = d }
}

// WithMaxChargeAttempts caps retries on transient transport failures.
// Definitive processor outcomes are never retried.
func WithMaxChargeAttempts(n int) CoordinatorOption {
	return func(c *coordinatorService) { c.maxChargeAttempts = n }
}

// coordinatorService orchestrates settlement execution. It moves no
// money itself: the payment processor port does, keyed by the
// settlement id so sweeping retries cannot double-charge.
type coordinatorService struct {
	balanceSvc    portssvc.BalanceSvcFacade
	nettingSvc    portssvc.NettingSvc
	settlementSvc portssvc.SettlementSvcFacade
	processor     portssvc.PaymentProcessor
	notifier      portssvc.RealtimeNotifier

	processorTimeout  time.Duration
	maxChargeAttempts int
}

// NewCoordinatorService creates a new CoordinatorService.
func NewCoordinatorService(balanceSvc portssvc.BalanceSvcFacade, nettingSvc portssvc.NettingSvc, settlementSvc portssvc.SettlementSvcFacade, processor portssvc.PaymentProcessor, notifier portssvc.RealtimeNotifier, opts ...CoordinatorOption) portssvc.CoordinatorSvc {
	c := &coordinatorService{
		balanceSvc:        balanceSvc,
		nettingSvc:        nettingSvc,
		settlementSvc:     settlementSvc,
		processor:         processor,
		notifier:          notifier,
		processorTimeout:  10 * time.Second,
		maxChargeAttempts: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ portssvc.CoordinatorSvc = (*coordinatorService)(nil)

// OptimizeGroup computes a settlement plan from live balances.
func (c *coordinatorService) OptimizeGroup(ctx context.Context, groupID string) (domain.SettlementPlan, string, error) {
	balances, currencyCode, err := c.balanceSvc.GetGroupBalances(ctx, groupID)
	if err != nil {
		return domain.SettlementPlan{}, "", err
	}
	plan, err := c.nettingSvc.Optimize(balances)
	if err != nil {
		return domain.SettlementPlan{}, "", err
	}
	return plan, currencyCode, nil
}

// Initiate runs a single settlement end to end: live-balance validation,
// creation, processor charge, terminal transition, notification.
func (c *coordinatorService) Initiate(ctx context.Context, groupID string, req dto.CreateSettlementRequest, initiatorMemberID string) (*domain.Settlement, error) {
	amount, err := money.ToMinorUnits(req.Amount, req.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	// Validate against balances recomputed at call time, not a cached
	// plan: a concurrent payment may already have shrunk this debt.
	if err := c.validateAgainstLiveBalance(ctx, groupID, req.FromMemberID, req.ToMemberID, amount); err != nil {
		return nil, err
	}

	return c.createAndExecute(ctx, groupID, req, initiatorMemberID)
}

// createAndExecute persists a PENDING settlement and drives it to a
// terminal state.
func (c *coordinatorService) createAndExecute(ctx context.Context, groupID string, req dto.CreateSettlementRequest, initiatorMemberID string) (*domain.Settlement, error) {
	settlement, err := c.settlementSvc.CreateSettlement(ctx, groupID, req, initiatorMemberID)
	if err != nil {
		return nil, err
	}
	c.publishStatusChange(groupID, settlement.SettlementID)

	return c.execute(ctx, settlement, initiatorMemberID)
}

// ApplyPlan re-optimizes from live balances, rejects plans that no
// longer match the ledger, then executes every planned transfer.
// Transfers are independent: a failed or skipped transfer is reported
// in its slot and the rest proceed.
func (c *coordinatorService) ApplyPlan(ctx context.Context, groupID string, req dto.ApplyPlanRequest, initiatorMemberID string) ([]dto.AppliedTransferResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	transfers, err := dto.ToDomainTransfers(req.Transfers, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	balances, _, err := c.balanceSvc.GetGroupBalances(ctx, groupID)
	if err != nil {
		return nil, err
	}
	live, err := c.nettingSvc.Optimize(balances)
	if err != nil {
		return nil, err
	}
	if !sameTransfers(transfers, live.Transfers) {
		return nil, fmt.Errorf("%w: plan is stale, balances have changed since it was computed", apperrors.ErrValidation)
	}

	// A netted transfer can cross a pair with no direct debt edge
	// (a chain a->b->c collapses to a->c), so the pairwise outstanding
	// check used for manual initiation does not apply here. The plan
	// comparison above already pinned every transfer to the live ledger.
	results := make([]dto.AppliedTransferResult, len(transfers))
	for i, transfer := range transfers {
		createReq := dto.CreateSettlementRequest{
			FromMemberID:  transfer.FromMemberID,
			ToMemberID:    transfer.ToMemberID,
			Amount:        money.FromMinorUnits(transfer.Amount, req.CurrencyCode),
			CurrencyCode:  req.CurrencyCode,
			PaymentMethod: req.PaymentMethod,
		}
		settlement, err := c.createAndExecute(ctx, groupID, createReq, initiatorMemberID)
		if err != nil {
			logger.Warn("planned transfer failed",
				slog.String("group_id", groupID),
				slog.String("from_member_id", transfer.FromMemberID),
				slog.String("to_member_id", transfer.ToMemberID),
				slog.String("error", err.Error()))
			results[i] = dto.AppliedTransferResult{Error: err.Error()}
			continue
		}
		resp := dto.ToSettlementResponse(settlement)
		results[i] = dto.AppliedTransferResult{Settlement: &resp}
	}
	return results, nil
}

func (c *coordinatorService) validateAgainstLiveBalance(ctx context.Context, groupID, fromMemberID, toMemberID string, amount int64) error {
	balances, _, err := c.balanceSvc.GetGroupBalances(ctx, groupID)
	if err != nil {
		return err
	}
	var outstanding int64
	for _, b := range balances {
		if b.MemberID != fromMemberID {
			continue
		}
		for _, owes := range b.OwesTo {
			if owes.MemberID == toMemberID {
				outstanding = owes.Amount
			}
		}
	}
	if outstanding == 0 {
		return fmt.Errorf("%w: %s owes nothing to %s", apperrors.ErrValidation, fromMemberID, toMemberID)
	}
	if amount > outstanding {
		return fmt.Errorf("%w: amount %d exceeds outstanding debt %d", apperrors.ErrValidation, amount, outstanding)
	}
	return nil
}

// execute drives a freshly created settlement to a terminal state.
func (c *coordinatorService) execute(ctx context.Context, settlement *domain.Settlement, initiatorMemberID string) (*domain.Settlement, error) {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("settlement_id", settlement.SettlementID),
		slog.String("group_id", settlement.GroupID),
	)

	if err := c.settlementSvc.MarkProcessing(ctx, settlement.SettlementID); err != nil {
		return nil, err
	}
	c.publishStatusChange(settlement.GroupID, settlement.SettlementID)

	result, err := c.charge(ctx, settlement)
	if err != nil {
		// Outcome unknown after every attempt: record the failure and
		// leave any late processor success to the idempotency key when
		// the user retries with a fresh settlement.
		reason := processorTimeoutReason
		if !errors.Is(err, context.DeadlineExceeded) {
			reason = fmt.Sprintf("processor unreachable: %s", err.Error())
		}
		return c.finishFailed(ctx, settlement, initiatorMemberID, reason, logger)
	}

	if !result.Success {
		return c.finishFailed(ctx, settlement, initiatorMemberID, result.FailureReason, logger)
	}

	if err := c.settlementSvc.CompleteSettlement(ctx, settlement.SettlementID, result.TransactionRef); err != nil {
		return nil, err
	}
	logger.Info("settlement completed", slog.String("transaction_ref", result.TransactionRef))

	// Recompute so the completion is reflected in derived balances
	// before anyone is told to look; the BalanceChanged broadcast rides
	// the outbox written with the completion.
	if _, _, err := c.balanceSvc.GetGroupBalances(ctx, settlement.GroupID); err != nil {
		logger.Warn("balance recompute after completion failed", slog.String("error", err.Error()))
	}
	c.publishStatusChange(settlement.GroupID, settlement.SettlementID)

	return c.settlementSvc.GetSettlementByID(ctx, settlement.GroupID, settlement.SettlementID)
}

// charge calls the processor with a bounded timeout, retrying only
// transport failures where no definitive outcome was received. The
// settlement id rides along as idempotency key, so a retry after an
// ambiguous failure cannot double-charge.
func (c *coordinatorService) charge(ctx context.Context, settlement *domain.Settlement) (*portssvc.ChargeResult, error) {
	req := portssvc.ChargeRequest{
		IdempotencyKey: settlement.SettlementID,
		Amount:         settlement.Amount,
		CurrencyCode:   settlement.CurrencyCode,
		PaymentMethod:  settlement.PaymentMethod,
		FromMemberID:   settlement.FromMemberID,
		ToMemberID:     settlement.ToMemberID,
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxChargeAttempts; attempt++ {
		chargeCtx, cancel := context.WithTimeout(ctx, c.processorTimeout)
		result, err := c.processor.Charge(chargeCtx, req)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *coordinatorService) finishFailed(ctx context.Context, settlement *domain.Settlement, initiatorMemberID, reason string, logger *slog.Logger) (*domain.Settlement, error) {
	if err := c.settlementSvc.FailSettlement(ctx, settlement.SettlementID, reason); err != nil {
		return nil, err
	}
	logger.Warn("settlement failed", slog.String("reason", reason))

	// Failure is the initiator's problem, not a group broadcast.
	c.notifier.PublishToMember(initiatorMemberID, domain.Event{
		EventType:    domain.SettlementStatusChanged,
		GroupID:      settlement.GroupID,
		SettlementID: settlement.SettlementID,
		OccurredAt:   time.Now().UTC(),
	})

	return c.settlementSvc.GetSettlementByID(ctx, settlement.GroupID, settlement.SettlementID)
}

func (c *coordinatorService) publishStatusChange(groupID, settlementID string) {
	c.notifier.Publish(groupID, domain.Event{
		EventType:    domain.SettlementStatusChanged,
		GroupID:      groupID,
		SettlementID: settlementID,
		OccurredAt:   time.Now().UTC(),
	})
}

func sameTransfers(a, b []domain.PlannedTransfer) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
