package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	"github.com/splitkit/settlement_app/internal/models"
	"github.com/splitkit/settlement_app/internal/utils/mapping"
)

// inFlightConstraint is the partial unique index that allows at most one
// non-terminal settlement per ordered (group, from, to) pair. Creating
// against it is a single conditional insert, so two simultaneous
// "Pay Now" requests cannot both slip through a check-then-act gap.
const inFlightConstraint = "uq_settlements_in_flight"

const settlementColumns = `
	settlement_id, group_id, from_member_id, to_member_id, amount, currency_code,
	status, payment_method, transaction_ref, failure_reason, completed_at,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxSettlementRepository struct {
	BaseRepository
}

// newPgxSettlementRepository creates a new repository for settlement data.
func newPgxSettlementRepository(pool *pgxpool.Pool) portsrepo.SettlementRepositoryFacade {
	return &PgxSettlementRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

// CreateSettlement inserts a new PENDING settlement. The partial unique
// index turns a concurrent duplicate into a constraint violation, which
// surfaces as apperrors.ErrSettlementInFlight.
func (r *PgxSettlementRepository) CreateSettlement(ctx context.Context, settlement domain.Settlement) error {
	m := mapping.ToModelSettlement(settlement)
	query := `
		INSERT INTO settlements (
			settlement_id, group_id, from_member_id, to_member_id, amount, currency_code,
			status, payment_method, transaction_ref, failure_reason, completed_at,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.SettlementID,
		m.GroupID,
		m.FromMemberID,
		m.ToMemberID,
		m.Amount,
		m.CurrencyCode,
		m.Status,
		m.PaymentMethod,
		m.TransactionRef,
		m.FailureReason,
		m.CompletedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapCreateError(err, settlement)
	}
	return nil
}

// mapCreateError classifies an insert failure. A violation of the
// in-flight partial unique index means a non-terminal settlement
// already exists for the pair; any other unique violation is a plain
// duplicate.
func mapCreateError(err error, settlement domain.Settlement) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == inFlightConstraint {
			return fmt.Errorf("%w: pair %s -> %s in group %s",
				apperrors.ErrSettlementInFlight, settlement.FromMemberID, settlement.ToMemberID, settlement.GroupID)
		}
		return apperrors.ErrDuplicate
	}
	return apperrors.NewAppError(500, "failed to insert settlement "+settlement.SettlementID, err)
}

// lockSettlement loads a settlement row FOR UPDATE inside tx, serializing
// every lifecycle write on the same settlement id.
func (r *PgxSettlementRepository) lockSettlement(ctx context.Context, tx pgx.Tx, settlementID string) (models.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE settlement_id = $1 FOR UPDATE;`
	row := tx.QueryRow(ctx, query, settlementID)
	m, err := scanSettlement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Settlement{}, apperrors.ErrNotFound
		}
		return models.Settlement{}, apperrors.NewAppError(500, "failed to lock settlement "+settlementID, err)
	}
	return m, nil
}

func (r *PgxSettlementRepository) transition(ctx context.Context, settlementID string, target domain.SettlementStatus, apply func(tx pgx.Tx, current models.Settlement) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	current, err := r.lockSettlement(ctx, tx, settlementID)
	if err != nil {
		return err
	}
	if !domain.SettlementStatus(current.Status).CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s for settlement %s",
			apperrors.ErrInvalidTransition, current.Status, target, settlementID)
	}
	if err := apply(tx, current); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// MarkProcessing transitions PENDING -> PROCESSING.
func (r *PgxSettlementRepository) MarkProcessing(ctx context.Context, settlementID string, updatedAt time.Time) error {
	return r.transition(ctx, settlementID, domain.SettlementProcessing, func(tx pgx.Tx, _ models.Settlement) error {
		query := `UPDATE settlements SET status = $2, last_updated_at = $3 WHERE settlement_id = $1;`
		if _, err := tx.Exec(ctx, query, settlementID, models.SettlementProcessing, updatedAt); err != nil {
			return apperrors.NewAppError(500, "failed to mark settlement processing", err)
		}
		return nil
	})
}

// MarkCompleted transitions PROCESSING -> COMPLETED and writes the
// BalanceChanged outbox event in the same transaction, so the cue to
// refresh balances cannot be lost between the two writes.
func (r *PgxSettlementRepository) MarkCompleted(ctx context.Context, settlementID string, transactionRef string, completedAt time.Time) error {
	return r.transition(ctx, settlementID, domain.SettlementCompleted, func(tx pgx.Tx, current models.Settlement) error {
		query := `
			UPDATE settlements
			SET status = $2, transaction_ref = $3, completed_at = $4, last_updated_at = $4
			WHERE settlement_id = $1;
		`
		if _, err := tx.Exec(ctx, query, settlementID, models.SettlementCompleted, transactionRef, completedAt); err != nil {
			return apperrors.NewAppError(500, "failed to mark settlement completed", err)
		}

		outboxQuery := `
			INSERT INTO event_outbox (event_id, group_id, settlement_id, event_type, created_at)
			VALUES ($1, $2, $3, $4, $5);
		`
		if _, err := tx.Exec(ctx, outboxQuery, uuid.NewString(), current.GroupID, settlementID, string(domain.BalanceChanged), completedAt); err != nil {
			return apperrors.NewAppError(500, "failed to write outbox event for settlement "+settlementID, err)
		}
		return nil
	})
}

// MarkFailed transitions PENDING or PROCESSING -> FAILED. A repeat call
// with the same reason on an already-failed settlement is a no-op so
// duplicate failure notifications stay harmless.
func (r *PgxSettlementRepository) MarkFailed(ctx context.Context, settlementID string, reason string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	current, err := r.lockSettlement(ctx, tx, settlementID)
	if err != nil {
		return err
	}

	if isRepeatFailure(current, reason) {
		return r.Commit(ctx, tx)
	}
	if !domain.SettlementStatus(current.Status).CanTransitionTo(domain.SettlementFailed) {
		return fmt.Errorf("%w: %s -> %s for settlement %s",
			apperrors.ErrInvalidTransition, current.Status, domain.SettlementFailed, settlementID)
	}

	query := `UPDATE settlements SET status = $2, failure_reason = $3, last_updated_at = $4 WHERE settlement_id = $1;`
	if _, err := tx.Exec(ctx, query, settlementID, models.SettlementFailed, reason, updatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to mark settlement failed", err)
	}
	return r.Commit(ctx, tx)
}

// isRepeatFailure reports whether MarkFailed is re-recording a failure
// that is already on the row with the same reason. Such calls commit
// without touching the row.
func isRepeatFailure(current models.Settlement, reason string) bool {
	return models.SettlementStatus(current.Status) == models.SettlementFailed &&
		current.FailureReason != nil && *current.FailureReason == reason
}

// MarkCancelled transitions PENDING -> CANCELLED.
func (r *PgxSettlementRepository) MarkCancelled(ctx context.Context, settlementID string, reason string, updatedAt time.Time) error {
	return r.transition(ctx, settlementID, domain.SettlementCancelled, func(tx pgx.Tx, current models.Settlement) error {
		query := `UPDATE settlements SET status = $2, failure_reason = $3, last_updated_at = $4 WHERE settlement_id = $1;`
		if _, err := tx.Exec(ctx, query, settlementID, models.SettlementCancelled, reason, updatedAt); err != nil {
			return apperrors.NewAppError(500, "failed to mark settlement cancelled", err)
		}
		return nil
	})
}

// FindSettlementByID retrieves a settlement by its unique identifier.
func (r *PgxSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.Settlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlements WHERE settlement_id = $1;`
	row := r.Pool.QueryRow(ctx, query, settlementID)
	m, err := scanSettlement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find settlement "+settlementID, err)
	}
	d := mapping.ToDomainSettlement(m)
	return &d, nil
}

// ListSettlements retrieves a page of a group's settlements, newest
// first, plus the total count matching the filter.
func (r *PgxSettlementRepository) ListSettlements(ctx context.Context, groupID string, filter portsrepo.ListSettlementsFilter, page int, limit int) ([]domain.Settlement, int, error) {
	args := []any{groupID}
	where := `WHERE group_id = $1`
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where += ` AND status = $2`
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM settlements ` + where + `;`
	if err := r.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count settlements for group "+groupID, err)
	}

	offset := (page - 1) * limit
	listQuery := fmt.Sprintf(`
		SELECT %s FROM settlements %s
		ORDER BY created_at DESC, settlement_id DESC
		LIMIT $%d OFFSET $%d;
	`, settlementColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.Pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to list settlements for group "+groupID, err)
	}
	defer rows.Close()

	settlements, err := scanSettlements(rows)
	if err != nil {
		return nil, 0, err
	}
	return mapping.ToDomainSettlements(settlements), total, nil
}

// ListCompletedSettlements retrieves every completed settlement for a group.
func (r *PgxSettlementRepository) ListCompletedSettlements(ctx context.Context, groupID string) ([]domain.Settlement, error) {
	query := `
		SELECT ` + settlementColumns + ` FROM settlements
		WHERE group_id = $1 AND status = $2
		ORDER BY completed_at ASC, settlement_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, groupID, models.SettlementCompleted)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list completed settlements for group "+groupID, err)
	}
	defer rows.Close()

	settlements, err := scanSettlements(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainSettlements(settlements), nil
}

// FindStaleSettlements retrieves non-terminal settlements untouched
// since the cutoff, oldest first.
func (r *PgxSettlementRepository) FindStaleSettlements(ctx context.Context, cutoff time.Time, limit int) ([]domain.Settlement, error) {
	query := `
		SELECT ` + settlementColumns + ` FROM settlements
		WHERE status IN ($1, $2) AND last_updated_at < $3
		ORDER BY last_updated_at ASC
		LIMIT $4;
	`
	rows, err := r.Pool.Query(ctx, query, models.SettlementPending, models.SettlementProcessing, cutoff, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to find stale settlements", err)
	}
	defer rows.Close()

	settlements, err := scanSettlements(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainSettlements(settlements), nil
}

func scanSettlement(row pgx.Row) (models.Settlement, error) {
	var m models.Settlement
	err := row.Scan(
		&m.SettlementID,
		&m.GroupID,
		&m.FromMemberID,
		&m.ToMemberID,
		&m.Amount,
		&m.CurrencyCode,
		&m.Status,
		&m.PaymentMethod,
		&m.TransactionRef,
		&m.FailureReason,
		&m.CompletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanSettlements(rows pgx.Rows) ([]models.Settlement, error) {
	var out []models.Settlement
	for rows.Next() {
		m, err := scanSettlement(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan settlement row", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "settlement row iteration failed", err)
	}
	return out, nil
}
