package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
)

// PgxOutboxRepository reads and stamps event_outbox rows. Rows are
// inserted elsewhere, inside the transaction of the state change they
// announce; this repository only serves the dispatcher side.
type PgxOutboxRepository struct {
	BaseRepository
}

// newPgxOutboxRepository creates a new repository for the event outbox.
func newPgxOutboxRepository(pool *pgxpool.Pool) portsrepo.OutboxRepositoryFacade {
	return &PgxOutboxRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.OutboxRepositoryFacade = (*PgxOutboxRepository)(nil)

// ListUndispatched retrieves up to limit undispatched events, oldest first.
func (r *PgxOutboxRepository) ListUndispatched(ctx context.Context, limit int) ([]portsrepo.OutboxEntry, error) {
	query := `
		SELECT event_id, group_id, settlement_id, event_type, created_at
		FROM event_outbox
		WHERE dispatched_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1;
	`
	rows, err := r.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list undispatched events", err)
	}
	defer rows.Close()

	var out []portsrepo.OutboxEntry
	for rows.Next() {
		var (
			entry        portsrepo.OutboxEntry
			settlementID *string
			eventType    string
			createdAt    time.Time
		)
		if err := rows.Scan(&entry.EventID, &entry.Event.GroupID, &settlementID, &eventType, &createdAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan outbox row", err)
		}
		entry.Event.EventType = domain.EventType(eventType)
		entry.Event.OccurredAt = createdAt
		if settlementID != nil {
			entry.Event.SettlementID = *settlementID
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "outbox row iteration failed", err)
	}
	return out, nil
}

// MarkDispatched stamps the given events as delivered.
func (r *PgxOutboxRepository) MarkDispatched(ctx context.Context, eventIDs []string, dispatchedAt time.Time) error {
	if len(eventIDs) == 0 {
		return nil
	}
	query := `
		UPDATE event_outbox
		SET dispatched_at = $1
		WHERE event_id = ANY($2) AND dispatched_at IS NULL;
	`
	_, err := r.Pool.Exec(ctx, query, dispatchedAt, eventIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark outbox events dispatched", err)
	}
	return nil
}
