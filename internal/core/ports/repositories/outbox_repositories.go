package repositories

import (
	"context"
	"time"

	"github.com/splitkit/settlement_app/internal/core/domain"
)

// OutboxEntry is an undispatched event row together with its identifier.
type OutboxEntry struct {
	EventID string
	Event   domain.Event
}

// OutboxReader defines read operations for the event outbox
type OutboxReader interface {
	// ListUndispatched retrieves up to limit undispatched events, oldest
	// first.
	ListUndispatched(ctx context.Context, limit int) ([]OutboxEntry, error)
}

// OutboxWriter defines write operations for the event outbox
type OutboxWriter interface {
	// MarkDispatched stamps the given events as delivered.
	MarkDispatched(ctx context.Context, eventIDs []string, dispatchedAt time.Time) error
}

// OutboxRepositoryFacade combines the outbox repository interfaces
type OutboxRepositoryFacade interface {
	OutboxReader
	OutboxWriter
}
