package services

import (
	"context"

	"github.com/splitkit/settlement_app/internal/core/domain"
)

// RealtimeNotifier fans out settlement and balance events to connected
// clients. Delivery is at-least-once and unordered; events are cues to
// re-fetch authoritative state, never payloads to apply.
type RealtimeNotifier interface {
	// Publish broadcasts an event to every subscriber of the group.
	// BalanceChanged bursts for the same group inside the coalescing
	// window collapse to the latest event.
	Publish(groupID string, event domain.Event)

	// PublishToMember delivers an event to one member's subscriptions
	// only, across all groups they observe.
	PublishToMember(memberID string, event domain.Event)
}

// MemberDirectorySvc is a read-only lookup used for display enrichment
// only; it never participates in balance math.
type MemberDirectorySvc interface {
	GetMember(ctx context.Context, memberID string) (*domain.Member, error)
	ListGroupMembers(ctx context.Context, groupID string) ([]domain.Member, error)
}
