package domain

import "time"

// EventType identifies a realtime notification kind.
type EventType string

const (
	// BalanceChanged signals that a group's balances shifted. The payload
	// carries no deltas; receivers re-fetch authoritative state.
	BalanceChanged EventType = "BALANCE_CHANGED"
	// SettlementStatusChanged signals a settlement lifecycle transition.
	SettlementStatusChanged EventType = "SETTLEMENT_STATUS_CHANGED"
)

// Event is a realtime cue pushed to subscribed clients. It deliberately
// carries identifiers only: downstream observers always recompute from
// authoritative state, which is what makes burst coalescing safe.
type Event struct {
	EventType    EventType `json:"eventType"`
	GroupID      string    `json:"groupID"`
	SettlementID string    `json:"settlementID,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
}
