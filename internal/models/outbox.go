package models

import "time"

// OutboxEvent mirrors the event_outbox table. A row is written in the
// same database transaction as the state change it announces, and the
// dispatcher publishes it afterwards. DispatchedAt is nil until then.
type OutboxEvent struct {
	EventID      string     `db:"event_id"`
	GroupID      string     `db:"group_id"`
	SettlementID *string    `db:"settlement_id"`
	EventType    string     `db:"event_type"`
	CreatedAt    time.Time  `db:"created_at"`
	DispatchedAt *time.Time `db:"dispatched_at"`
}
