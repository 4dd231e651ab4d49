package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/splitkit/settlement_app/internal/core/domain"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
)

// eventsChannel is the redis pub/sub channel shared by all instances.
const eventsChannel = "settlement.events"

// envelope wraps an event with its routing scope for cross-instance
// transport.
type envelope struct {
	Scope  string       `json:"scope"` // "group" or "member"
	Target string       `json:"target"`
	Event  domain.Event `json:"event"`
}

// RedisBridge replicates hub publishes across instances via redis
// pub/sub. Publishes go to redis; every instance (this one included)
// receives them in Run and forwards to its local hub, so coalescing
// still happens hub-side on each instance.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
	logger *slog.Logger
}

var _ portssvc.RealtimeNotifier = (*RedisBridge)(nil)

// NewRedisBridge wraps hub with cross-instance fan-out through client.
func NewRedisBridge(client *redis.Client, hub *Hub, logger *slog.Logger) *RedisBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBridge{client: client, hub: hub, logger: logger}
}

// Publish sends a group event through redis. If the publish fails, the
// event is delivered locally so single-instance behaviour degrades
// gracefully instead of going silent.
func (b *RedisBridge) Publish(groupID string, event domain.Event) {
	if !b.send(envelope{Scope: "group", Target: groupID, Event: event}) {
		b.hub.Publish(groupID, event)
	}
}

// PublishToMember sends a member-scoped event through redis, falling
// back to local delivery on failure.
func (b *RedisBridge) PublishToMember(memberID string, event domain.Event) {
	if !b.send(envelope{Scope: "member", Target: memberID, Event: event}) {
		b.hub.PublishToMember(memberID, event)
	}
}

func (b *RedisBridge) send(env envelope) bool {
	payload, err := json.Marshal(env)
	if err != nil {
		b.logger.Error("failed to marshal realtime envelope", slog.String("error", err.Error()))
		return false
	}
	if err := b.client.Publish(context.Background(), eventsChannel, payload).Err(); err != nil {
		b.logger.Warn("redis publish failed, delivering locally", slog.String("error", err.Error()))
		return false
	}
	return true
}

// Run subscribes to the shared channel and forwards received events to
// the local hub until ctx is cancelled. It blocks and is meant to run
// in its own goroutine.
func (b *RedisBridge) Run(ctx context.Context) {
	sub := b.client.Subscribe(ctx, eventsChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("discarding malformed realtime envelope", slog.String("error", err.Error()))
				continue
			}
			switch env.Scope {
			case "group":
				b.hub.Publish(env.Target, env.Event)
			case "member":
				b.hub.PublishToMember(env.Target, env.Event)
			default:
				b.logger.Warn("discarding realtime envelope with unknown scope", slog.String("scope", env.Scope))
			}
		}
	}
}
