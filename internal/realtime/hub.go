package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/splitkit/settlement_app/internal/core/domain"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
)

// subscriptionBuffer bounds the per-subscription event queue. A client
// that falls this far behind loses events; since events are re-fetch
// cues, the next delivered event restores a consistent view.
const subscriptionBuffer = 16

// Subscription is one client's attachment to a group's event stream.
// Events arrive on Events() until Close is called.
type Subscription struct {
	hub      *Hub
	groupID  string
	memberID string
	ch       chan domain.Event
	once     sync.Once
}

// Events returns the channel events are delivered on. The channel is
// closed when the subscription is closed.
func (s *Subscription) Events() <-chan domain.Event {
	return s.ch
}

// Close detaches the subscription from the hub. Safe to call more than
// once, and safe concurrently with event delivery.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.ch)
	})
}

// pendingBroadcast holds the latest coalesced event for a group while
// its flush timer runs.
type pendingBroadcast struct {
	latest domain.Event
	timer  *time.Timer
}

// Hub fans settlement and balance events out to subscribed clients.
// BalanceChanged bursts for the same group inside the coalescing window
// collapse to a single latest-wins delivery; settlement lifecycle events
// are never coalesced. Delivery to slow subscribers is lossy by design
// of the event contract: events carry identifiers, not state.
type Hub struct {
	mu      sync.RWMutex
	groups  map[string]map[*Subscription]struct{}
	members map[string]map[*Subscription]struct{}
	pending map[string]*pendingBroadcast
	window  time.Duration
	closed  bool
	logger  *slog.Logger
}

var _ portssvc.RealtimeNotifier = (*Hub)(nil)

// NewHub creates a hub with the given coalescing window. A zero or
// negative window disables coalescing entirely.
func NewHub(window time.Duration, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		groups:  make(map[string]map[*Subscription]struct{}),
		members: make(map[string]map[*Subscription]struct{}),
		pending: make(map[string]*pendingBroadcast),
		window:  window,
		logger:  logger,
	}
}

// Subscribe attaches a member to a group's event stream.
func (h *Hub) Subscribe(groupID, memberID string) *Subscription {
	sub := &Subscription{
		hub:      h,
		groupID:  groupID,
		memberID: memberID,
		ch:       make(chan domain.Event, subscriptionBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		sub.once.Do(func() {}) // already detached
		return sub
	}
	if h.groups[groupID] == nil {
		h.groups[groupID] = make(map[*Subscription]struct{})
	}
	h.groups[groupID][sub] = struct{}{}
	if h.members[memberID] == nil {
		h.members[memberID] = make(map[*Subscription]struct{})
	}
	h.members[memberID][sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.groups[sub.groupID]; set != nil {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.groups, sub.groupID)
		}
	}
	if set := h.members[sub.memberID]; set != nil {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.members, sub.memberID)
		}
	}
}

// Publish broadcasts an event to every subscriber of the group.
// BalanceChanged events are debounced per group: repeated publishes
// inside the window replace the pending event, and one flush fires when
// the window elapses.
func (h *Hub) Publish(groupID string, event domain.Event) {
	if event.EventType != domain.BalanceChanged || h.window <= 0 {
		h.broadcastGroup(groupID, event)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	if p, ok := h.pending[groupID]; ok {
		p.latest = event
		return
	}
	p := &pendingBroadcast{latest: event}
	p.timer = time.AfterFunc(h.window, func() { h.flush(groupID) })
	h.pending[groupID] = p
}

func (h *Hub) flush(groupID string) {
	h.mu.Lock()
	p, ok := h.pending[groupID]
	if ok {
		delete(h.pending, groupID)
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	h.broadcastGroup(groupID, p.latest)
}

// PublishToMember delivers an event to one member's subscriptions only.
func (h *Hub) PublishToMember(memberID string, event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.members[memberID] {
		h.deliver(sub, event)
	}
}

func (h *Hub) broadcastGroup(groupID string, event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.groups[groupID] {
		h.deliver(sub, event)
	}
}

// deliver is non-blocking; a full subscriber queue drops the event.
func (h *Hub) deliver(sub *Subscription, event domain.Event) {
	select {
	case sub.ch <- event:
	default:
		h.logger.Warn("dropping realtime event for slow subscriber",
			slog.String("group_id", sub.groupID),
			slog.String("member_id", sub.memberID),
			slog.String("event_type", string(event.EventType)))
	}
}

// Close flushes nothing, stops pending timers and detaches every
// subscription. Publish calls after Close are no-ops.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for groupID, p := range h.pending {
		p.timer.Stop()
		delete(h.pending, groupID)
	}
	var subs []*Subscription
	for _, set := range h.groups {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
