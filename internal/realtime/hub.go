package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Broadcaster is the publishing side of the hub, injected into the workflow
// services. Delivery is best-effort and at-most-once per subscriber; a failed
// or dropped delivery is never surfaced to the publisher.
type Broadcaster interface {
	Publish(activityID string, event Event)
}

// Subscription is one observer's handle on an activity channel. Events are
// received from Events() until the subscription is cancelled or the hub shuts
// down, at which point the channel is closed.
type Subscription struct {
	activityID string
	ch         chan Event
}

// ActivityID returns the activity channel this subscription belongs to.
func (s *Subscription) ActivityID() string {
	return s.activityID
}

// Events returns the receive side of the subscriber's bounded buffer.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Hub fans events out to subscribers grouped by activity. It has a
// process-scoped lifecycle: constructed at startup, injected into services,
// closed at shutdown. Publish never blocks on a slow subscriber: each
// subscription has a bounded buffer and the oldest event is dropped on
// overflow. A subscriber that missed events reconciles via the slots
// snapshot endpoint after reconnecting.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[*Subscription]struct{}
	buffer int
	closed bool
	logger *zap.SugaredLogger
}

// NewHub creates a hub with the given per-subscriber buffer size.
func NewHub(buffer int, logger *zap.SugaredLogger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		rooms:  make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new observer on the given activity channel. On a
// closed hub the returned subscription's channel is already closed.
func (h *Hub) Subscribe(activityID string) *Subscription {
	sub := &Subscription{
		activityID: activityID,
		ch:         make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.ch)
		return sub
	}

	room, ok := h.rooms[activityID]
	if !ok {
		room = make(map[*Subscription]struct{})
		h.rooms[activityID] = room
	}
	room[sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscription and closes its channel. Calling it
// again, or with a handle that was never subscribed, is a no-op.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sub.activityID]
	if !ok {
		return
	}
	if _, member := room[sub]; !member {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, sub.activityID)
	}
	close(sub.ch)
}

// Publish delivers the event to every current subscriber of the activity
// channel. The hub lock is held across the fan-out; since sends never block,
// this only serializes publishers, which is what gives a single channel its
// per-activity delivery order.
func (h *Hub) Publish(activityID string, event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for sub := range h.rooms[activityID] {
		select {
		case sub.ch <- event:
		default:
			// Buffer full: drop the oldest event, then enqueue the new one.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- event:
			default:
			}
			h.logger.Debugw("subscriber buffer full, dropped oldest event",
				"activity_id", activityID,
				"event_type", event.Type,
			)
		}
	}
}

// SubscriberCount returns the number of subscribers on an activity channel.
func (h *Hub) SubscriberCount(activityID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[activityID])
}

// Close shuts the hub down: all subscriber channels are closed and further
// publishes are discarded. Safe to call more than once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for activityID, room := range h.rooms {
		for sub := range room {
			close(sub.ch)
		}
		delete(h.rooms, activityID)
	}
}
