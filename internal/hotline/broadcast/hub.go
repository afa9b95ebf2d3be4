package broadcast

import (
	"context"

	"github.com/rhxd/rhxd/internal/logger"
	"github.com/rhxd/rhxd/internal/telemetry"
)

// Recipient is a mailbox a Hub can deliver an Event to. Session implements
// this; the hub never reaches into session internals beyond this interface.
type Recipient interface {
	UserID() uint16
	// TrySend attempts a non-blocking enqueue and reports whether it
	// succeeded.
	TrySend(Event) bool
	// Close transitions the recipient toward Closing. Called when a
	// roster-affecting event cannot be enqueued.
	Close()
}

// Registry supplies the hub a consistent snapshot of current recipients.
// The hub never mutates the registry and never calls back into handlers;
// it only reads a snapshot and tries to enqueue.
type Registry interface {
	SnapshotRecipients() []Recipient
}

// Metrics records broadcast outcomes. Pass nil to Hub for zero overhead.
type Metrics interface {
	EventPublished(kind string)
	EventDropped(kind string)
}

// Hub fans Events out to a Registry's current recipients, applying the
// per-Kind delivery filter and backpressure rule: Chat events are dropped
// (and counted) for a stuck recipient; roster events are never dropped —
// a recipient that cannot accept one is closed instead.
type Hub struct {
	registry Registry
	metrics  Metrics
}

// NewHub returns a Hub delivering through registry. metrics may be nil.
func NewHub(registry Registry, metrics Metrics) *Hub {
	return &Hub{registry: registry, metrics: metrics}
}

// Publish delivers ev to the appropriate recipients per the broadcast
// delivery table: self-exclusion for UserJoined/UserLeft, target-only for
// InstantMsg/Disconnect, and unfiltered fan-out for UserChanged/Chat.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	ctx, span := telemetry.StartBroadcastSpan(ctx, ev.Kind.String())
	defer span.End()

	recipients := h.registry.SnapshotRecipients()

	delivered, dropped := 0, 0
	for _, r := range recipients {
		switch {
		case !h.wantsEvent(r, ev):
			continue
		case r.TrySend(ev):
			delivered++
		case ev.roster():
			// Never silently drop a roster event: the laggard is closed so
			// it cannot present a stale roster to the operator reconnecting.
			r.Close()
		default:
			dropped++
		}
	}

	telemetry.SetAttributes(ctx, telemetry.Recipients(delivered), telemetry.Dropped(dropped))
	logger.DebugCtx(ctx, "broadcast published",
		"event_kind", ev.Kind.String(),
		"recipients", delivered,
		"dropped", dropped,
	)

	if h.metrics != nil {
		h.metrics.EventPublished(ev.Kind.String())
		for i := 0; i < dropped; i++ {
			h.metrics.EventDropped(ev.Kind.String())
		}
	}
}

// wantsEvent applies the per-event delivery filter from the broadcast
// delivery table.
func (h *Hub) wantsEvent(r Recipient, ev Event) bool {
	if target, ok := ev.targetUserID(); ok {
		return r.UserID() == target
	}
	if self, ok := ev.selfUserID(); ok {
		return r.UserID() != self
	}
	return true
}
