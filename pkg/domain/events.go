package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter  EventType = "node_enter"
	EventNodeLeave  EventType = "node_leave"
	EventTransition EventType = "transition"
	EventRecovery   EventType = "recovery"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
}

// NodeEvent represents entry to or exit from a node.
type NodeEvent struct {
	EventBase
	Node string `json:"node"`
}

// TransitionEvent is emitted after every executed edge, successful or not.
type TransitionEvent struct {
	EventBase
	From     string        `json:"from"`
	To       string        `json:"to"`
	Kind     EdgeKind      `json:"kind"`
	Action   string        `json:"action,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Recovery triggers.
const (
	TriggerPathNotFound       = "path_not_found"
	TriggerVerification       = "verification"
	TriggerTransition         = "transition"
	TriggerActionNotAvailable = "action_not_available"
	TriggerConsumed           = "consumed"
)

// RecoveryEvent is emitted after every recovery attempt.
type RecoveryEvent struct {
	EventBase
	Trigger string `json:"trigger"`
	// BackFrom is the node whose back action ran, empty if none did.
	BackFrom string `json:"back_from,omitempty"`
	// Resynced is the node found by re-synchronisation, empty if none matched.
	Resynced string `json:"resynced,omitempty"`
	Err      error  `json:"-"`
}

// LifecycleHooks defines callbacks for navigator observability.
type LifecycleHooks struct {
	OnNodeEnter  func(context.Context, *NodeEvent)
	OnNodeLeave  func(context.Context, *NodeEvent)
	OnTransition func(context.Context, *TransitionEvent)
	OnRecovery   func(context.Context, *RecoveryEvent)
}

// Merge returns hooks calling h then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:  chain(h.OnNodeEnter, other.OnNodeEnter),
		OnNodeLeave:  chain(h.OnNodeLeave, other.OnNodeLeave),
		OnTransition: chain(h.OnTransition, other.OnTransition),
		OnRecovery:   chain(h.OnRecovery, other.OnRecovery),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
