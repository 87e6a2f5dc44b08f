package runtime

import (
	"context"
	"time"

	"github.com/aretw0/screengraph/pkg/domain"
)

func (n *Navigator) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, SessionID: n.sessionID}
}

func (n *Navigator) emitNodeEnter(ctx context.Context, node string) {
	if n.hooks.OnNodeEnter != nil {
		n.hooks.OnNodeEnter(ctx, &domain.NodeEvent{EventBase: n.base(domain.EventNodeEnter), Node: node})
	}
}

func (n *Navigator) emitNodeLeave(ctx context.Context, node string) {
	if n.hooks.OnNodeLeave != nil {
		n.hooks.OnNodeLeave(ctx, &domain.NodeEvent{EventBase: n.base(domain.EventNodeLeave), Node: node})
	}
}

func (n *Navigator) emitTransition(ctx context.Context, from string, e *domain.Edge, action string, d time.Duration, err error) {
	if n.hooks.OnTransition == nil {
		return
	}
	to := e.To
	if to == "" {
		to = from
	}
	n.hooks.OnTransition(ctx, &domain.TransitionEvent{
		EventBase: n.base(domain.EventTransition),
		From:      from,
		To:        to,
		Kind:      e.Kind,
		Action:    action,
		Duration:  d,
		Err:       err,
	})
}

func (n *Navigator) emitRecovery(ctx context.Context, trigger, backFrom, resynced string, err error) {
	if n.hooks.OnRecovery != nil {
		n.hooks.OnRecovery(ctx, &domain.RecoveryEvent{
			EventBase: n.base(domain.EventRecovery),
			Trigger:   trigger,
			BackFrom:  backFrom,
			Resynced:  resynced,
			Err:       err,
		})
	}
}
