package screengraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/screengraph/internal/logging"
	"github.com/aretw0/screengraph/internal/runtime"
	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/aretw0/screengraph/pkg/session"
	"github.com/google/uuid"
)

// Navigator drives an application through a screen graph on behalf of a
// test. It wraps the runtime navigator with a session ID, optional snapshot
// persistence and locking. Not safe for concurrent use by several goroutines
// of one process without a store; with a store, operations on the same
// session are serialised.
type Navigator struct {
	nav      *runtime.Navigator
	id       string
	sessions *session.Manager
	logger   *slog.Logger
	// saved is the UpdatedAt of the last snapshot this navigator wrote or read.
	saved time.Time
}

// New starts a session at the graph's initial screen.
func New(g *graph.Graph, opts ...Option) (*Navigator, error) {
	n, err := build(g, opts)
	if err != nil {
		return nil, err
	}
	if n.sessions != nil {
		if err := n.sessions.Save(context.Background(), n.id, n.snapshot()); err != nil {
			return nil, fmt.Errorf("failed to persist new session: %w", err)
		}
	}
	n.logger.Debug("session started", "initial", g.InitialScreen())
	return n, nil
}

// Resume continues a persisted session. It requires WithStore and returns
// domain.ErrSessionNotFound when the store holds no such session.
func Resume(ctx context.Context, g *graph.Graph, sessionID string, opts ...Option) (*Navigator, error) {
	opts = append(opts, WithSessionID(sessionID))
	n, err := build(g, opts)
	if err != nil {
		return nil, err
	}
	if n.sessions == nil {
		return nil, errors.New("resume requires a snapshot store")
	}
	snap, err := n.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := n.nav.Restore(snap); err != nil {
		return nil, fmt.Errorf("failed to restore session %q: %w", sessionID, err)
	}
	n.saved = snap.UpdatedAt
	n.logger.Debug("session resumed", "node", snap.Current, "status", snap.Status)
	return n, nil
}

func build(g *graph.Graph, opts []Option) (*Navigator, error) {
	if g == nil {
		return nil, errors.New("graph is required")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.locker != nil && o.store == nil {
		return nil, errors.New("a distributed locker requires a snapshot store")
	}

	id := o.sessionID
	if id == "" {
		v7, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session id: %w", err)
		}
		id = v7.String()
	}

	logger := o.logger
	if logger == nil {
		logger = logging.NewNop()
	}

	rtOpts := []runtime.Option{
		runtime.WithLogger(logger),
		runtime.WithLifecycleHooks(o.hooks),
		runtime.WithSessionID(id),
		runtime.WithPollInterval(o.pollInterval),
	}
	if o.driver != nil {
		rtOpts = append(rtOpts, runtime.WithDriver(o.driver))
	}
	if o.verifyTimeout != nil {
		rtOpts = append(rtOpts, runtime.WithVerifyTimeout(*o.verifyTimeout))
	}

	n := &Navigator{
		nav:    runtime.NewNavigator(g, rtOpts...),
		id:     id,
		logger: logger.With("session_id", id),
	}
	if o.store != nil {
		mopts := []session.Option{session.WithLogger(logger)}
		if o.locker != nil {
			mopts = append(mopts, session.WithLocker(o.locker), session.WithLockTTL(o.lockTTL))
		}
		n.sessions = session.NewManager(o.store, mopts...)
	}
	return n, nil
}

// SessionID identifies the session in logs, events and the store.
func (n *Navigator) SessionID() string { return n.id }

// Graph returns the graph being navigated.
func (n *Navigator) Graph() *graph.Graph { return n.nav.Graph() }

// UserState is the live state guards are evaluated against.
func (n *Navigator) UserState() *domain.UserState { return n.nav.UserState() }

// Current returns the current screen, or "" when the position is not known.
func (n *Navigator) Current() string { return n.nav.Current() }

// Position returns the state machine position.
func (n *Navigator) Position() domain.Position { return n.nav.Position() }

// History returns the screens visited, oldest first.
func (n *Navigator) History() []string { return n.nav.History() }

// Goto navigates to a screen along the shortest path allowed by the current
// user state.
func (n *Navigator) Goto(ctx context.Context, target string) error {
	return n.run(ctx, func(ctx context.Context) error {
		return n.nav.Goto(ctx, target)
	})
}

// PerformAction performs a named action, navigating to a screen that offers
// it first when needed.
func (n *Navigator) PerformAction(ctx context.Context, action string, params map[string]any) error {
	return n.run(ctx, func(ctx context.Context) error {
		return n.nav.PerformAction(ctx, action, params)
	})
}

// NowAt tells the navigator which screen is displayed, without verification.
func (n *Navigator) NowAt(ctx context.Context, screen string) error {
	return n.run(ctx, func(context.Context) error {
		return n.nav.NowAt(screen)
	})
}

// Resync scans the graph's screens for the one actually displayed.
func (n *Navigator) Resync(ctx context.Context) (string, error) {
	var found string
	err := n.run(ctx, func(ctx context.Context) error {
		var err error
		found, err = n.nav.Resync(ctx)
		return err
	})
	return found, err
}

// Relaunch restarts the application through the driver's DeviceControl and
// re-synchronises. User state is kept.
func (n *Navigator) Relaunch(ctx context.Context, args ...string) error {
	dc, ok := n.driver().(automation.DeviceControl)
	if !ok {
		return errors.New("driver does not support relaunching")
	}
	return n.run(ctx, func(ctx context.Context) error {
		if err := dc.Relaunch(ctx, args...); err != nil {
			return fmt.Errorf("relaunch: %w", err)
		}
		_, err := n.nav.Resync(ctx)
		return err
	})
}

// Snapshot captures the session.
func (n *Navigator) Snapshot() domain.Snapshot { return n.nav.Snapshot() }

// End deletes the persisted session. The navigator stays usable in memory.
func (n *Navigator) End(ctx context.Context) error {
	if n.sessions == nil {
		return nil
	}
	return n.sessions.Delete(ctx, n.id)
}

func (n *Navigator) driver() automation.Driver {
	return n.nav.Driver()
}

func (n *Navigator) snapshot() domain.Snapshot {
	snap := n.nav.Snapshot()
	n.saved = snap.UpdatedAt
	return snap
}

// run executes an operation. With a store, it holds the session lock, picks
// up a newer snapshot written by another runner and persists the result. A
// persistence failure never hides the operation's own error.
func (n *Navigator) run(ctx context.Context, op func(context.Context) error) error {
	if n.sessions == nil {
		return op(ctx)
	}
	return n.sessions.WithLock(ctx, n.id, func(ctx context.Context) error {
		store := n.sessions.Store()
		stored, err := store.Load(ctx, n.id)
		switch {
		case err == nil && stored.UpdatedAt.After(n.saved):
			if err := n.nav.Restore(stored); err != nil {
				return fmt.Errorf("failed to restore newer snapshot: %w", err)
			}
			n.saved = stored.UpdatedAt
			n.logger.DebugContext(ctx, "picked up newer snapshot", "node", stored.Current)
		case err != nil && !errors.Is(err, domain.ErrSessionNotFound):
			return fmt.Errorf("failed to load session: %w", err)
		}

		opErr := op(ctx)
		if saveErr := store.Save(ctx, n.id, n.snapshot()); saveErr != nil {
			if opErr != nil {
				n.logger.WarnContext(ctx, "failed to persist session", "error", saveErr)
				return opErr
			}
			return fmt.Errorf("failed to persist session: %w", saveErr)
		}
		return opErr
	})
}
