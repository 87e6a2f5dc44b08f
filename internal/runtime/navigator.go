package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/screengraph/internal/logging"
	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
)

// Navigator is the session cursor over a graph. It is not safe for concurrent
// use; callers serialise operations (see pkg/session).
type Navigator struct {
	graph         *graph.Graph
	driver        automation.Driver
	state         *domain.UserState
	logger        *slog.Logger
	hooks         domain.LifecycleHooks
	sessionID     string
	verifyTimeout time.Duration
	pollInterval  time.Duration

	pos       domain.Position
	lastKnown string
	// consumed is set once an action-only edge ran on a dismiss-on-use node.
	consumed bool
	// opener is the node a dismiss-on-use node was opened from.
	opener  string
	history []string
}

// NewNavigator creates a navigator at the graph's initial screen.
func NewNavigator(g *graph.Graph, opts ...Option) *Navigator {
	n := &Navigator{
		graph:         g,
		driver:        g.Driver(),
		logger:        logging.NewNop(),
		verifyTimeout: DefaultVerifyTimeout,
		pollInterval:  DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.state == nil {
		n.state = g.NewUserState()
	}
	if n.sessionID != "" {
		n.logger = n.logger.With("session_id", n.sessionID)
	}
	initial := g.InitialScreen()
	n.pos = domain.Position{Status: domain.StatusAt, Node: initial}
	n.lastKnown = initial
	n.history = []string{initial}
	return n
}

// Graph returns the graph being navigated.
func (n *Navigator) Graph() *graph.Graph { return n.graph }

// Driver returns the driver effects and checks run against.
func (n *Navigator) Driver() automation.Driver { return n.driver }

// UserState is the live state guards are evaluated against. Test code may
// read and write it directly.
func (n *Navigator) UserState() *domain.UserState { return n.state }

// Position returns the state machine position.
func (n *Navigator) Position() domain.Position { return n.pos }

// Current returns the current node, or "" unless the position is At.
func (n *Navigator) Current() string {
	if n.pos.Status != domain.StatusAt {
		return ""
	}
	return n.pos.Node
}

// History returns the screens visited, oldest first.
func (n *Navigator) History() []string { return slices.Clone(n.history) }

// Goto navigates to target along the shortest guard-satisfied path.
// Being At(target) already performs no effect.
func (n *Navigator) Goto(ctx context.Context, target string) error {
	node, ok := n.graph.Node(target)
	if !ok || node.IsAction {
		return fmt.Errorf("%w: %q", domain.ErrUnknownScreen, target)
	}
	if err := n.prepare(ctx); err != nil {
		return err
	}
	if n.pos.Node == target {
		return nil
	}

	from := n.pos.Node
	path, err := n.graph.FindPath(from, target, n.state)
	if err == nil {
		return n.walk(ctx, path, n.env(nil), "")
	}
	if !errors.Is(err, domain.ErrPathNotFound) {
		return err
	}

	n.logger.DebugContext(ctx, "no path, attempting recovery", "from", from, "to", target)
	resynced, recErr := n.recover(ctx, domain.TriggerPathNotFound, "")
	if recErr == nil {
		if resynced == target {
			return nil
		}
		path, err = n.graph.FindPath(resynced, target, n.state)
		if err == nil {
			return n.walk(ctx, path, n.env(nil), "")
		}
	}
	return &domain.PathNotFoundError{
		From: from,
		To:   target,
		Failure: domain.Failure{
			LastKnown: n.lastKnown,
			Recovery:  recErr,
		},
	}
}

// PerformAction performs a named action, navigating first when it is only
// available elsewhere. params are visible to the action's effect and mutators.
// An action-only edge leaves the navigator where it is; an edge with a
// destination moves there.
func (n *Navigator) PerformAction(ctx context.Context, action string, params map[string]any) error {
	if !n.graph.HasAction(action) {
		return &domain.ActionNotAvailableError{Action: action, From: n.pos.Node}
	}
	if err := n.prepare(ctx); err != nil {
		return err
	}

	from := n.pos.Node
	prefix, edge, err := n.graph.ResolveAction(from, action, n.state)
	if errors.Is(err, domain.ErrActionNotAvailable) {
		n.logger.DebugContext(ctx, "action not available, attempting recovery", "action", action, "from", from)
		resynced, recErr := n.recover(ctx, domain.TriggerActionNotAvailable, "")
		if recErr == nil {
			prefix, edge, err = n.graph.ResolveAction(resynced, action, n.state)
			if err != nil && !errors.Is(err, domain.ErrActionNotAvailable) {
				return err
			}
		}
		if err != nil || recErr != nil {
			return &domain.ActionNotAvailableError{
				Action: action,
				From:   from,
				Failure: domain.Failure{
					LastKnown: n.lastKnown,
					Recovery:  recErr,
				},
			}
		}
	} else if err != nil {
		return err
	}

	env := n.env(params)
	if err := n.walk(ctx, prefix, env, ""); err != nil {
		return err
	}
	path := append(slices.Clone(prefix), edge)
	if err := n.step(ctx, edge, env, action); err != nil {
		return n.fail(ctx, err, path, edge.To)
	}

	// A pass-through action node continues to its destination, whether it was
	// entered by an edge or is registered under the name of an action-only edge.
	// Build guarantees that destination is a screen.
	next := n.pos.Node
	if !edge.Navigates() {
		next = action
	}
	if an, ok := n.graph.Node(next); ok && an.IsAction {
		follow := an.Edges[0]
		path = append(path, follow)
		if err := n.step(ctx, follow, env, action); err != nil {
			return n.fail(ctx, err, path, follow.To)
		}
	}
	return nil
}

// NowAt sets the current node without any verification. The caller vouches
// that the app really shows it.
func (n *Navigator) NowAt(name string) error {
	node, ok := n.graph.Node(name)
	if !ok || node.IsAction {
		return fmt.Errorf("%w: %q", domain.ErrUnknownScreen, name)
	}
	n.arrive(name)
	return nil
}

// Resync scans the on-enter conditions of the graph's screens to find the one
// actually displayed and moves there.
func (n *Navigator) Resync(ctx context.Context) (string, error) {
	return n.resync(ctx)
}

// Snapshot captures the session for persistence.
func (n *Navigator) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		SessionID: n.sessionID,
		Current:   n.pos.Node,
		Status:    n.pos.Status,
		Consumed:  n.consumed,
		Opener:    n.opener,
		Values:    n.state.Snapshot(),
		History:   slices.Clone(n.history),
		UpdatedAt: time.Now(),
	}
}

// Restore resumes a session from a snapshot. A session persisted mid-transition
// resumes as Unknown and re-synchronises on its next operation.
func (n *Navigator) Restore(s domain.Snapshot) error {
	if s.Current != "" {
		if _, ok := n.graph.Node(s.Current); !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnknownScreen, s.Current)
		}
	}
	if err := n.state.Restore(s.Values); err != nil {
		return fmt.Errorf("restore user state: %w", err)
	}
	n.lastKnown = s.Current
	n.consumed = s.Consumed
	n.opener = s.Opener
	n.history = slices.Clone(s.History)
	switch s.Status {
	case domain.StatusAt:
		n.pos = domain.Position{Status: domain.StatusAt, Node: s.Current}
	case domain.StatusFailed:
		n.pos = domain.Position{Status: domain.StatusFailed, Node: s.Current}
	default:
		n.pos = domain.Position{Status: domain.StatusUnknown, Node: s.Current}
	}
	return nil
}

// prepare makes sure the position is trustworthy before an operation: an
// unknown or failed position is re-synchronised, and a consumed dismiss-on-use
// node is re-verified.
func (n *Navigator) prepare(ctx context.Context) error {
	switch {
	case n.pos.Status != domain.StatusAt:
		_, err := n.resync(ctx)
		return err
	case n.consumed:
		node, _ := n.graph.Node(n.pos.Node)
		if node.Recognizable() {
			ok, err := node.OnEnter.Condition.Check(ctx, n.env(nil))
			if err == nil && ok {
				n.consumed = false
				return nil
			}
		}
		n.logger.DebugContext(ctx, "dismissed screen, re-synchronising", "node", node.Name)
		_, err := n.resync(ctx)
		return err
	}
	return nil
}

// walk executes a path. The first failure triggers one recovery attempt and
// is returned with the path and last known node attached.
func (n *Navigator) walk(ctx context.Context, path []*domain.Edge, env *domain.Env, action string) error {
	for _, e := range path {
		if err := n.step(ctx, e, env, action); err != nil {
			return n.fail(ctx, err, path, e.To)
		}
	}
	return nil
}

// step executes one edge: effect once, verification of the destination, edge
// mutators then on-enter mutators.
func (n *Navigator) step(ctx context.Context, e *domain.Edge, env *domain.Env, action string) error {
	from := n.pos.Node
	n.pos = domain.Position{Status: domain.StatusTransitioning, Node: from, Edge: e}
	start := time.Now()

	err := n.execute(ctx, e, env)
	n.emitTransition(ctx, from, e, action, time.Since(start), err)
	if err != nil {
		n.logger.DebugContext(ctx, "transition failed", "edge", e.String(), "error", err)
		return err
	}
	n.logger.DebugContext(ctx, "transition", "from", from, "to", e.To, "kind", e.Kind, "action", action, "duration", time.Since(start))
	return nil
}

func (n *Navigator) execute(ctx context.Context, e *domain.Edge, env *domain.Env) error {
	from := n.pos.Node
	if err := e.Effect.Execute(ctx, env); err != nil {
		return &domain.TransitionError{Edge: e.String(), Err: err}
	}

	if !e.Navigates() {
		if err := domain.ApplyAll(ctx, env, e.Mutators); err != nil {
			return &domain.TransitionError{Edge: e.String(), Err: err}
		}
		n.pos = domain.Position{Status: domain.StatusAt, Node: from}
		if node, ok := n.graph.Node(from); ok && node.DismissOnUse {
			n.consumed = true
		}
		return nil
	}

	target, _ := n.graph.Node(e.To)
	if err := n.verify(ctx, target, env); err != nil {
		return err
	}
	mutators := e.Mutators
	if target.OnEnter != nil {
		mutators = append(slices.Clone(mutators), target.OnEnter.Mutators...)
	}
	if err := domain.ApplyAll(ctx, env, mutators); err != nil {
		return &domain.TransitionError{Edge: e.String(), Err: err}
	}

	if fromNode, ok := n.graph.Node(from); ok && target.DismissOnUse && !fromNode.DismissOnUse && !fromNode.IsAction {
		n.opener = from
	}
	moved := from != e.To
	if moved && n.isScreen(from) {
		n.emitNodeLeave(ctx, from)
	}
	n.arrive(e.To)
	if moved && !target.IsAction {
		n.emitNodeEnter(ctx, e.To)
	}
	return nil
}

func (n *Navigator) isScreen(name string) bool {
	node, ok := n.graph.Node(name)
	return ok && !node.IsAction
}

// arrive moves the cursor to a node. Action nodes are transient and are not
// recorded as known positions.
func (n *Navigator) arrive(name string) {
	n.pos = domain.Position{Status: domain.StatusAt, Node: name}
	n.consumed = false
	if node, ok := n.graph.Node(name); ok && node.IsAction {
		return
	}
	n.lastKnown = name
	if len(n.history) == 0 || n.history[len(n.history)-1] != name {
		n.history = append(n.history, name)
	}
}

// fail records a failure, runs the recovery attempt and attaches diagnostics.
// The original error is always the one returned.
func (n *Navigator) fail(ctx context.Context, err error, path []*domain.Edge, target string) error {
	lastKnown := n.lastKnown
	n.pos = domain.Position{Status: domain.StatusFailed, Node: lastKnown, Err: err}

	trigger := domain.TriggerTransition
	if errors.Is(err, domain.ErrVerificationTimeout) {
		trigger = domain.TriggerVerification
	}
	_, recErr := n.recover(ctx, trigger, target)

	var fc domain.FailureContext
	if errors.As(err, &fc) {
		f := fc.Context()
		f.Path = domain.EdgeNames(path)
		f.LastKnown = lastKnown
		f.Recovery = recErr
	}
	return err
}

func (n *Navigator) env(params map[string]any) *domain.Env {
	return &domain.Env{Driver: n.driver, State: n.state, Params: params}
}
