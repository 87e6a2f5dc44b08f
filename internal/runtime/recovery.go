package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/screengraph/pkg/domain"
)

// verify polls the node's on-enter condition until it holds or the verify
// timeout expires. Nodes without a condition are trusted.
func (n *Navigator) verify(ctx context.Context, node *domain.Node, env *domain.Env) error {
	if !node.Recognizable() {
		return nil
	}
	deadline := time.Now().Add(n.verifyTimeout)
	var lastErr error
	for {
		ok, err := node.OnEnter.Condition.Check(ctx, env)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}
		if ctx.Err() != nil {
			return &domain.TransitionError{Edge: "verify " + node.Name, Err: ctx.Err()}
		}
		if !time.Now().Before(deadline) {
			return &domain.VerificationTimeoutError{Node: node.Name, Timeout: n.verifyTimeout, Cause: lastErr}
		}
		if err := sleep(ctx, n.pollInterval); err != nil {
			return &domain.TransitionError{Edge: "verify " + node.Name, Err: err}
		}
	}
}

// recover runs the single recovery attempt: the back action of the failed
// target, else of the last known node, then a re-synchronisation scan.
// It returns the node found and the combined recovery error.
func (n *Navigator) recover(ctx context.Context, trigger, failedTarget string) (string, error) {
	var backFrom string
	var backErr error
	for _, name := range []string{failedTarget, n.lastKnown} {
		if node, ok := n.graph.Node(name); ok && node.Back != nil {
			backFrom = name
			backErr = node.Back.Execute(ctx, n.env(nil))
			break
		}
	}
	if backErr != nil {
		backErr = fmt.Errorf("back action of %q: %w", backFrom, backErr)
	}

	resynced, syncErr := n.resync(ctx)
	err := errors.Join(backErr, syncErr)

	n.emitRecovery(ctx, trigger, backFrom, resynced, err)
	if err != nil {
		n.logger.WarnContext(ctx, "recovery failed", "trigger", trigger, "back_from", backFrom, "error", err)
	} else {
		n.logger.WarnContext(ctx, "recovered", "trigger", trigger, "back_from", backFrom, "node", resynced)
	}

	if syncErr != nil {
		return "", err
	}
	// A failed back action is not fatal when the scan still recognised a screen.
	return resynced, nil
}

// resync scans on-enter conditions until one holds or the verify timeout
// expires. Candidates are checked in order: the opener of a consumed node,
// the last known node, the opener otherwise, then every screen in declaration
// order. Nodes without a condition cannot be recognised. User state is left
// untouched.
func (n *Navigator) resync(ctx context.Context) (string, error) {
	candidates := n.candidates()
	env := n.env(nil)
	deadline := time.Now().Add(n.verifyTimeout)

	for {
		for _, node := range candidates {
			ok, err := node.OnEnter.Condition.Check(ctx, env)
			if err != nil && ctx.Err() != nil {
				return "", ctx.Err()
			}
			if err == nil && ok {
				n.logger.DebugContext(ctx, "re-synchronised", "node", node.Name)
				n.arrive(node.Name)
				return node.Name, nil
			}
		}
		if len(candidates) == 0 || !time.Now().Before(deadline) {
			break
		}
		if err := sleep(ctx, n.pollInterval); err != nil {
			return "", err
		}
	}

	n.pos = domain.Position{Status: domain.StatusUnknown, Node: n.lastKnown}
	return "", fmt.Errorf("%w after %s (last known %q)", domain.ErrDesynchronized, n.verifyTimeout, n.lastKnown)
}

func (n *Navigator) candidates() []*domain.Node {
	var order []string
	if n.consumed {
		order = append(order, n.opener, n.lastKnown)
	} else {
		order = append(order, n.lastKnown, n.opener)
	}

	seen := make(map[string]bool)
	var out []*domain.Node
	add := func(node *domain.Node) {
		if node == nil || seen[node.Name] || node.IsAction || !node.Recognizable() {
			return
		}
		seen[node.Name] = true
		out = append(out, node)
	}
	for _, name := range order {
		node, _ := n.graph.Node(name)
		add(node)
	}
	for _, node := range n.graph.Nodes() {
		add(node)
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
