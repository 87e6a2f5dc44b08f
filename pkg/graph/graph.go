package graph

import (
	"fmt"
	"sort"

	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/guard"
)

// Graph is a validated, read-only screen graph.
type Graph struct {
	driver automation.Driver
	proto  *domain.UserState
	nodes  map[string]*domain.Node
	order  []string
}

// Driver returns the driver the graph was built with.
func (g *Graph) Driver() automation.Driver { return g.driver }

// InitialScreen is where new navigators start.
func (g *Graph) InitialScreen() string { return g.proto.InitialScreen() }

// NewUserState returns a fresh copy of the declared user state.
func (g *Graph) NewUserState() *domain.UserState { return g.proto.Clone() }

// StateWith returns a fresh user state with the textual overrides applied,
// e.g. from a query string or command line flags.
func (g *Graph) StateWith(overrides map[string]string) (*domain.UserState, error) {
	state := g.NewUserState()
	for name, raw := range overrides {
		if err := state.SetString(name, raw); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// Node looks a node up by name.
func (g *Graph) Node(name string) (*domain.Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns every node in declaration order.
func (g *Graph) Nodes() []*domain.Node {
	out := make([]*domain.Node, len(g.order))
	for i, name := range g.order {
		out[i] = g.nodes[name]
	}
	return out
}

// Screens returns the names of screen-states (not action nodes) in declaration order.
func (g *Graph) Screens() []string {
	var out []string
	for _, name := range g.order {
		if !g.nodes[name].IsAction {
			out = append(out, name)
		}
	}
	return out
}

// Actions returns every action name the graph knows, sorted.
func (g *Graph) Actions() []string {
	set := make(map[string]bool)
	for _, n := range g.nodes {
		if n.IsAction {
			set[n.Name] = true
		}
		for _, a := range n.Actions() {
			set[a] = true
		}
	}
	return sortedKeys(set)
}

// HasAction reports whether any edge or action node carries the name.
func (g *Graph) HasAction(name string) bool {
	for _, a := range g.Actions() {
		if a == name {
			return true
		}
	}
	return false
}

func (g *Graph) screen(name string) error {
	if _, ok := g.nodes[name]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownScreen, name)
	}
	return nil
}

// FindPath returns the shortest sequence of guard-satisfied navigation edges
// from one node to another. Edges performing actions are never part of a
// path. Edges are explored in declaration order, so the first shortest path
// wins. from == to yields an empty path. When no path exists the error is a
// *domain.PathNotFoundError.
func (g *Graph) FindPath(from, to string, fields guard.Fields) ([]*domain.Edge, error) {
	if err := g.screen(from); err != nil {
		return nil, err
	}
	if err := g.screen(to); err != nil {
		return nil, err
	}
	if from == to {
		return []*domain.Edge{}, nil
	}

	path, _, err := g.search(from, fields, anyEdge, func(n *domain.Node) (*domain.Edge, bool, error) {
		return nil, n.Name == to, nil
	})
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, &domain.PathNotFoundError{From: from, To: to}
	}
	return path, nil
}

// ResolveAction finds the edge performing action. It first tunnels from from
// through noop edges whose guards hold, and otherwise falls back to the
// shortest guard-satisfied path to any node exposing the action. It returns
// the path to walk before the action edge, and the action edge itself. An
// edge leading into the action node registered under the same name also
// performs the action.
func (g *Graph) ResolveAction(from, action string, fields guard.Fields) ([]*domain.Edge, *domain.Edge, error) {
	if err := g.screen(from); err != nil {
		return nil, nil, err
	}

	goal := func(n *domain.Node) (*domain.Edge, bool, error) {
		for _, e := range n.Edges {
			if !g.performs(e, action) {
				continue
			}
			ok, err := allowed(e, fields)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return e, true, nil
			}
		}
		return nil, false, nil
	}

	for _, follow := range []func(*domain.Edge) bool{noopEdge, anyEdge} {
		prefix, edge, err := g.search(from, fields, follow, goal)
		if err != nil {
			return nil, nil, err
		}
		if edge != nil {
			return prefix, edge, nil
		}
	}
	return nil, nil, &domain.ActionNotAvailableError{Action: action, From: from}
}

func (g *Graph) performs(e *domain.Edge, action string) bool {
	if e.HasAction(action) {
		return true
	}
	if e.To == action {
		n, ok := g.nodes[action]
		return ok && n.IsAction
	}
	return false
}

// ReachableActions lists, sorted, the actions that can currently be performed
// from the node, directly or after navigating.
func (g *Graph) ReachableActions(from string, fields guard.Fields) ([]string, error) {
	if err := g.screen(from); err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	_, _, err := g.search(from, fields, anyEdge, func(n *domain.Node) (*domain.Edge, bool, error) {
		for _, e := range n.Edges {
			target := g.nodes[e.To]
			intoAction := target != nil && target.IsAction
			if len(e.Actions) == 0 && !intoAction {
				continue
			}
			ok, err := allowed(e, fields)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				continue
			}
			for _, a := range e.Actions {
				set[a] = true
			}
			if intoAction {
				set[target.Name] = true
			}
		}
		return nil, false, nil
	})
	if err != nil {
		return nil, err
	}
	return sortedKeys(set), nil
}

// search runs a breadth-first search from start over navigating edges accepted
// by follow whose guards hold. goal is called on every visited node in BFS
// order; the first node it accepts ends the search and the path to that node
// is returned with the edge goal picked. A nil path means nothing matched.
func (g *Graph) search(
	start string,
	fields guard.Fields,
	follow func(*domain.Edge) bool,
	goal func(*domain.Node) (*domain.Edge, bool, error),
) ([]*domain.Edge, *domain.Edge, error) {
	parent := map[string]*domain.Edge{start: nil}
	queue := []string{start}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		node := g.nodes[name]

		edge, done, err := goal(node)
		if err != nil {
			return nil, nil, err
		}
		if done {
			return pathTo(parent, name), edge, nil
		}

		for _, e := range node.Edges {
			if !g.navigation(e) || !follow(e) {
				continue
			}
			if _, seen := parent[e.To]; seen {
				continue
			}
			ok, err := allowed(e, fields)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
			parent[e.To] = e
			queue = append(queue, e.To)
		}
	}
	return nil, nil, nil
}

func pathTo(parent map[string]*domain.Edge, name string) []*domain.Edge {
	path := []*domain.Edge{}
	for e := parent[name]; e != nil; e = parent[e.From] {
		path = append(path, e)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// navigation reports whether a search may follow the edge. Edges that perform
// actions, or lead into action nodes, mutate user state and are only taken on
// purpose by PerformAction.
func (g *Graph) navigation(e *domain.Edge) bool {
	if !e.Navigates() || len(e.Actions) > 0 {
		return false
	}
	target, ok := g.nodes[e.To]
	return ok && !target.IsAction
}

func allowed(e *domain.Edge, fields guard.Fields) (bool, error) {
	ok, err := e.Allowed(fields)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", domain.ErrInvalidGuard, e, err)
	}
	return ok, nil
}

func anyEdge(*domain.Edge) bool { return true }

func noopEdge(e *domain.Edge) bool { return e.Kind == domain.EdgeNoop }

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
