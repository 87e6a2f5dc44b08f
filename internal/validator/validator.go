// Package validator lints a built screen graph for problems the builder
// accepts but a test author most likely did not intend.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
)

// Kind classifies an issue.
type Kind string

const (
	// Unreachable screens cannot be reached from the initial screen, whatever
	// the user state.
	Unreachable Kind = "unreachable"
	// UnusedAction nodes have no edge leading to them.
	UnusedAction Kind = "unused_action"
	// DeadEnd screens have neither outgoing edges nor a back action.
	DeadEnd Kind = "dead_end"
	// Unverifiable screens are entered by a gesture but have no on-enter
	// condition, so arrival is trusted and recovery cannot recognise them.
	Unverifiable Kind = "unverifiable"
)

// Issue is one finding about a node.
type Issue struct {
	Kind Kind
	Node string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Node)
}

// Report lists the issues found, in graph declaration order per kind.
type Report struct {
	Issues []Issue
}

// OK reports whether no issue was found.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// Err returns the issues as one error, or nil.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	lines := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d issues:\n- %s", len(r.Issues), strings.Join(lines, "\n- "))
}

// ValidateGraph crawls g from its initial screen, ignoring guards, and
// reports unreachable screens, unused actions, dead ends and screens entered
// by a gesture that cannot be verified.
func ValidateGraph(g *graph.Graph) Report {
	visited := map[string]bool{}
	queue := []string{g.InitialScreen()}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		node, ok := g.Node(current)
		if !ok {
			continue
		}
		for _, e := range node.Edges {
			if e.To != "" && !visited[e.To] {
				queue = append(queue, e.To)
			}
		}
	}

	entered := map[string]bool{}
	for _, node := range g.Nodes() {
		for _, e := range node.Edges {
			if e.To != "" && e.Kind != domain.EdgeNoop {
				entered[e.To] = true
			}
		}
	}

	var r Report
	add := func(kind Kind, pred func(*domain.Node) bool) {
		for _, node := range g.Nodes() {
			if pred(node) {
				r.Issues = append(r.Issues, Issue{Kind: kind, Node: node.Name})
			}
		}
	}
	add(Unreachable, func(n *domain.Node) bool {
		return !n.IsAction && !visited[n.Name]
	})
	add(UnusedAction, func(n *domain.Node) bool {
		return n.IsAction && !visited[n.Name]
	})
	add(DeadEnd, func(n *domain.Node) bool {
		return !n.IsAction && len(n.Edges) == 0 && n.Back == nil
	})
	add(Unverifiable, func(n *domain.Node) bool {
		return !n.IsAction && entered[n.Name] && !n.Recognizable()
	})
	return r
}
