package domain

import "sort"

// EnterCheck verifies a node on arrival and updates the UserState once it holds.
type EnterCheck struct {
	Condition Condition
	Mutators  []Mutator
}

// Node is a verifiable screen-state.
type Node struct {
	Name  string
	Edges []*Edge
	// OnEnter is polled on arrival. Nodes without a condition cannot be
	// recognised by re-synchronisation.
	OnEnter *EnterCheck
	// Back is the best-effort effect used to leave this screen during recovery.
	Back Effect
	// DismissOnUse marks a transient screen (menu, sheet) that closes once an
	// action on it is used.
	DismissOnUse bool
	// IsAction marks a pseudo-node registered as a named graph action.
	IsAction bool
}

// Recognizable reports whether the node has an on-screen condition.
func (n *Node) Recognizable() bool {
	return n.OnEnter != nil && n.OnEnter.Condition != nil
}

// Actions lists the action names exposed directly by this node's edges, sorted.
func (n *Node) Actions() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range n.Edges {
		for _, a := range e.Actions {
			if !seen[a] {
				seen[a] = true
				out = append(out, a)
			}
		}
	}
	sort.Strings(out)
	return out
}
