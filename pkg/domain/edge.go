package domain

import (
	"fmt"
	"slices"

	"github.com/aretw0/screengraph/pkg/guard"
)

// EdgeKind classifies the real-world interaction behind an edge.
type EdgeKind string

const (
	EdgeTap     EdgeKind = "tap"
	EdgePress   EdgeKind = "press"
	EdgeSwipe   EdgeKind = "swipe"
	EdgeType    EdgeKind = "type"
	EdgeGesture EdgeKind = "gesture"
	EdgeNoop    EdgeKind = "noop"
)

// Edge is a transition out of the node named From.
type Edge struct {
	From string
	// To is the destination. Empty means an action-only edge that keeps the
	// navigator where it is.
	To   string
	Kind EdgeKind
	// Actions names the actions this edge performs. Empty means pure navigation.
	Actions []string
	// Guard gates the edge on the live UserState. Nil is unconditional.
	Guard    guard.Expr
	Effect   Effect
	Mutators []Mutator
}

// Navigates reports whether the edge leads to another node.
func (e *Edge) Navigates() bool {
	return e.To != ""
}

// HasAction reports whether the edge performs the named action.
func (e *Edge) HasAction(name string) bool {
	return slices.Contains(e.Actions, name)
}

// Allowed evaluates the guard against fields.
func (e *Edge) Allowed(fields guard.Fields) (bool, error) {
	return guard.Eval(e.Guard, fields)
}

func (e *Edge) String() string {
	to := e.To
	if to == "" {
		to = e.From
	}
	s := fmt.Sprintf("%s -[%s]-> %s", e.From, e.Kind, to)
	if len(e.Actions) > 0 {
		s += fmt.Sprintf(" %v", e.Actions)
	}
	return s
}

// EdgeNames renders a path for error messages and logs.
func EdgeNames(path []*Edge) []string {
	out := make([]string, len(path))
	for i, e := range path {
		out[i] = e.String()
	}
	return out
}
