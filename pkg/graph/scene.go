package graph

import (
	"fmt"

	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/guard"
)

// Scene configures one node inside an AddScreenState callback.
type Scene struct {
	b    *Builder
	node *domain.Node
}

// Name returns the node being configured.
func (s *Scene) Name() string { return s.node.Name }

// Driver returns the graph's driver, for EffectFunc closures that need it.
func (s *Scene) Driver() automation.Driver { return s.b.driver }

// Tap adds an edge tapping loc to reach to.
func (s *Scene) Tap(loc automation.Locator, to string) *EdgeBuilder {
	return s.edge(domain.EdgeTap, to, domain.Tap{Locator: loc}, nil)
}

// Press adds an edge long-pressing loc to reach to.
func (s *Scene) Press(loc automation.Locator, to string) *EdgeBuilder {
	return s.edge(domain.EdgePress, to, domain.Press{Locator: loc}, nil)
}

// Swipe adds an edge swiping loc in direction dir to reach to.
func (s *Scene) Swipe(loc automation.Locator, dir automation.GestureKind, to string) *EdgeBuilder {
	return s.edge(domain.EdgeSwipe, to, domain.Swipe{Locator: loc, Direction: dir}, nil)
}

// Type adds an edge typing text into loc to reach to.
func (s *Scene) Type(loc automation.Locator, text string, to string) *EdgeBuilder {
	return s.edge(domain.EdgeType, to, domain.TypeText{Locator: loc, Text: text}, nil)
}

// Gesture adds an edge running an arbitrary effect to reach to.
func (s *Scene) Gesture(to string, effect domain.Effect) *EdgeBuilder {
	return s.edge(domain.EdgeGesture, to, effect, nil)
}

// Noop adds an edge that needs no input, e.g. a launch screen that always
// continues to the browser.
func (s *Scene) Noop(to string) *EdgeBuilder {
	return s.edge(domain.EdgeNoop, to, domain.Noop{}, nil)
}

// TapAction adds an action-only edge tapping loc. All names are aliases of one action.
func (s *Scene) TapAction(loc automation.Locator, actions ...string) *EdgeBuilder {
	return s.edge(domain.EdgeTap, "", domain.Tap{Locator: loc}, actions)
}

// PressAction adds an action-only edge long-pressing loc.
func (s *Scene) PressAction(loc automation.Locator, actions ...string) *EdgeBuilder {
	return s.edge(domain.EdgePress, "", domain.Press{Locator: loc}, actions)
}

// TypeAction adds an action-only edge typing the action argument param into loc.
func (s *Scene) TypeAction(loc automation.Locator, param string, actions ...string) *EdgeBuilder {
	return s.edge(domain.EdgeType, "", domain.TypeText{Locator: loc, Param: param}, actions)
}

// GestureAction adds an action-only edge running an arbitrary effect.
func (s *Scene) GestureAction(effect domain.Effect, actions ...string) *EdgeBuilder {
	return s.edge(domain.EdgeGesture, "", effect, actions)
}

// OnEnter sets the condition verified on arrival and the mutators applied once it holds.
func (s *Scene) OnEnter(cond domain.Condition, mutators ...domain.Mutator) {
	s.node.OnEnter = &domain.EnterCheck{Condition: cond, Mutators: mutators}
}

// Back sets the recovery effect used to leave this screen.
func (s *Scene) Back(effect domain.Effect) {
	s.node.Back = effect
}

// DismissOnUse marks the node as transient: it closes once an action on it is used.
func (s *Scene) DismissOnUse() {
	s.node.DismissOnUse = true
}

func (s *Scene) edge(kind domain.EdgeKind, to string, effect domain.Effect, actions []string) *EdgeBuilder {
	if effect == nil {
		effect = domain.Noop{}
	}
	e := &domain.Edge{
		From:    s.node.Name,
		To:      to,
		Kind:    kind,
		Actions: append([]string(nil), actions...),
		Effect:  effect,
	}
	s.node.Edges = append(s.node.Edges, e)
	return &EdgeBuilder{b: s.b, edge: e}
}

// EdgeBuilder refines the edge just added.
type EdgeBuilder struct {
	b    *Builder
	edge *domain.Edge
}

// If gates the edge on a guard. Multiple calls are combined with And.
func (e *EdgeBuilder) If(g guard.Expr) *EdgeBuilder {
	e.edge.Guard = guard.And(e.edge.Guard, g)
	return e
}

// IfExpr is like If with a guard in string form, e.g. `isPrivate == false`.
// Parse errors are reported by Build.
func (e *EdgeBuilder) IfExpr(src string) *EdgeBuilder {
	g, err := guard.Parse(src)
	if err != nil {
		e.b.errs = append(e.b.errs, fmt.Errorf("%w: %s: %v", domain.ErrInvalidGuard, e.edge, err))
		return e
	}
	return e.If(g)
}

// Mutate appends mutators applied after the edge is verified.
func (e *EdgeBuilder) Mutate(mutators ...domain.Mutator) *EdgeBuilder {
	e.edge.Mutators = append(e.edge.Mutators, mutators...)
	return e
}

// TransitionTo makes an action edge also navigate to name.
func (e *EdgeBuilder) TransitionTo(name string) *EdgeBuilder {
	e.edge.To = name
	return e
}

// Named adds action names to the edge.
func (e *EdgeBuilder) Named(actions ...string) *EdgeBuilder {
	e.edge.Actions = append(e.edge.Actions, actions...)
	return e
}

// Edge returns the edge under construction.
func (e *EdgeBuilder) Edge() *domain.Edge { return e.edge }
