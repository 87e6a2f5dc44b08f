// Package dryrun exercises a screen graph against a fake application derived
// from the graph itself, so a graph can be checked without a device.
package dryrun

import (
	"context"
	"fmt"

	"github.com/aretw0/screengraph"
	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/automation/mock"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
)

// Plan is what a dry run should do once the state is seeded.
type Plan struct {
	// Set seeds user state fields before navigating.
	Set map[string]any
	// To is the screen to go to. Empty skips navigation.
	To string
	// Action is performed after navigation. Empty skips it.
	Action string
	Params map[string]any
}

// Report is the outcome of a dry run.
type Report struct {
	Position  domain.Position
	History   []string
	Performed []string
	State     map[string]any
}

// Run derives a fake app from g and executes the plan on a fresh navigator.
// The report is returned even when the plan fails.
func Run(ctx context.Context, g *graph.Graph, plan Plan, opts ...screengraph.Option) (*Report, error) {
	app := Derive(g)

	// The fake app reacts synchronously, so one check per verification suffices.
	base := []screengraph.Option{screengraph.WithDriver(app), screengraph.WithVerifyTimeout(0)}
	nav, err := screengraph.New(g, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	for field, v := range plan.Set {
		if err := nav.UserState().Set(field, v); err != nil {
			return nil, fmt.Errorf("seed %q: %w", field, err)
		}
	}

	if plan.To != "" {
		err = nav.Goto(ctx, plan.To)
	}
	if err == nil && plan.Action != "" {
		err = nav.PerformAction(ctx, plan.Action, plan.Params)
	}

	return &Report{
		Position:  nav.Position(),
		History:   nav.History(),
		Performed: app.Performed(),
		State:     nav.UserState().Snapshot(),
	}, err
}

// Derive builds a fake app in which every screen shows the elements its
// on-enter condition looks for, and every edge gesture leads to the edge's
// destination. Back actions return to the first screen leading to the node.
// A screen reached by a noop edge is shown together with its source. Elements
// read by on-enter mutators report the field default.
func Derive(g *graph.Graph) *mock.App {
	d := &deriver{
		app:     mock.New(g.InitialScreen()),
		g:       g,
		aliases: make(map[string][]string),
		seen:    make(map[key]bool),
	}

	screens := make([]*domain.Node, 0)
	for _, node := range g.Nodes() {
		if node.IsAction {
			continue
		}
		screens = append(screens, node)
		for _, e := range node.Edges {
			if e.Kind == domain.EdgeNoop && e.To != "" && e.To != node.Name {
				d.aliases[e.To] = append(d.aliases[e.To], node.Name)
			}
		}
	}

	defaults := g.NewUserState()
	for _, node := range screens {
		var elements []automation.Locator
		if node.OnEnter != nil {
			elements = shown(node.OnEnter.Condition)
			for _, m := range node.OnEnter.Mutators {
				if r, ok := m.(domain.ReadValue); ok {
					def, _ := defaults.Default(r.Field)
					d.app.SetValue(r.Locator, fmt.Sprint(def))
				}
			}
		}
		for _, name := range d.showing(node.Name) {
			d.app.AddScreen(name, elements...)
		}
	}

	for _, node := range screens {
		for _, e := range node.Edges {
			d.edge(node.Name, e.Effect, e.To)
		}
	}

	// Back actions last, so they never shadow a declared edge.
	for _, node := range screens {
		if node.Back == nil {
			continue
		}
		d.edge(node.Name, node.Back, d.opener(node.Name))
	}
	return d.app
}

type key struct {
	screen string
	loc    automation.Locator
	kind   automation.GestureKind
}

type deriver struct {
	app     *mock.App
	g       *graph.Graph
	aliases map[string][]string
	seen    map[key]bool
}

// showing lists the fake screens on which the node is displayed, following
// chains of noop edges.
func (d *deriver) showing(name string) []string {
	out := []string{name}
	seen := map[string]bool{name: true}
	for i := 0; i < len(out); i++ {
		for _, src := range d.aliases[out[i]] {
			if !seen[src] {
				seen[src] = true
				out = append(out, src)
			}
		}
	}
	return out
}

func (d *deriver) edge(from string, effect domain.Effect, to string) {
	steps := flatten(effect)
	for i, s := range steps {
		dest := ""
		if i == len(steps)-1 {
			dest = to
		}
		for _, screen := range d.showing(from) {
			k := key{screen, s.loc, s.kind}
			if d.seen[k] {
				continue
			}
			d.seen[k] = true
			d.app.On(screen, s.loc, s.kind, dest)
		}
	}
}

// opener is the first screen with a navigating edge to name, else the
// initial screen.
func (d *deriver) opener(name string) string {
	for _, node := range d.g.Nodes() {
		if node.IsAction || node.Name == name {
			continue
		}
		for _, e := range node.Edges {
			if e.To == name {
				return node.Name
			}
		}
	}
	return d.g.InitialScreen()
}

type step struct {
	loc  automation.Locator
	kind automation.GestureKind
}

func flatten(effect domain.Effect) []step {
	switch e := effect.(type) {
	case domain.Tap:
		return []step{{e.Locator, automation.GestureTap}}
	case domain.Press:
		return []step{{e.Locator, automation.GestureLongPress}}
	case domain.Swipe:
		return []step{{e.Locator, e.Direction}}
	case domain.TypeText:
		return []step{{e.Locator, automation.GestureTypeText}}
	case domain.IfExists:
		return flatten(e.Then)
	case domain.Sequence:
		var out []step
		for _, inner := range e {
			out = append(out, flatten(inner)...)
		}
		return out
	default:
		// Noop and custom effects have no gesture to fake.
		return nil
	}
}

// shown collects the elements a condition expects on screen.
func shown(c domain.Condition) []automation.Locator {
	switch c := c.(type) {
	case domain.Exists:
		return []automation.Locator{c.Locator}
	case domain.AllOf:
		var out []automation.Locator
		for _, inner := range c {
			out = append(out, shown(inner)...)
		}
		return out
	default:
		return nil
	}
}
