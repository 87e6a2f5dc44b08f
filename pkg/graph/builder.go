package graph

import (
	"errors"
	"fmt"

	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/guard"
	"github.com/aretw0/screengraph/pkg/schema"
)

// ErrBuilt is returned by a Builder whose graph has already been built.
var ErrBuilt = errors.New("graph already built")

// Builder accumulates nodes. Errors are returned eagerly where possible and
// always retained, so Build never yields a partial graph.
type Builder struct {
	driver automation.Driver
	proto  *domain.UserState
	nodes  map[string]*domain.Node
	order  []string
	errs   []error
	built  bool
}

// NewBuilder starts a graph. The driver is handed to scenes and navigators;
// proto declares the user state fields and the initial screen.
func NewBuilder(driver automation.Driver, proto *domain.UserState) *Builder {
	if proto == nil {
		proto = domain.NewUserState("")
	}
	return &Builder{
		driver: driver,
		proto:  proto,
		nodes:  make(map[string]*domain.Node),
	}
}

// AddScreenState registers a screen-state and lets configure declare its edges.
func (b *Builder) AddScreenState(name string, configure func(*Scene)) error {
	node, err := b.add(name)
	if err != nil {
		return err
	}
	if configure != nil {
		configure(&Scene{b: b, node: node})
	}
	return nil
}

// CreateScene is an alias of AddScreenState.
func (b *Builder) CreateScene(name string, configure func(*Scene)) error {
	return b.AddScreenState(name, configure)
}

// AddScreenAction registers a named action as a pass-through node. Performing
// the action, or following an edge into it, applies mutators and lands on
// transitionTo.
func (b *Builder) AddScreenAction(name, transitionTo string, mutators ...domain.Mutator) error {
	node, err := b.add(name)
	if err != nil {
		return err
	}
	node.IsAction = true
	node.Edges = []*domain.Edge{{
		From:     name,
		To:       transitionTo,
		Kind:     domain.EdgeNoop,
		Effect:   domain.Noop{},
		Mutators: mutators,
	}}
	return nil
}

func (b *Builder) add(name string) (*domain.Node, error) {
	if b.built {
		return nil, ErrBuilt
	}
	if name == "" {
		err := fmt.Errorf("node name must not be empty")
		b.errs = append(b.errs, err)
		return nil, err
	}
	if _, exists := b.nodes[name]; exists {
		err := fmt.Errorf("%w: %q", domain.ErrDuplicateNodeName, name)
		b.errs = append(b.errs, err)
		return nil, err
	}
	node := &domain.Node{Name: name}
	b.nodes[name] = node
	b.order = append(b.order, name)
	return node, nil
}

// Build validates the definition and returns the graph, or every problem found.
func (b *Builder) Build() (*Graph, error) {
	if b.built {
		return nil, ErrBuilt
	}
	errs := append([]error(nil), b.errs...)

	initial := b.proto.InitialScreen()
	if n, ok := b.nodes[initial]; !ok || n.IsAction {
		errs = append(errs, fmt.Errorf("%w: %q", domain.ErrUnknownInitialScreen, initial))
	}

	fields := b.proto.Schema()
	for _, name := range b.order {
		node := b.nodes[name]
		if node.OnEnter != nil {
			errs = append(errs, checkMutators("on enter "+name, node.OnEnter.Mutators, fields)...)
		}
		for _, e := range node.Edges {
			switch target, ok := b.nodes[e.To]; {
			case e.To == "" && len(e.Actions) == 0:
				errs = append(errs, fmt.Errorf("%w: %s needs a destination or an action name", domain.ErrInvalidEdge, e))
			case e.To == "":
			case !ok:
				errs = append(errs, fmt.Errorf("%w: %s -> %q", domain.ErrUnresolvedEdgeTarget, name, e.To))
			case node.IsAction && target.IsAction:
				errs = append(errs, fmt.Errorf("%w: action %q must lead to a screen, not action %q", domain.ErrInvalidEdge, name, e.To))
			}
			if err := guard.Validate(e.Guard, fields); err != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", domain.ErrInvalidGuard, e, err))
			}
			errs = append(errs, checkMutators(e.String(), e.Mutators, fields)...)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	g := &Graph{
		driver: b.driver,
		proto:  b.proto.Clone(),
		nodes:  b.nodes,
		order:  b.order,
	}
	// Further builder calls must not reach a built graph.
	b.nodes = make(map[string]*domain.Node)
	b.order = nil
	b.built = true
	return g, nil
}

// checkMutators reports mutators of the known kinds that name an undeclared
// field or assign a value of the wrong type. Custom mutators are not checked.
func checkMutators(owner string, mutators []domain.Mutator, fields schema.Schema) []error {
	var errs []error
	for _, m := range mutators {
		var err error
		switch m := m.(type) {
		case domain.Set:
			_, err = schema.Validate(fields, map[string]any{m.Field: m.Value})
		case domain.Toggle:
			var t schema.Type
			if t, err = declared(fields, m.Field); err == nil && t.Name() != "bool" {
				err = &schema.FieldError{Field: m.Field, Err: fmt.Errorf("is %s, cannot toggle", t.Name())}
			}
		case domain.SetParam:
			_, err = declared(fields, m.Field)
		case domain.ReadValue:
			_, err = declared(fields, m.Field)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %s: %w", domain.ErrInvalidMutator, owner, m, err))
		}
	}
	return errs
}

func declared(fields schema.Schema, name string) (schema.Type, error) {
	t, ok := fields[name]
	if !ok {
		return nil, &schema.FieldError{Field: name, Err: schema.ErrUndeclared}
	}
	return t, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
