// Package loader reads screen graph topologies from YAML.
//
// A topology declares the user state schema, the screens with their
// recognition checks and ordered edges, and the action pseudo-nodes. Effects
// are limited to what YAML can express (tap, press, swipe, type, noop);
// anything richer is declared in Go with the graph builder.
package loader

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/aretw0/screengraph/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrInvalidTopology wraps every structural problem in a document.
var ErrInvalidTopology = errors.New("invalid topology")

// Parse decodes a YAML (or JSON) document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse topology: %w", err)
	}

	var doc Document
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTopology, err)
	}
	return &doc, nil
}

// Load reads and parses a topology file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadGraph reads a topology file and builds it against driver.
func LoadGraph(path string, driver automation.Driver) (*graph.Graph, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	return doc.Build(driver)
}

// Fields returns the declared user state fields, sorted by name.
func (d *Document) Fields() ([]schema.Field, error) {
	var errs []error
	fields := make([]schema.Field, 0, len(d.State))
	for _, name := range slices.Sorted(maps.Keys(d.State)) {
		f := d.State[name]
		t, err := schema.ParseType(f.Type)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: state %q: %v", ErrInvalidTopology, name, err))
			continue
		}
		def := f.Default
		if def == nil {
			def = t.Zero()
		}
		if def, err = t.Normalize(def); err != nil {
			errs = append(errs, fmt.Errorf("%w: state %q default: %v", ErrInvalidTopology, name, err))
			continue
		}
		fields = append(fields, schema.Field{Name: name, Type: t, Default: def})
	}
	return fields, errors.Join(errs...)
}

// Build constructs the graph. Document errors and graph validation errors are
// joined.
func (d *Document) Build(driver automation.Driver) (*graph.Graph, error) {
	fields, err := d.Fields()
	if err != nil {
		return nil, err
	}

	var errs []error
	b := graph.NewBuilder(driver, domain.NewUserState(d.Initial, fields...))
	for i, sd := range d.Screens {
		if sd.Name == "" {
			errs = append(errs, fmt.Errorf("%w: screen #%d has no name", ErrInvalidTopology, i+1))
			continue
		}
		// Duplicate names are reported by Build.
		_ = b.AddScreenState(sd.Name, func(s *graph.Scene) {
			errs = append(errs, configure(s, sd)...)
		})
	}
	for _, ad := range d.Actions {
		_ = b.AddScreenAction(ad.Name, ad.To, mutators(ad.Set, ad.Toggle, nil)...)
	}

	g, buildErr := b.Build()
	if err := errors.Join(append(errs, buildErr)...); err != nil {
		return nil, err
	}
	return g, nil
}

func configure(s *graph.Scene, sd ScreenDTO) []error {
	var errs []error
	if oe := sd.OnEnter; oe != nil {
		var reads []domain.Mutator
		for _, field := range slices.Sorted(maps.Keys(oe.Read)) {
			reads = append(reads, domain.ReadValue{Field: field, Locator: automation.Locator(oe.Read[field])})
		}
		s.OnEnter(condition(oe), reads...)
	}
	if sd.DismissOnUse {
		s.DismissOnUse()
	}
	if sd.Back != nil {
		effect, _, err := sd.Back.effect()
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s back: %v", ErrInvalidTopology, sd.Name, err))
		} else {
			s.Back(effect)
		}
	}

	for i, ed := range sd.Edges {
		effect, kind, err := ed.effect()
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s edge #%d: %v", ErrInvalidTopology, sd.Name, i+1, err))
			continue
		}
		e := s.Gesture(ed.To, effect).Named(ed.Actions...).Mutate(mutators(ed.Set, ed.Toggle, ed.SetParam)...)
		e.Edge().Kind = kind
		if ed.If != "" {
			e.IfExpr(ed.If)
		}
	}
	return errs
}

func condition(oe *OnEnterDTO) domain.Condition {
	var all domain.AllOf
	for _, loc := range oe.Exists {
		all = append(all, domain.Exists{Locator: automation.Locator(loc)})
	}
	for _, loc := range oe.Absent {
		all = append(all, domain.Absent{Locator: automation.Locator(loc)})
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	}
	return all
}

func mutators(set map[string]any, toggle []string, params map[string]string) []domain.Mutator {
	var out []domain.Mutator
	for _, field := range slices.Sorted(maps.Keys(set)) {
		out = append(out, domain.Set{Field: field, Value: set[field]})
	}
	for _, field := range toggle {
		out = append(out, domain.Toggle{Field: field})
	}
	for _, field := range slices.Sorted(maps.Keys(params)) {
		out = append(out, domain.SetParam{Field: field, Param: params[field]})
	}
	return out
}

// effect converts the one interaction set on e.
func (e EffectDTO) effect() (domain.Effect, domain.EdgeKind, error) {
	var (
		effect domain.Effect
		kind   domain.EdgeKind
		n      int
	)
	if e.Tap != "" {
		n++
		effect, kind = domain.Tap{Locator: automation.Locator(e.Tap)}, domain.EdgeTap
	}
	if e.Press != nil {
		n++
		effect, kind = domain.Press{Locator: automation.Locator(e.Press.Locator), Duration: e.Press.Duration}, domain.EdgePress
	}
	if e.Swipe != nil {
		n++
		dir, ok := automation.ParseDirection(e.Swipe.Direction)
		if !ok {
			return nil, "", fmt.Errorf("unknown swipe direction %q", e.Swipe.Direction)
		}
		effect, kind = domain.Swipe{Locator: automation.Locator(e.Swipe.Locator), Direction: dir}, domain.EdgeSwipe
	}
	if e.Type != nil {
		n++
		effect, kind = domain.TypeText{Locator: automation.Locator(e.Type.Locator), Text: e.Type.Text, Param: e.Type.Param}, domain.EdgeType
	}
	if e.Noop {
		n++
		effect, kind = domain.Noop{}, domain.EdgeNoop
	}
	switch n {
	case 0:
		return nil, "", errors.New("no interaction (tap, press, swipe, type or noop)")
	case 1:
		return effect, kind, nil
	default:
		return nil, "", errors.New("more than one interaction")
	}
}
