package domain

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/screengraph/pkg/automation"
)

// Mutator updates the UserState after a transition is verified.
// Mutators are not transactional: those already applied stay applied when a
// later step fails.
type Mutator interface {
	Apply(ctx context.Context, env *Env) error
	String() string
}

// Set assigns a constant.
type Set struct {
	Field string
	Value any
}

func (s Set) Apply(_ context.Context, env *Env) error {
	return env.State.Set(s.Field, s.Value)
}

func (s Set) String() string { return fmt.Sprintf("%s = %v", s.Field, s.Value) }

// Toggle flips a bool field.
type Toggle struct {
	Field string
}

func (t Toggle) Apply(_ context.Context, env *Env) error {
	return env.State.Toggle(t.Field)
}

func (t Toggle) String() string { return "toggle " + t.Field }

// SetParam copies an action argument into a field.
type SetParam struct {
	Field string
	Param string
}

func (s SetParam) Apply(_ context.Context, env *Env) error {
	v, ok := env.Param(s.Param)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMissingParam, s.Param)
	}
	return env.State.Set(s.Field, v)
}

func (s SetParam) String() string { return fmt.Sprintf("%s = $%s", s.Field, s.Param) }

// ReadValue reads an element's value through the driver's ValueReader and
// stores it, parsed according to the field's declared type ("1"/"0" are
// accepted for bool fields, as switches report them).
type ReadValue struct {
	Field   string
	Locator automation.Locator
}

func (r ReadValue) Apply(ctx context.Context, env *Env) error {
	d, err := env.driver()
	if err != nil {
		return err
	}
	reader, ok := d.(automation.ValueReader)
	if !ok {
		return fmt.Errorf("driver %T cannot read element values", d)
	}
	raw, err := reader.Value(ctx, r.Locator)
	if err != nil {
		return err
	}
	var value any = raw
	if t, ok := env.State.Schema()[r.Field]; ok {
		switch t.Name() {
		case "bool":
			value, err = strconv.ParseBool(raw)
		case "int":
			value, err = strconv.Atoi(raw)
		}
		if err != nil {
			return fmt.Errorf("field %q: parse %q: %w", r.Field, raw, err)
		}
	}
	return env.State.Set(r.Field, value)
}

func (r ReadValue) String() string { return fmt.Sprintf("%s = value(%s)", r.Field, r.Locator) }

// MutatorFunc adapts a function to a Mutator.
type MutatorFunc func(ctx context.Context, env *Env) error

func (f MutatorFunc) Apply(ctx context.Context, env *Env) error { return f(ctx, env) }

func (f MutatorFunc) String() string { return "func" }

// ApplyAll runs mutators in order, stopping at the first error.
func ApplyAll(ctx context.Context, env *Env, mutators []Mutator) error {
	for _, m := range mutators {
		if err := m.Apply(ctx, env); err != nil {
			return fmt.Errorf("mutator %s: %w", m, err)
		}
	}
	return nil
}
