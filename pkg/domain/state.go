package domain

import (
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/aretw0/screengraph/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// UserState is a typed record of observed application state.
//
// Fields are declared with a type and a default. Unset fields read as their
// default. Reading a field that was never declared fails with ErrUndeclaredField.
type UserState struct {
	mu       sync.RWMutex
	initial  string
	schema   schema.Schema
	defaults map[string]any
	values   map[string]any
}

// NewUserState creates a state whose navigators start at initialScreen.
// It panics if a field default does not match its type, since field tables
// are static program data.
func NewUserState(initialScreen string, fields ...schema.Field) *UserState {
	s := &UserState{
		initial:  initialScreen,
		schema:   make(schema.Schema),
		defaults: make(map[string]any),
		values:   make(map[string]any),
	}
	for _, f := range fields {
		if err := s.Declare(f); err != nil {
			panic(err)
		}
	}
	return s
}

// InitialScreen is the node a navigator starts from.
func (s *UserState) InitialScreen() string {
	return s.initial
}

// Declare adds or redefines a field.
func (s *UserState) Declare(f schema.Field) error {
	if f.Name == "" {
		return fmt.Errorf("field name must not be empty")
	}
	if f.Type == nil {
		return fmt.Errorf("field %q: type is required", f.Name)
	}
	def := f.Default
	if def == nil {
		def = f.Type.Zero()
	}
	def, err := f.Type.Normalize(def)
	if err != nil {
		return fmt.Errorf("field %q default: %w", f.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.schema[f.Name] = f.Type
	s.defaults[f.Name] = def
	delete(s.values, f.Name)
	return nil
}

// Schema returns a copy of the declared field types.
func (s *UserState) Schema() schema.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.schema)
}

// Fields returns the declared field names, sorted.
func (s *UserState) Fields() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.schema))
	for name := range s.schema {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns the declared default of a field.
func (s *UserState) Default(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.defaults[name]
	return v, ok
}

// Lookup returns the current value of a declared field. It implements guard.Fields.
func (s *UserState) Lookup(name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.schema[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndeclaredField, name)
	}
	if v, ok := s.values[name]; ok {
		return v, nil
	}
	return s.defaults[name], nil
}

// Bool reads a bool field.
func (s *UserState) Bool(name string) (bool, error) {
	v, err := s.Lookup(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("field %q is %T, not bool", name, v)
	}
	return b, nil
}

// String reads a string field.
func (s *UserState) String(name string) (string, error) {
	v, err := s.Lookup(name)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, not string", name, v)
	}
	return str, nil
}

// Int reads an int field.
func (s *UserState) Int(name string) (int, error) {
	v, err := s.Lookup(name)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("field %q is %T, not int", name, v)
	}
	return i, nil
}

// Set assigns a value. Undeclared fields are declared with the type inferred
// from the value and a zero default.
func (s *UserState) Set(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(name, value)
}

func (s *UserState) set(name string, value any) error {
	t, ok := s.schema[name]
	if !ok {
		inferred, err := schema.Infer(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		t = inferred
		s.schema[name] = t
		s.defaults[name] = t.Zero()
	}
	v, err := t.Normalize(value)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	s.values[name] = v
	return nil
}

// SetString parses raw according to the declared type of the field and
// assigns it. The field must be declared.
func (s *UserState) SetString(name, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.schema[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUndeclaredField, name)
	}
	v, err := schema.ParseValue(t, raw)
	if err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return s.set(name, v)
}

// Toggle flips a bool field.
func (s *UserState) Toggle(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.schema[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUndeclaredField, name)
	}
	if t.Name() != "bool" {
		return fmt.Errorf("field %q is %s, cannot toggle", name, t.Name())
	}
	cur, ok := s.values[name]
	if !ok {
		cur = s.defaults[name]
	}
	s.values[name] = !cur.(bool)
	return nil
}

// Reset clears every assigned value so fields read as their defaults again.
func (s *UserState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]any)
}

// Snapshot returns the current value of every declared field.
func (s *UserState) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.schema))
	for name := range s.schema {
		if v, ok := s.values[name]; ok {
			out[name] = v
		} else {
			out[name] = s.defaults[name]
		}
	}
	return out
}

// Restore assigns every value in values, as Set would. Values decoded from JSON
// (float64 numbers) are normalised to their declared types.
func (s *UserState) Restore(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.set(name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

// Decode copies the current values into out, a pointer to a struct or map,
// matching fields by name or `mapstructure` tag.
func (s *UserState) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return err
	}
	return dec.Decode(s.Snapshot())
}

// Clone returns an independent copy sharing no mutable data.
func (s *UserState) Clone() *UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &UserState{
		initial:  s.initial,
		schema:   maps.Clone(s.schema),
		defaults: maps.Clone(s.defaults),
		values:   maps.Clone(s.values),
	}
}
