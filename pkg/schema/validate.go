package schema

import (
	"errors"
	"maps"
	"slices"
)

// Schema is a map of field names to their expected types.
type Schema map[string]Type

// Field declares a single typed field together with its default value.
type Field struct {
	Name    string
	Type    Type
	Default any
}

// BoolField declares a bool field.
func BoolField(name string, def bool) Field {
	return Field{Name: name, Type: Bool(), Default: def}
}

// StringField declares a string field.
func StringField(name string, def string) Field {
	return Field{Name: name, Type: String(), Default: def}
}

// IntField declares an int field.
func IntField(name string, def int) Field {
	return Field{Name: name, Type: Int(), Default: def}
}

// Validate checks every value in data against the schema and returns the
// values normalised to their declared types. Each undeclared or ill-typed
// field yields a *FieldError; all of them are joined, in field order.
func Validate(s Schema, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(data)) {
		t, ok := s[name]
		if !ok {
			errs = append(errs, &FieldError{Field: name, Err: ErrUndeclared})
			continue
		}
		v, err := t.Normalize(data[name])
		if err != nil {
			errs = append(errs, &FieldError{Field: name, Err: err})
			continue
		}
		out[name] = v
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}
