package schema

import (
	"fmt"
	"math"
	"strconv"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "bool").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// Normalize converts an accepted value to the canonical Go representation.
	Normalize(value any) (any, error)
	// Zero returns the value an unset field of this type reads as.
	Zero() any
}

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) Normalize(value any) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

func (t *StringType) Zero() any { return "" }

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

func (t *BoolType) Normalize(value any) (any, error) {
	if err := t.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}

func (t *BoolType) Zero() any { return false }

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	_, err := t.Normalize(value)
	return err
}

// Normalize accepts any integer kind and whole floats (JSON numbers) and returns an int.
func (t *IntType) Normalize(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
		return nil, fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return nil, fmt.Errorf("expected int, got %T", value)
	}
}

func (t *IntType) Zero() any { return 0 }

// String creates a string type validator.
func String() Type { return &StringType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// ParseType converts a type name to a Type.
func ParseType(typeStr string) (Type, error) {
	switch typeStr {
	case "string":
		return String(), nil
	case "bool":
		return Bool(), nil
	case "int":
		return Int(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// Infer returns the Type matching a Go value, used when a field is set before being declared.
func Infer(value any) (Type, error) {
	for _, t := range []Type{Bool(), String(), Int()} {
		if t.Validate(value) == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unsupported value type %T", value)
}

// ParseValue converts the textual form of a value, as given on a command line
// or in a query string, to a value of type t.
func ParseValue(t Type, raw string) (any, error) {
	switch t.Name() {
	case "bool":
		return strconv.ParseBool(raw)
	case "int":
		return strconv.Atoi(raw)
	default:
		return t.Normalize(raw)
	}
}
