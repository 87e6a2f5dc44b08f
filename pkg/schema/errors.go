package schema

import (
	"errors"
	"fmt"
)

// ErrUndeclared is returned for a value whose field is not in the schema.
var ErrUndeclared = errors.New("undeclared field")

// FieldError ties a validation failure to the field it concerns.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
