package guard

import (
	"fmt"

	"github.com/aretw0/screengraph/pkg/schema"
)

// FieldRef starts a comparison on a named field.
type FieldRef struct {
	name string
}

// Field references a user state field by name.
func Field(name string) FieldRef {
	return FieldRef{name: name}
}

// Eq builds `field == value`. Value must be a bool, string or int.
func (f FieldRef) Eq(value any) Expr {
	return &Comparison{Field: f.name, Op: OpEq, Value: value}
}

// Ne builds `field != value`.
func (f FieldRef) Ne(value any) Expr {
	return &Comparison{Field: f.name, Op: OpNe, Value: value}
}

// Is is shorthand for `field == true`.
func Is(field string) Expr {
	return Field(field).Eq(true)
}

// IsNot is shorthand for `field == false`.
func IsNot(field string) Expr {
	return Field(field).Eq(false)
}

// And is true when every term is true. Nil terms are skipped.
func And(terms ...Expr) Expr {
	return join(terms, func(ts []Expr) Expr { return &conjunction{terms: ts} })
}

// Or is true when any term is true. Nil terms are skipped.
func Or(terms ...Expr) Expr {
	return join(terms, func(ts []Expr) Expr { return &disjunction{terms: ts} })
}

// Not negates e.
func Not(e Expr) Expr {
	return &negation{inner: e}
}

func join(terms []Expr, wrap func([]Expr) Expr) Expr {
	var kept []Expr
	for _, t := range terms {
		if t != nil {
			kept = append(kept, t)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return wrap(kept)
	}
}

// Validate checks that every field referenced by e is declared in s and that each
// literal matches the declared type.
func Validate(e Expr, s schema.Schema) error {
	if e == nil {
		return nil
	}
	for _, c := range e.comparisons() {
		t, ok := s[c.Field]
		if !ok {
			return fmt.Errorf("field %q is not declared", c.Field)
		}
		if err := t.Validate(c.Value); err != nil {
			return fmt.Errorf("%w: field %q is %s: %v", ErrTypeMismatch, c.Field, t.Name(), err)
		}
	}
	return nil
}
