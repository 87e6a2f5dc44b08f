package guard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrTypeMismatch is returned when a literal is compared with a field of another type.
	ErrTypeMismatch = errors.New("guard type mismatch")
	// ErrSyntax is returned by Parse for malformed expressions.
	ErrSyntax = errors.New("guard syntax error")
)

// Fields is the read side of a user state, as seen by guards.
type Fields interface {
	// Lookup returns the current value of a field, or its declared default when unset.
	// It fails for fields that were never declared.
	Lookup(name string) (any, error)
}

// Expr is a boolean expression over named fields.
type Expr interface {
	Eval(f Fields) (bool, error)
	String() string
	comparisons() []*Comparison
}

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
)

// Comparison compares one field against a literal.
type Comparison struct {
	Field string
	Op    Op
	Value any
}

func (c *Comparison) Eval(f Fields) (bool, error) {
	actual, err := f.Lookup(c.Field)
	if err != nil {
		return false, err
	}
	equal, err := literalEqual(actual, c.Value)
	if err != nil {
		return false, fmt.Errorf("%w: field %q: %v", ErrTypeMismatch, c.Field, err)
	}
	if c.Op == OpNe {
		return !equal, nil
	}
	return equal, nil
}

func (c *Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Op, formatLiteral(c.Value))
}

func (c *Comparison) comparisons() []*Comparison { return []*Comparison{c} }

type conjunction struct {
	terms []Expr
}

func (a *conjunction) Eval(f Fields) (bool, error) {
	for _, t := range a.terms {
		ok, err := t.Eval(f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (a *conjunction) String() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		if _, isOr := t.(*disjunction); isOr {
			parts[i] = "(" + t.String() + ")"
		} else {
			parts[i] = t.String()
		}
	}
	return strings.Join(parts, " && ")
}

func (a *conjunction) comparisons() []*Comparison { return collect(a.terms) }

type disjunction struct {
	terms []Expr
}

func (o *disjunction) Eval(f Fields) (bool, error) {
	for _, t := range o.terms {
		ok, err := t.Eval(f)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (o *disjunction) String() string {
	parts := make([]string, len(o.terms))
	for i, t := range o.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " || ")
}

func (o *disjunction) comparisons() []*Comparison { return collect(o.terms) }

type negation struct {
	inner Expr
}

func (n *negation) Eval(f Fields) (bool, error) {
	ok, err := n.inner.Eval(f)
	return !ok, err
}

func (n *negation) String() string { return "!(" + n.inner.String() + ")" }

func (n *negation) comparisons() []*Comparison { return n.inner.comparisons() }

func collect(terms []Expr) []*Comparison {
	var out []*Comparison
	for _, t := range terms {
		out = append(out, t.comparisons()...)
	}
	return out
}

// Eval evaluates e against f. A nil expression is always true.
func Eval(e Expr, f Fields) (bool, error) {
	if e == nil {
		return true, nil
	}
	return e.Eval(f)
}

// Referenced lists the field names used by e, in order of appearance and without duplicates.
func Referenced(e Expr) []string {
	if e == nil {
		return nil
	}
	seen := make(map[string]bool)
	var names []string
	for _, c := range e.comparisons() {
		if !seen[c.Field] {
			seen[c.Field] = true
			names = append(names, c.Field)
		}
	}
	return names
}

func literalEqual(actual, literal any) (bool, error) {
	switch lit := literal.(type) {
	case bool:
		v, ok := actual.(bool)
		if !ok {
			return false, fmt.Errorf("cannot compare %T with bool", actual)
		}
		return v == lit, nil
	case string:
		v, ok := actual.(string)
		if !ok {
			return false, fmt.Errorf("cannot compare %T with string", actual)
		}
		return v == lit, nil
	case int:
		v, ok := actual.(int)
		if !ok {
			return false, fmt.Errorf("cannot compare %T with int", actual)
		}
		return v == lit, nil
	default:
		return false, fmt.Errorf("unsupported literal %T", literal)
	}
}

func formatLiteral(v any) string {
	switch lit := v.(type) {
	case string:
		return strconv.Quote(lit)
	default:
		return fmt.Sprintf("%v", lit)
	}
}
