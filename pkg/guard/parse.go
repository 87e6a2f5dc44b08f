package guard

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Parse reads a guard written in HCL expression syntax, e.g.
//
//	showIntro == false && showWhatsNew == true
//	!isPrivate || url != "about:blank"
//
// Only field references, bool/string/int literals, ==, !=, &&, || and ! are accepted.
// A bare field name means `field == true`.
func Parse(src string) (Expr, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "guard", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, diags.Error())
	}
	return translate(expr)
}

// MustParse is like Parse but panics on error. Intended for package-level graph tables.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func translate(expr hclsyntax.Expression) (Expr, error) {
	switch e := expr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return translate(e.Expression)

	case *hclsyntax.ScopeTraversalExpr:
		name, err := fieldName(e)
		if err != nil {
			return nil, err
		}
		return Is(name), nil

	case *hclsyntax.UnaryOpExpr:
		if e.Op != hclsyntax.OpLogicalNot {
			return nil, fmt.Errorf("%w: unsupported unary operator", ErrSyntax)
		}
		inner, err := translate(e.Val)
		if err != nil {
			return nil, err
		}
		return Not(inner), nil

	case *hclsyntax.BinaryOpExpr:
		switch e.Op {
		case hclsyntax.OpLogicalAnd, hclsyntax.OpLogicalOr:
			lhs, err := translate(e.LHS)
			if err != nil {
				return nil, err
			}
			rhs, err := translate(e.RHS)
			if err != nil {
				return nil, err
			}
			if e.Op == hclsyntax.OpLogicalAnd {
				return flattenAnd(lhs, rhs), nil
			}
			return flattenOr(lhs, rhs), nil

		case hclsyntax.OpEqual, hclsyntax.OpNotEqual:
			op := OpEq
			if e.Op == hclsyntax.OpNotEqual {
				op = OpNe
			}
			return comparison(e.LHS, e.RHS, op)
		}
		return nil, fmt.Errorf("%w: unsupported binary operator", ErrSyntax)
	}

	return nil, fmt.Errorf("%w: unsupported expression %T", ErrSyntax, expr)
}

// comparison accepts the field on either side of the operator.
func comparison(lhs, rhs hclsyntax.Expression, op Op) (Expr, error) {
	if ref, ok := lhs.(*hclsyntax.ScopeTraversalExpr); ok {
		name, err := fieldName(ref)
		if err != nil {
			return nil, err
		}
		lit, err := literal(rhs)
		if err != nil {
			return nil, err
		}
		return &Comparison{Field: name, Op: op, Value: lit}, nil
	}
	if ref, ok := rhs.(*hclsyntax.ScopeTraversalExpr); ok {
		return comparison(ref, lhs, op)
	}
	return nil, fmt.Errorf("%w: comparison needs a field reference", ErrSyntax)
}

func fieldName(ref *hclsyntax.ScopeTraversalExpr) (string, error) {
	if len(ref.Traversal) != 1 {
		return "", fmt.Errorf("%w: nested references are not supported", ErrSyntax)
	}
	return ref.Traversal.RootName(), nil
}

func literal(expr hclsyntax.Expression) (any, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return ctyToNative(e.Val)
	case *hclsyntax.TemplateExpr:
		if !e.IsStringLiteral() {
			return nil, fmt.Errorf("%w: string templates are not supported", ErrSyntax)
		}
		v, diags := e.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%w: %s", ErrSyntax, diags.Error())
		}
		return ctyToNative(v)
	case *hclsyntax.UnaryOpExpr:
		// -1 parses as a negation of a number literal.
		if e.Op == hclsyntax.OpNegate {
			v, err := literal(e.Val)
			if err != nil {
				return nil, err
			}
			if i, ok := v.(int); ok {
				return -i, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: expected a literal, got %T", ErrSyntax, expr)
}

func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, fmt.Errorf("%w: null literal", ErrSyntax)
	}
	switch v.Type() {
	case cty.Bool:
		return v.True(), nil
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		bf := v.AsBigFloat()
		if !bf.IsInt() {
			return nil, fmt.Errorf("%w: only integer numbers are supported", ErrSyntax)
		}
		i, acc := bf.Int64()
		if acc != big.Exact || int64(int(i)) != i {
			return nil, fmt.Errorf("%w: integer %s out of range", ErrSyntax, bf.Text('f', 0))
		}
		return int(i), nil
	}
	return nil, fmt.Errorf("%w: unsupported literal type %s", ErrSyntax, v.Type().FriendlyName())
}

func flattenAnd(lhs, rhs Expr) Expr {
	var terms []Expr
	for _, t := range []Expr{lhs, rhs} {
		if c, ok := t.(*conjunction); ok {
			terms = append(terms, c.terms...)
		} else {
			terms = append(terms, t)
		}
	}
	return &conjunction{terms: terms}
}

func flattenOr(lhs, rhs Expr) Expr {
	var terms []Expr
	for _, t := range []Expr{lhs, rhs} {
		if d, ok := t.(*disjunction); ok {
			terms = append(terms, d.terms...)
		} else {
			terms = append(terms, t)
		}
	}
	return &disjunction{terms: terms}
}
