package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/screengraph/pkg/automation"
)

// Condition is an on-screen check. The navigator polls it until it holds or
// the verification timeout expires.
type Condition interface {
	Check(ctx context.Context, env *Env) (bool, error)
	String() string
}

// Exists holds when the element is on screen.
type Exists struct {
	Locator automation.Locator
}

func (e Exists) Check(ctx context.Context, env *Env) (bool, error) {
	d, err := env.driver()
	if err != nil {
		return false, err
	}
	return d.Exists(ctx, e.Locator)
}

func (e Exists) String() string { return "exists " + string(e.Locator) }

// Absent holds when the element is not on screen, e.g. a loading indicator.
type Absent struct {
	Locator automation.Locator
}

func (a Absent) Check(ctx context.Context, env *Env) (bool, error) {
	d, err := env.driver()
	if err != nil {
		return false, err
	}
	ok, err := d.Exists(ctx, a.Locator)
	return !ok, err
}

func (a Absent) String() string { return "absent " + string(a.Locator) }

// AllOf holds when every condition holds.
type AllOf []Condition

func (all AllOf) Check(ctx context.Context, env *Env) (bool, error) {
	for _, c := range all {
		ok, err := c.Check(ctx, env)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (all AllOf) String() string {
	parts := make([]string, len(all))
	for i, c := range all {
		parts[i] = c.String()
	}
	return strings.Join(parts, " and ")
}

// ConditionFunc adapts a function to a Condition.
type ConditionFunc func(ctx context.Context, env *Env) (bool, error)

func (f ConditionFunc) Check(ctx context.Context, env *Env) (bool, error) { return f(ctx, env) }

func (f ConditionFunc) String() string { return "func" }

// Describe renders an optional condition for humans.
func Describe(c Condition) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprint(c)
}
