package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/screengraph/pkg/automation"
)

// Effect performs the real-world side of a transition. Effects are attempted
// once; the navigator never retries them.
type Effect interface {
	Execute(ctx context.Context, env *Env) error
	String() string
}

// Tap taps an element.
type Tap struct {
	Locator automation.Locator
}

func (t Tap) Execute(ctx context.Context, env *Env) error {
	return perform(ctx, env, t.Locator, automation.Gesture{Kind: automation.GestureTap})
}

func (t Tap) String() string { return "tap " + string(t.Locator) }

// Press long-presses an element.
type Press struct {
	Locator  automation.Locator
	Duration time.Duration
}

func (p Press) Execute(ctx context.Context, env *Env) error {
	return perform(ctx, env, p.Locator, automation.Gesture{Kind: automation.GestureLongPress, Duration: p.Duration})
}

func (p Press) String() string { return "press " + string(p.Locator) }

// Swipe swipes on an element. Direction must be one of the swipe gesture kinds.
type Swipe struct {
	Locator   automation.Locator
	Direction automation.GestureKind
}

func (s Swipe) Execute(ctx context.Context, env *Env) error {
	return perform(ctx, env, s.Locator, automation.Gesture{Kind: s.Direction})
}

func (s Swipe) String() string { return string(s.Direction) + " " + string(s.Locator) }

// TypeText types into an element. When Param is set, the text comes from the
// action argument of that name and Text is the fallback.
type TypeText struct {
	Locator automation.Locator
	Text    string
	Param   string
}

func (t TypeText) Execute(ctx context.Context, env *Env) error {
	text := t.Text
	if t.Param != "" {
		v, ok := env.Param(t.Param)
		switch {
		case ok:
			text = fmt.Sprint(v)
		case t.Text == "":
			return fmt.Errorf("%w: %q", ErrMissingParam, t.Param)
		}
	}
	return perform(ctx, env, t.Locator, automation.Gesture{Kind: automation.GestureTypeText, Text: text})
}

func (t TypeText) String() string {
	if t.Param != "" {
		return fmt.Sprintf("type $%s into %s", t.Param, t.Locator)
	}
	return fmt.Sprintf("type %q into %s", t.Text, t.Locator)
}

// Sequence runs effects in order and stops at the first error.
type Sequence []Effect

func (s Sequence) Execute(ctx context.Context, env *Env) error {
	for i, e := range s {
		if err := e.Execute(ctx, env); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, e, err)
		}
	}
	return nil
}

func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, e := range s {
		parts[i] = e.String()
	}
	return strings.Join(parts, "; ")
}

// IfExists runs Then only when Locator is on screen, e.g. to dismiss an
// optional popup.
type IfExists struct {
	Locator automation.Locator
	Then    Effect
}

func (e IfExists) Execute(ctx context.Context, env *Env) error {
	d, err := env.driver()
	if err != nil {
		return err
	}
	ok, err := d.Exists(ctx, e.Locator)
	if err != nil || !ok {
		return err
	}
	return e.Then.Execute(ctx, env)
}

func (e IfExists) String() string {
	return fmt.Sprintf("if %s exists: %s", e.Locator, e.Then)
}

// Noop does nothing. Noop edges model destinations reachable without input.
type Noop struct{}

func (Noop) Execute(context.Context, *Env) error { return nil }

func (Noop) String() string { return "noop" }

// EffectFunc adapts a function to an Effect.
type EffectFunc func(ctx context.Context, env *Env) error

func (f EffectFunc) Execute(ctx context.Context, env *Env) error { return f(ctx, env) }

func (f EffectFunc) String() string { return "func" }

func perform(ctx context.Context, env *Env, loc automation.Locator, g automation.Gesture) error {
	d, err := env.driver()
	if err != nil {
		return err
	}
	return d.Perform(ctx, loc, g)
}
