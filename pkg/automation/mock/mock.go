// Package mock provides a scripted in-memory application implementing the
// automation capabilities, for tests and dry runs without a device.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/screengraph/pkg/automation"
)

// AnyScreen registers a transition that applies on every screen.
const AnyScreen = "*"

// Call records one interaction with the app.
type Call struct {
	Op      string // "exists", "perform", "value", "home" or "relaunch"
	Screen  string // screen displayed when the call was made
	Locator automation.Locator
	Gesture automation.Gesture
	Args    []string
}

func (c Call) String() string {
	switch c.Op {
	case "perform":
		return fmt.Sprintf("%s %s on %s", c.Gesture, c.Locator, c.Screen)
	case "exists", "value":
		return fmt.Sprintf("%s %s on %s", c.Op, c.Locator, c.Screen)
	default:
		return c.Op
	}
}

type transitionKey struct {
	screen string
	loc    automation.Locator
	kind   automation.GestureKind
}

// App is a fake UI: a set of screens, each showing some elements, and
// transitions triggered by gestures on those elements.
type App struct {
	mu          sync.Mutex
	initial     string
	home        string
	current     string
	screens     map[string]map[automation.Locator]bool
	transitions map[transitionKey]string
	values      map[automation.Locator]string
	failures    map[automation.Locator]error
	delays      map[automation.Locator]int
	calls       []Call
}

var (
	_ automation.Driver        = (*App)(nil)
	_ automation.ValueReader   = (*App)(nil)
	_ automation.DeviceControl = (*App)(nil)
)

// New creates an app displaying the initial screen.
func New(initial string) *App {
	a := &App{
		initial:     initial,
		current:     initial,
		screens:     make(map[string]map[automation.Locator]bool),
		transitions: make(map[transitionKey]string),
		values:      make(map[automation.Locator]string),
		failures:    make(map[automation.Locator]error),
		delays:      make(map[automation.Locator]int),
	}
	a.AddScreen(initial)
	return a
}

// AddScreen declares a screen and the elements it shows. Calling it again adds elements.
func (a *App) AddScreen(name string, elements ...automation.Locator) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.addScreen(name, elements...)
	return a
}

func (a *App) addScreen(name string, elements ...automation.Locator) {
	s, ok := a.screens[name]
	if !ok {
		s = make(map[automation.Locator]bool)
		a.screens[name] = s
	}
	for _, e := range elements {
		s[e] = true
	}
}

// On makes a gesture on loc, while screen is displayed, switch to the screen to.
// An empty to keeps the current screen. The element is added to screen.
func (a *App) On(screen string, loc automation.Locator, kind automation.GestureKind, to string) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	if screen != AnyScreen {
		a.addScreen(screen, loc)
	}
	if to != "" {
		a.addScreen(to)
	}
	a.transitions[transitionKey{screen, loc, kind}] = to
	return a
}

// SetHome sets the screen Home returns to. Defaults to the initial screen.
func (a *App) SetHome(screen string) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.home = screen
	return a
}

// SetValue sets the value reported by Value for loc.
func (a *App) SetValue(loc automation.Locator, v string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[loc] = v
}

// FailOn makes every Perform on loc return err.
func (a *App) FailOn(loc automation.Locator, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[loc] = err
}

// AppearAfter hides loc from the next n Exists checks, simulating a slow render.
func (a *App) AppearAfter(loc automation.Locator, n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delays[loc] = n
}

// Show switches the displayed screen directly, as an external side effect would.
func (a *App) Show(screen string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.addScreen(screen)
	a.current = screen
}

// Current returns the displayed screen.
func (a *App) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Calls returns a copy of every recorded call.
func (a *App) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

// Performed returns only the gestures, formatted as "gesture locator".
func (a *App) Performed() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, c := range a.calls {
		if c.Op == "perform" {
			out = append(out, fmt.Sprintf("%s %s", c.Gesture.Kind, c.Locator))
		}
	}
	return out
}

// Reset clears the call log.
func (a *App) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = nil
}

func (a *App) Exists(ctx context.Context, loc automation.Locator) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, Call{Op: "exists", Screen: a.current, Locator: loc})
	if !a.screens[a.current][loc] {
		return false, nil
	}
	if n := a.delays[loc]; n > 0 {
		a.delays[loc] = n - 1
		return false, nil
	}
	return true, nil
}

func (a *App) Perform(ctx context.Context, loc automation.Locator, g automation.Gesture) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, Call{Op: "perform", Screen: a.current, Locator: loc, Gesture: g})

	if err := a.failures[loc]; err != nil {
		return err
	}
	to, ok := a.transitions[transitionKey{a.current, loc, g.Kind}]
	if !ok {
		to, ok = a.transitions[transitionKey{AnyScreen, loc, g.Kind}]
	}
	if !ok && !a.screens[a.current][loc] {
		return fmt.Errorf("%w: %s on %s", automation.ErrElementNotFound, loc, a.current)
	}
	if g.Kind == automation.GestureTypeText {
		a.values[loc] = g.Text
	}
	if to != "" {
		a.current = to
	}
	return nil
}

func (a *App) Value(ctx context.Context, loc automation.Locator) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, Call{Op: "value", Screen: a.current, Locator: loc})
	v, ok := a.values[loc]
	if !ok {
		return "", fmt.Errorf("%w: %s", automation.ErrElementNotFound, loc)
	}
	return v, nil
}

func (a *App) Home(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, Call{Op: "home", Screen: a.current})
	if a.home != "" {
		a.current = a.home
	} else {
		a.current = a.initial
	}
	return nil
}

func (a *App) Relaunch(ctx context.Context, args ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, Call{Op: "relaunch", Screen: a.current, Args: args})
	a.current = a.initial
	return nil
}
