package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/screengraph/internal/runtime"
	"github.com/aretw0/screengraph/pkg/automation/mock"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/aretw0/screengraph/pkg/guard"
	"github.com/aretw0/screengraph/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	entered, left []string
	transitions   []*domain.TransitionEvent
	recoveries    []*domain.RecoveryEvent
}

func (r *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter:  func(_ context.Context, e *domain.NodeEvent) { r.entered = append(r.entered, e.Node) },
		OnNodeLeave:  func(_ context.Context, e *domain.NodeEvent) { r.left = append(r.left, e.Node) },
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) { r.transitions = append(r.transitions, e) },
		OnRecovery:   func(_ context.Context, e *domain.RecoveryEvent) { r.recoveries = append(r.recoveries, e) },
	}
}

func TestNavigator_VerificationTimeout(t *testing.T) {
	ctx := context.Background()
	app := newApp().On("Home", "menu", tap, "")
	rec := &recorder{}
	nav := newNavigator(newGraph(t, app), runtime.WithLifecycleHooks(rec.hooks()))

	err := nav.Goto(ctx, "Menu")
	require.ErrorIs(t, err, domain.ErrVerificationTimeout)

	var vt *domain.VerificationTimeoutError
	require.ErrorAs(t, err, &vt)
	assert.Equal(t, "Menu", vt.Node)
	assert.Equal(t, "Home", vt.LastKnown)
	assert.Equal(t, []string{"Home -[tap]-> Menu"}, vt.Path)
	assert.NoError(t, vt.Recovery, "the scan recognised Home")

	// The menu's back action could not run on Home, but Home was recognised.
	require.Len(t, rec.recoveries, 1)
	r := rec.recoveries[0]
	assert.Equal(t, domain.TriggerVerification, r.Trigger)
	assert.Equal(t, "Menu", r.BackFrom)
	assert.Equal(t, "Home", r.Resynced)
	assert.Error(t, r.Err)

	assert.Equal(t, domain.Position{Status: domain.StatusAt, Node: "Home"}, nav.Position())
	assert.Equal(t, []string{"tap menu", "tap cancel"}, app.Performed(), "the tap is never retried")
}

func TestNavigator_VerificationPolls(t *testing.T) {
	ctx := context.Background()
	app := newApp()
	app.AppearAfter("menuList", 3)
	nav := newNavigator(newGraph(t, app))

	require.NoError(t, nav.Goto(ctx, "Menu"))

	checks := 0
	for _, c := range app.Calls() {
		if c.Op == "exists" && c.Locator == "menuList" {
			checks++
		}
	}
	assert.Equal(t, 4, checks)
}

func TestNavigator_EffectFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("element detached")
	app := newApp()
	app.FailOn("settings", boom)
	nav := newNavigator(newGraph(t, app))

	err := nav.Goto(ctx, "Settings")
	require.ErrorIs(t, err, boom)

	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Menu", te.LastKnown)
	assert.Len(t, te.Path, 2)
	assert.Equal(t, "Menu", nav.Current(), "re-synchronised to the screen still displayed")
}

func TestNavigator_MutatorsAreNotRolledBack(t *testing.T) {
	ctx := context.Background()
	var order []string
	record := func(label string) domain.Mutator {
		return domain.MutatorFunc(func(context.Context, *domain.Env) error {
			order = append(order, label)
			return nil
		})
	}

	app := mock.New("A").
		AddScreen("A", "a").AddScreen("B", "b").AddScreen("C", "c").
		On("A", "toB", tap, "B").
		On("B", "toC", tap, "")
	b := graph.NewBuilder(app, domain.NewUserState("A", schema.BoolField("visitedB", false)))
	require.NoError(t, b.AddScreenState("A", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "a"})
		s.Tap("toB", "B").Mutate(record("edge A-B"), domain.Set{Field: "visitedB", Value: true})
	}))
	require.NoError(t, b.AddScreenState("B", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "b"}, record("enter B"))
		s.Tap("toC", "C").Mutate(record("edge B-C"))
	}))
	require.NoError(t, b.AddScreenState("C", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "c"}, record("enter C"))
	}))
	nav := newNavigator(b.MustBuild())

	err := nav.Goto(ctx, "C")
	require.ErrorIs(t, err, domain.ErrVerificationTimeout)

	assert.Equal(t, []string{"edge A-B", "enter B"}, order, "edge mutators run before on-enter mutators")
	visited, _ := nav.UserState().Bool("visitedB")
	assert.True(t, visited)
	assert.Equal(t, "B", nav.Current())
}

func TestNavigator_ActionNotAvailable(t *testing.T) {
	ctx := context.Background()
	app := mock.New("A").AddScreen("A", "a").On("A", "x", tap, "")
	b := graph.NewBuilder(app, domain.NewUserState("A", schema.BoolField("enabled", false)))
	require.NoError(t, b.AddScreenState("A", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "a"})
		s.TapAction("x", "act").If(guard.Is("enabled"))
	}))
	rec := &recorder{}
	nav := newNavigator(b.MustBuild(), runtime.WithLifecycleHooks(rec.hooks()))

	err := nav.PerformAction(ctx, "act", nil)
	var ana *domain.ActionNotAvailableError
	require.ErrorAs(t, err, &ana)
	assert.Equal(t, "act", ana.Action)
	assert.Equal(t, "A", ana.From)
	require.Len(t, rec.recoveries, 1)
	assert.Equal(t, domain.TriggerActionNotAvailable, rec.recoveries[0].Trigger)
	assert.Empty(t, app.Performed())

	app.Reset()
	err = nav.PerformAction(ctx, "neverDeclared", nil)
	assert.ErrorIs(t, err, domain.ErrActionNotAvailable)
	assert.Empty(t, app.Calls(), "unknown actions skip recovery")

	require.NoError(t, nav.UserState().Set("enabled", true))
	require.NoError(t, nav.PerformAction(ctx, "act", nil))
}

func TestNavigator_ActionGuardErrorAfterRecovery(t *testing.T) {
	ctx := context.Background()
	app := mock.New("B").AddScreen("A", "a").AddScreen("B", "b").On("B", "x", tap, "")
	b := graph.NewBuilder(app, domain.NewUserState("A", schema.BoolField("enabled", false)))
	require.NoError(t, b.AddScreenState("A", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "a"})
	}))
	require.NoError(t, b.AddScreenState("B", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "b"})
		s.TapAction("x", "act").If(guard.Is("enabled"))
	}))
	nav := newNavigator(b.MustBuild())

	// The guard can no longer be evaluated once the field changes type.
	require.NoError(t, nav.UserState().Declare(schema.StringField("enabled", "")))

	err := nav.PerformAction(ctx, "act", nil)
	require.ErrorIs(t, err, domain.ErrInvalidGuard)
	assert.NotErrorIs(t, err, domain.ErrActionNotAvailable)
	assert.Equal(t, "B", nav.Current(), "recovery found the displayed screen")
	assert.Empty(t, app.Performed())
}

func TestNavigator_ActionRecoversThroughBackAction(t *testing.T) {
	ctx := context.Background()
	app := newApp()
	nav := newNavigator(newGraph(t, app))
	require.NoError(t, nav.Goto(ctx, "Settings"))

	require.NoError(t, nav.PerformAction(ctx, "toggleNightMode", nil))
	assert.Equal(t, []string{"tap menu", "tap settings", "tap navBack", "tap menu", "tap nightMode"}, app.Performed())
	night, _ := nav.UserState().Bool("nightMode")
	assert.True(t, night)
}

func TestNavigator_Hooks(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	nav := newNavigator(newGraph(t, newApp()), runtime.WithLifecycleHooks(rec.hooks()), runtime.WithSessionID("s-42"))

	require.NoError(t, nav.Goto(ctx, "Settings"))
	require.NoError(t, nav.PerformAction(ctx, "search", map[string]any{"q": "x"}))

	assert.Equal(t, []string{"Menu", "Settings"}, rec.entered)
	assert.Equal(t, []string{"Home", "Menu"}, rec.left)
	require.Len(t, rec.transitions, 3)

	last := rec.transitions[2]
	assert.Equal(t, "s-42", last.SessionID)
	assert.Equal(t, domain.EdgeType, last.Kind)
	assert.Equal(t, "search", last.Action)
	assert.Equal(t, "Settings", last.From)
	assert.Equal(t, "Settings", last.To)
	assert.NoError(t, last.Err)
	assert.Empty(t, rec.recoveries)
}

func TestNavigator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	nav := newNavigator(newGraph(t, newApp()))

	err := nav.Goto(ctx, "Menu")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNavigator_NoDriver(t *testing.T) {
	nav := newNavigator(newGraph(t, nil))
	err := nav.Goto(context.Background(), "Menu")
	assert.ErrorIs(t, err, domain.ErrNoDriver)
}
