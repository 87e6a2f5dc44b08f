package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/automation/mock"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv(app *mock.App) *domain.Env {
	return &domain.Env{Driver: app, State: newBrowserState()}
}

func TestEffects_DriveTheApp(t *testing.T) {
	ctx := context.Background()
	app := mock.New("Browser").
		On("Browser", "tabTray", automation.GestureTap, "TabTray").
		On("TabTray", "newTab", automation.GestureLongPress, "NewTabMenu").
		On("NewTabMenu", "list", automation.GestureSwipeUp, "")
	env := newEnv(app)

	seq := domain.Sequence{
		domain.Tap{Locator: "tabTray"},
		domain.Press{Locator: "newTab"},
		domain.Swipe{Locator: "list", Direction: automation.GestureSwipeUp},
	}
	require.NoError(t, seq.Execute(ctx, env))
	assert.Equal(t, "NewTabMenu", app.Current())
	assert.Equal(t, []string{"tap tabTray", "long_press newTab", "swipe_up list"}, app.Performed())
	assert.Equal(t, "tap tabTray; press newTab; swipe_up list", seq.String())
}

func TestSequence_StopsAtFirstError(t *testing.T) {
	app := mock.New("Browser")
	err := domain.Sequence{domain.Tap{Locator: "ghost"}, domain.Tap{Locator: "other"}}.Execute(context.Background(), newEnv(app))
	assert.ErrorIs(t, err, automation.ErrElementNotFound)
	assert.Len(t, app.Performed(), 1)
}

func TestTypeText_FromParam(t *testing.T) {
	ctx := context.Background()
	app := mock.New("Browser").AddScreen("Browser", "url")
	env := newEnv(app)
	env.Params = map[string]any{"url": "mozilla.org"}

	require.NoError(t, domain.TypeText{Locator: "url", Param: "url"}.Execute(ctx, env))
	v, _ := app.Value(ctx, "url")
	assert.Equal(t, "mozilla.org", v)

	env.Params = nil
	err := domain.TypeText{Locator: "url", Param: "url"}.Execute(ctx, env)
	assert.ErrorIs(t, err, domain.ErrMissingParam)
}

func TestIfExists(t *testing.T) {
	ctx := context.Background()
	app := mock.New("Browser").On("Browser", "popupClose", automation.GestureTap, "")
	env := newEnv(app)
	effect := domain.IfExists{Locator: "popupClose", Then: domain.Tap{Locator: "popupClose"}}

	require.NoError(t, effect.Execute(ctx, env))
	assert.Equal(t, []string{"tap popupClose"}, app.Performed())

	other := mock.New("Browser")
	require.NoError(t, effect.Execute(ctx, newEnv(other)))
	assert.Empty(t, other.Performed())
}

func TestEffect_NoDriver(t *testing.T) {
	err := domain.Tap{Locator: "x"}.Execute(context.Background(), &domain.Env{})
	assert.ErrorIs(t, err, domain.ErrNoDriver)
	assert.NoError(t, domain.Noop{}.Execute(context.Background(), nil))
}

func TestMutators(t *testing.T) {
	ctx := context.Background()
	app := mock.New("Settings").AddScreen("Settings", "trackingSwitch")
	app.SetValue("trackingSwitch", "1")
	env := newEnv(app)
	env.Params = map[string]any{"address": "example.com"}

	err := domain.ApplyAll(ctx, env, []domain.Mutator{
		domain.Set{Field: "showIntro", Value: false},
		domain.Toggle{Field: "isPrivate"},
		domain.SetParam{Field: "url", Param: "address"},
		domain.ReadValue{Field: "tracking", Locator: "trackingSwitch"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"showIntro": false,
		"isPrivate": true,
		"url":       "example.com",
		"tabs":      1,
		"tracking":  "1",
	}, env.State.Snapshot())
}

func TestReadValue_ParsesDeclaredBool(t *testing.T) {
	ctx := context.Background()
	app := mock.New("Settings")
	app.SetValue("privateSwitch", "1")
	env := newEnv(app)

	require.NoError(t, domain.ReadValue{Field: "isPrivate", Locator: "privateSwitch"}.Apply(ctx, env))
	b, _ := env.State.Bool("isPrivate")
	assert.True(t, b)
}

func TestApplyAll_StopsAtFirstError(t *testing.T) {
	env := newEnv(mock.New("A"))
	boom := errors.New("boom")
	err := domain.ApplyAll(context.Background(), env, []domain.Mutator{
		domain.Set{Field: "tabs", Value: 2},
		domain.MutatorFunc(func(context.Context, *domain.Env) error { return boom }),
		domain.Set{Field: "tabs", Value: 3},
	})
	assert.ErrorIs(t, err, boom)
	n, _ := env.State.Int("tabs")
	assert.Equal(t, 2, n, "applied mutators are kept")
}

func TestConditions(t *testing.T) {
	ctx := context.Background()
	app := mock.New("Browser").AddScreen("Browser", "urlBar")
	env := newEnv(app)

	ok, err := domain.AllOf{domain.Exists{Locator: "urlBar"}, domain.Absent{Locator: "spinner"}}.Check(ctx, env)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = domain.Absent{Locator: "urlBar"}.Check(ctx, env)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, "exists urlBar and absent spinner", domain.AllOf{domain.Exists{Locator: "urlBar"}, domain.Absent{Locator: "spinner"}}.String())
}
