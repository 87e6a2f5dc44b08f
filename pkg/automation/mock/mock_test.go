package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tap = automation.Gesture{Kind: automation.GestureTap}

func TestApp_Transitions(t *testing.T) {
	ctx := context.Background()
	app := New("Home").
		AddScreen("Home", "homeTitle").
		On("Home", "menu", automation.GestureTap, "Menu").
		On("Menu", "settings", automation.GestureTap, "Settings").
		On(AnyScreen, "navBack", automation.GestureTap, "Home")

	ok, err := app.Exists(ctx, "homeTitle")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = app.Exists(ctx, "settings")
	assert.False(t, ok, "settings is on the Menu screen")

	require.NoError(t, app.Perform(ctx, "menu", tap))
	require.NoError(t, app.Perform(ctx, "settings", tap))
	assert.Equal(t, "Settings", app.Current())

	require.NoError(t, app.Perform(ctx, "navBack", tap))
	assert.Equal(t, "Home", app.Current())

	assert.Equal(t, []string{"tap menu", "tap settings", "tap navBack"}, app.Performed())
}

func TestApp_PerformMissingElement(t *testing.T) {
	app := New("Home")
	err := app.Perform(context.Background(), "ghost", tap)
	assert.ErrorIs(t, err, automation.ErrElementNotFound)
	assert.Equal(t, "Home", app.Current())
}

func TestApp_FailOn(t *testing.T) {
	boom := errors.New("boom")
	app := New("Home").On("Home", "menu", automation.GestureTap, "Menu")
	app.FailOn("menu", boom)

	assert.ErrorIs(t, app.Perform(context.Background(), "menu", tap), boom)
	assert.Equal(t, "Home", app.Current())
}

func TestApp_AppearAfter(t *testing.T) {
	ctx := context.Background()
	app := New("Home").AddScreen("Home", "spinnerDone")
	app.AppearAfter("spinnerDone", 2)

	for i := 0; i < 2; i++ {
		ok, err := app.Exists(ctx, "spinnerDone")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	ok, _ := app.Exists(ctx, "spinnerDone")
	assert.True(t, ok)
}

func TestApp_TypeTextAndValue(t *testing.T) {
	ctx := context.Background()
	app := New("Browser").AddScreen("Browser", "url")

	_, err := app.Value(ctx, "url")
	assert.ErrorIs(t, err, automation.ErrElementNotFound)

	require.NoError(t, app.Perform(ctx, "url", automation.Gesture{Kind: automation.GestureTypeText, Text: "example.com"}))
	v, err := app.Value(ctx, "url")
	require.NoError(t, err)
	assert.Equal(t, "example.com", v)
}

func TestApp_DeviceControl(t *testing.T) {
	ctx := context.Background()
	app := New("Launch").On("Launch", "go", automation.GestureTap, "Browser").SetHome("Springboard")

	require.NoError(t, app.Perform(ctx, "go", tap))
	require.NoError(t, app.Home(ctx))
	assert.Equal(t, "Springboard", app.Current())

	require.NoError(t, app.Relaunch(ctx, "-skipIntro"))
	assert.Equal(t, "Launch", app.Current())

	calls := app.Calls()
	last := calls[len(calls)-1]
	assert.Equal(t, "relaunch", last.Op)
	assert.Equal(t, []string{"-skipIntro"}, last.Args)
}

func TestApp_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app := New("Home")
	_, err := app.Exists(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
