package screengraph_test

import (
	"context"
	"fmt"

	"github.com/aretw0/screengraph"
	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/automation/mock"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/aretw0/screengraph/pkg/guard"
	"github.com/aretw0/screengraph/pkg/schema"
)

func Example() {
	app := mock.New("Home").
		AddScreen("Home", "homeTitle").
		AddScreen("Menu", "menuList").
		AddScreen("Settings", "settingsTitle").
		On("Home", "menu", automation.GestureTap, "Menu").
		On("Menu", "settings", automation.GestureTap, "Settings").
		On("Settings", "navBack", automation.GestureTap, "Home")

	b := graph.NewBuilder(app, domain.NewUserState("Home", schema.BoolField("isPrivate", false)))
	_ = b.AddScreenState("Home", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "homeTitle"})
		s.Tap("menu", "Menu")
	})
	_ = b.AddScreenState("Menu", func(s *graph.Scene) {
		s.DismissOnUse()
		s.OnEnter(domain.Exists{Locator: "menuList"})
		s.Tap("settings", "Settings").If(guard.IsNot("isPrivate"))
	})
	_ = b.AddScreenState("Settings", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "settingsTitle"})
		s.Back(domain.Tap{Locator: "navBack"})
	})
	g := b.MustBuild()

	nav, _ := screengraph.New(g)
	ctx := context.Background()

	_ = nav.Goto(ctx, "Settings")
	fmt.Println(nav.Current(), app.Performed())

	_ = nav.Goto(ctx, "Home")
	fmt.Println(nav.Current(), app.Performed())
	// Output:
	// Settings [tap menu tap settings]
	// Home [tap menu tap settings tap navBack]
}
