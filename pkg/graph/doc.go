/*
Package graph builds and queries screen graphs.

A Builder collects screen-states (via Scene callbacks) and named actions, then
Build validates the whole definition at once: duplicate names, edge targets
that resolve to nothing, an unregistered initial screen and guards that
reference undeclared fields or compare against the wrong literal type.

A built Graph is read-only and safe to share between navigators. Its queries
take the live UserState on every call, so guard changes made by mutators are
always reflected:

	b := graph.NewBuilder(app, domain.NewUserState("Home", schema.BoolField("isPrivate", false)))
	b.AddScreenState("Home", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "homeTitle"})
		s.Tap("menu", "Menu")
	})
	b.AddScreenState("Menu", func(s *graph.Scene) {
		s.DismissOnUse()
		s.Tap("settings", "Settings").If(guard.IsNot("isPrivate"))
	})
	b.AddScreenState("Settings", func(s *graph.Scene) {
		s.Back(domain.Tap{Locator: "navBack"})
	})
	g, err := b.Build()
*/
package graph
