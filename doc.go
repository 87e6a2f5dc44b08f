/*
Package screengraph navigates a UI under test through a graph of named screens.

Tests declare where they want to be instead of scripting every intermediate
tap. The graph knows how each screen is reached, which guards (conditions on
the application's user state) allow an edge, and how to recognise the screen
that is actually displayed.

# Concept

A graph is built once from screen declarations. Each screen has ordered edges
to other screens, each edge carries an effect (tap, press, swipe, type) run
against an automation Driver, optional named actions, mutators that update the
user state, and an optional guard. On-enter conditions let the navigator
verify that a transition really landed and re-synchronise when it did not.

The Navigator computes the shortest guard-satisfied path with a breadth-first
search, executes it edge by edge, and on failure performs a single recovery
attempt (back action, then a scan of on-enter conditions) before returning the
original error with diagnostics attached.

# Usage

	b := graph.NewBuilder(driver, domain.NewUserState("Home",
		schema.BoolField("isPrivate", false),
	))
	b.AddScreenState("Home", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "homeTitle"})
		s.Tap("menu", "Menu")
	})
	b.AddScreenState("Menu", func(s *graph.Scene) {
		s.DismissOnUse()
		s.OnEnter(domain.Exists{Locator: "menuList"})
		s.Tap("settings", "Settings").If(guard.IsNot("isPrivate"))
		s.Back(domain.Tap{Locator: "cancel"})
	})
	b.AddScreenState("Settings", func(s *graph.Scene) {
		s.OnEnter(domain.Exists{Locator: "settingsTitle"})
	})
	g, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

	nav, err := screengraph.New(g)
	if err != nil {
		log.Fatal(err)
	}
	if err := nav.Goto(ctx, "Settings"); err != nil {
		log.Fatal(err)
	}

# Persistence

With WithStore, a snapshot of the session (position, user state, history) is
written after every operation and Resume continues it, possibly from another
process. WithLocker adds a distributed lock so runners sharing a device never
interleave operations on the same session.
*/
package screengraph
