/*
Package guard implements the boolean conditions that gate screen-graph edges.

Guards are typed expression trees built with a fluent API and evaluated against
the live user state on every path search:

	guard.And(
		guard.Field("showIntro").Eq(false),
		guard.Field("showWhatsNew").Eq(true),
	)

For declarative topologies the same tree can be parsed from HCL expression
syntax with Parse. Validate checks a guard against a schema.Schema so typos and
type mismatches surface when the graph is built, not when a test runs.
*/
package guard
