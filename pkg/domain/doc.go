/*
Package domain contains the core model of a screen graph.

It defines the entities the graph builder and the navigator share: the typed
UserState, screen Nodes and their Edges, and the tagged effect, mutator and
condition variants that describe real-world side effects without capturing a
global automation handle. The package performs no I/O of its own; every side
effect goes through the automation.Driver carried by an Env.

# Key Entities

  - UserState: typed application state that guards read and mutators write.
  - Node: a verifiable screen-state with ordered outgoing edges.
  - Edge: a transition (tap, press, swipe, type, gesture or noop), optionally
    named by actions and gated by a guard expression.
  - Effect, Mutator, Condition: side effects, state updates and on-screen checks.
  - Position and Snapshot: the navigator's cursor and its persisted form.
*/
package domain
