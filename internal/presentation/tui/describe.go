package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
)

// Describe renders g as a markdown document: one section per screen with its
// recognition check and an edge table, followed by the action pseudo-nodes.
func Describe(g *graph.Graph, title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Initial screen: **%s**\n\n", g.InitialScreen())

	state := g.NewUserState()
	if fields := state.Fields(); len(fields) > 0 {
		sb.WriteString("## User state\n\n| Field | Type | Default |\n|---|---|---|\n")
		schema := state.Schema()
		for _, name := range fields {
			def, _ := state.Default(name)
			fmt.Fprintf(&sb, "| %s | %s | `%v` |\n", name, schema[name].Name(), def)
		}
		sb.WriteString("\n")
	}

	var actions []*domain.Node
	for _, node := range g.Nodes() {
		if node.IsAction {
			actions = append(actions, node)
			continue
		}
		describeScreen(&sb, node)
	}

	if len(actions) > 0 {
		sb.WriteString("## Actions\n\n| Action | Leads to | Mutators |\n|---|---|---|\n")
		for _, node := range actions {
			e := node.Edges[0]
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", node.Name, e.To, mutators(e.Mutators))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func describeScreen(sb *strings.Builder, node *domain.Node) {
	fmt.Fprintf(sb, "## %s\n\n", node.Name)

	check := "-"
	if node.OnEnter != nil {
		check = domain.Describe(node.OnEnter.Condition)
	}
	fmt.Fprintf(sb, "- Recognised by: %s\n", check)
	if node.Back != nil {
		fmt.Fprintf(sb, "- Back: %s\n", node.Back)
	}
	if node.DismissOnUse {
		sb.WriteString("- Dismissed on use\n")
	}
	sb.WriteString("\n")

	if len(node.Edges) == 0 {
		return
	}
	sb.WriteString("| Effect | To | Actions | Guard | Mutators |\n|---|---|---|---|---|\n")
	for _, e := range node.Edges {
		to := e.To
		if to == "" {
			to = "(stays)"
		}
		guard := "-"
		if e.Guard != nil {
			guard = "`" + e.Guard.String() + "`"
		}
		acts := "-"
		if len(e.Actions) > 0 {
			acts = strings.Join(e.Actions, ", ")
		}
		fmt.Fprintf(sb, "| %s | %s | %s | %s | %s |\n", e.Effect, to, acts, guard, mutators(e.Mutators))
	}
	sb.WriteString("\n")
}

func mutators(ms []domain.Mutator) string {
	if len(ms) == 0 {
		return "-"
	}
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return strings.Join(parts, "; ")
}
