package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/screengraph/pkg/domain"
	sg "github.com/aretw0/screengraph/pkg/graph"
)

// Overlay contains session data to highlight on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of g. Node shapes follow the
// node's role:
//   - initial screen: ((circle))
//   - action pseudo-node: [[subroutine]]
//   - dismiss-on-use screen: ([stadium])
//   - other screens: [rectangle]
//
// Noop edges are dotted, action-only edges loop back to their node, and edge
// labels carry action names and guards.
func GenerateMermaid(g *sg.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	initial := g.InitialScreen()
	for _, node := range g.Nodes() {
		id := sanitizeMermaidID(node.Name)

		opener, closer := "[", "]"
		switch {
		case node.Name == initial:
			opener, closer = "((", "))"
		case node.IsAction:
			opener, closer = "[[", "]]"
		case node.DismissOnUse:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(node.Name), closer)

		for _, e := range node.Edges {
			to := e.To
			if to == "" {
				to = node.Name
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", id, arrow(e), sanitizeMermaidID(to))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Visited {
			id := sanitizeMermaidID(name)
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

func arrow(e *domain.Edge) string {
	var parts []string
	if len(e.Actions) > 0 {
		parts = append(parts, strings.Join(e.Actions, ", "))
	}
	if e.Guard != nil {
		parts = append(parts, "if "+e.Guard.String())
	}
	dotted := e.Kind == domain.EdgeNoop || !e.Navigates()
	if len(parts) == 0 {
		if dotted {
			return "-.->"
		}
		return "-->"
	}
	label := escape(strings.Join(parts, " / "))
	if dotted {
		return fmt.Sprintf("-. \"%s\" .->", label)
	}
	return fmt.Sprintf("-- \"%s\" -->", label)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
