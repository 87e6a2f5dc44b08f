package graph

import (
	"fmt"

	"github.com/aretw0/screengraph/pkg/domain"
)

// View is the serialisable shape of a graph, as served by the inspection
// surfaces.
type View struct {
	Initial string      `json:"initial"`
	Fields  []FieldView `json:"fields"`
	Nodes   []NodeView  `json:"nodes"`
}

type FieldView struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Default any    `json:"default"`
}

type NodeView struct {
	Name         string     `json:"name"`
	Action       bool       `json:"action,omitempty"`
	DismissOnUse bool       `json:"dismiss_on_use,omitempty"`
	OnEnter      string     `json:"on_enter,omitempty"`
	Back         string     `json:"back,omitempty"`
	Edges        []EdgeView `json:"edges"`
}

type EdgeView struct {
	From    string   `json:"from"`
	To      string   `json:"to,omitempty"`
	Kind    string   `json:"kind"`
	Effect  string   `json:"effect"`
	Actions []string `json:"actions,omitempty"`
	Guard   string   `json:"guard,omitempty"`
}

// View renders g for inspection.
func (g *Graph) View() View {
	v := View{Initial: g.InitialScreen(), Fields: []FieldView{}}

	state := g.NewUserState()
	types := state.Schema()
	for _, name := range state.Fields() {
		def, _ := state.Default(name)
		v.Fields = append(v.Fields, FieldView{Name: name, Type: types[name].Name(), Default: def})
	}

	for _, node := range g.Nodes() {
		nv := NodeView{
			Name:         node.Name,
			Action:       node.IsAction,
			DismissOnUse: node.DismissOnUse,
			Edges:        EdgeViews(node.Edges),
		}
		if node.Recognizable() {
			nv.OnEnter = domain.Describe(node.OnEnter.Condition)
		}
		if node.Back != nil {
			nv.Back = node.Back.String()
		}
		v.Nodes = append(v.Nodes, nv)
	}
	return v
}

// EdgeViews renders a list of edges, e.g. a path.
func EdgeViews(edges []*domain.Edge) []EdgeView {
	out := make([]EdgeView, len(edges))
	for i, e := range edges {
		out[i] = EdgeView{
			From:    e.From,
			To:      e.To,
			Kind:    string(e.Kind),
			Effect:  fmt.Sprint(e.Effect),
			Actions: e.Actions,
		}
		if e.Guard != nil {
			out[i].Guard = e.Guard.String()
		}
	}
	return out
}
