package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aretw0/screengraph/internal/dryrun"
	graphviz "github.com/aretw0/screengraph/internal/presentation/graph"
	"github.com/aretw0/screengraph/internal/presentation/tui"
	"github.com/aretw0/screengraph/internal/validator"
	"github.com/aretw0/screengraph/pkg/graph"
)

// Validate prints the lint report of g. It fails when strict and an issue
// was found.
func Validate(w io.Writer, g *graph.Graph, strict bool) error {
	report := validator.ValidateGraph(g)
	if report.OK() {
		fmt.Fprintf(w, "Graph is valid: %d screens, %d actions.\n", len(g.Screens()), len(g.Actions()))
		return nil
	}
	for _, issue := range report.Issues {
		fmt.Fprintf(w, "warning: %s\n", issue)
	}
	if strict {
		return report.Err()
	}
	return nil
}

// Mermaid prints g as a Mermaid flowchart, highlighting current and visited.
func Mermaid(w io.Writer, g *graph.Graph, current string, visited []string) {
	var overlay *graphviz.Overlay
	if current != "" || len(visited) > 0 {
		overlay = &graphviz.Overlay{Current: current, Visited: visited}
	}
	fmt.Fprint(w, graphviz.GenerateMermaid(g, overlay))
}

// Path prints the shortest path from one screen to another, one edge per
// line. An empty from means the initial screen.
func Path(w io.Writer, g *graph.Graph, from, to string, set map[string]string) error {
	if from == "" {
		from = g.InitialScreen()
	}
	state, err := g.StateWith(set)
	if err != nil {
		return err
	}
	path, err := g.FindPath(from, to, state)
	if err != nil {
		return err
	}
	if len(path) == 0 {
		fmt.Fprintf(w, "Already at %s.\n", to)
		return nil
	}
	for i, e := range path {
		fmt.Fprintf(w, "%d. %s\n", i+1, e)
	}
	return nil
}

// Actions prints the actions reachable from a screen.
func Actions(w io.Writer, g *graph.Graph, from string, set map[string]string) error {
	if from == "" {
		from = g.InitialScreen()
	}
	state, err := g.StateWith(set)
	if err != nil {
		return err
	}
	actions, err := g.ReachableActions(from, state)
	if err != nil {
		return err
	}
	for _, a := range actions {
		fmt.Fprintln(w, a)
	}
	return nil
}

// Describe prints a markdown description of g, rendered for the terminal
// when render is set.
func Describe(w io.Writer, g *graph.Graph, title string, render bool) error {
	md := tui.Describe(g, title)
	if render {
		out, err := tui.NewRenderer()(md)
		if err != nil {
			return err
		}
		md = out
	}
	_, err := io.WriteString(w, md)
	return err
}

// DryRunOptions configures DryRun.
type DryRunOptions struct {
	Set    map[string]string
	To     string
	Action string
	Params map[string]any
	JSON   bool
}

// DryRun executes a plan against a fake app derived from g and prints the
// report. The report is printed even when the plan fails.
func DryRun(ctx context.Context, w io.Writer, g *graph.Graph, opts DryRunOptions) error {
	state, err := g.StateWith(opts.Set)
	if err != nil {
		return err
	}
	seed := make(map[string]any, len(opts.Set))
	values := state.Snapshot()
	for name := range opts.Set {
		seed[name] = values[name]
	}

	report, runErr := dryrun.Run(ctx, g, dryrun.Plan{
		Set:    seed,
		To:     opts.To,
		Action: opts.Action,
		Params: opts.Params,
	})
	if report == nil {
		return runErr
	}

	if opts.JSON {
		out := struct {
			Status    string         `json:"status"`
			Node      string         `json:"node"`
			History   []string       `json:"history"`
			Performed []string       `json:"performed"`
			State     map[string]any `json:"state"`
			Error     string         `json:"error,omitempty"`
		}{
			Status:    string(report.Position.Status),
			Node:      report.Position.Node,
			History:   report.History,
			Performed: report.Performed,
			State:     report.State,
		}
		if runErr != nil {
			out.Error = runErr.Error()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		return runErr
	}

	fmt.Fprintf(w, "Position: %s %s\n", report.Position.Status, report.Position.Node)
	fmt.Fprintf(w, "History:  %s\n", strings.Join(report.History, " > "))
	fmt.Fprintln(w, "Performed:")
	for _, p := range report.Performed {
		fmt.Fprintf(w, "  - %s\n", p)
	}
	fmt.Fprintln(w, "State:")
	names := make([]string, 0, len(report.State))
	for name := range report.State {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s = %v\n", name, report.State[name])
	}
	return runErr
}
