package main

import (
	"os"

	"github.com/aretw0/screengraph/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [graph]",
	Short: "Export the screen graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the screens, actions and edges.`,
	Run: func(cmd *cobra.Command, args []string) {
		current, _ := cmd.Flags().GetString("current")
		visited, _ := cmd.Flags().GetStringSlice("visited")
		g := loadGraph(cmd, args, nil)
		cli.Mermaid(os.Stdout, g, current, visited)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("current", "", "Screen to highlight as current")
	graphCmd.Flags().StringSlice("visited", nil, "Screens to highlight as visited")
}
