package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/screengraph/internal/cli"
	"github.com/aretw0/screengraph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe [graph]",
	Short: "Describe the screens, edges and actions of a graph",
	Long:  `Prints a Markdown description of the graph, rendered when Stdout is a terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		title, _ := cmd.Flags().GetString("title")
		raw, _ := cmd.Flags().GetBool("raw")

		path := graphPath(cmd, args)
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		g := loadGraph(cmd, args, nil)
		render := !raw && tui.IsTerminal(os.Stdout)
		exitOnError(cli.Describe(os.Stdout, g, title, render))
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().String("title", "", "Document title (default: the graph file name)")
	describeCmd.Flags().Bool("raw", false, "Print Markdown without rendering")
}
