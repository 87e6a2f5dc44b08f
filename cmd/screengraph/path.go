package main

import (
	"os"

	"github.com/aretw0/screengraph/internal/cli"
	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:   "path [graph]",
	Short: "Print the shortest path between two screens",
	Long: `Plans navigation without a device. Guards are evaluated against the declared
user state defaults, overridden with --set name=value.`,
	Run: func(cmd *cobra.Command, args []string) {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		g := loadGraph(cmd, args, nil)
		exitOnError(cli.Path(os.Stdout, g, from, to, setFlag(cmd)))
	},
}

var actionsCmd = &cobra.Command{
	Use:   "actions [graph]",
	Short: "List the actions reachable from a screen",
	Run: func(cmd *cobra.Command, args []string) {
		from, _ := cmd.Flags().GetString("from")
		g := loadGraph(cmd, args, nil)
		exitOnError(cli.Actions(os.Stdout, g, from, setFlag(cmd)))
	},
}

func init() {
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(actionsCmd)

	pathCmd.Flags().String("from", "", "Start screen (default: the initial screen)")
	pathCmd.Flags().String("to", "", "Target screen")
	_ = pathCmd.MarkFlagRequired("to")
	pathCmd.Flags().StringArray("set", nil, "Override a user state field (name=value)")

	actionsCmd.Flags().String("from", "", "Start screen (default: the initial screen)")
	actionsCmd.Flags().StringArray("set", nil, "Override a user state field (name=value)")
}
