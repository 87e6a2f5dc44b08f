package main

import (
	"os"

	"github.com/aretw0/screengraph/internal/cli"
	"github.com/spf13/cobra"
)

var dryrunCmd = &cobra.Command{
	Use:   "dryrun [graph]",
	Short: "Navigate a fake app derived from the graph",
	Long: `Derives a fake application from the graph's own checks and gestures, then
navigates it with --to and performs --action. Useful to check a graph without
a device.`,
	Run: func(cmd *cobra.Command, args []string) {
		to, _ := cmd.Flags().GetString("to")
		action, _ := cmd.Flags().GetString("action")
		jsonMode, _ := cmd.Flags().GetBool("json")
		pairs, _ := cmd.Flags().GetStringArray("param")
		params, err := cli.ParseParams(pairs)
		exitOnError(err)

		g := loadGraph(cmd, args, nil)
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		err = cli.DryRun(sigCtx, os.Stdout, g, cli.DryRunOptions{
			Set:    setFlag(cmd),
			To:     to,
			Action: action,
			Params: params,
			JSON:   jsonMode,
		})
		exitOnError(err)
	},
}

func init() {
	rootCmd.AddCommand(dryrunCmd)
	dryrunCmd.Flags().String("to", "", "Screen to go to")
	dryrunCmd.Flags().String("action", "", "Action to perform")
	dryrunCmd.Flags().StringArray("set", nil, "Seed a user state field (name=value)")
	dryrunCmd.Flags().StringArray("param", nil, "Action parameter (name=value)")
	dryrunCmd.Flags().Bool("json", false, "Print the report as JSON")
}
