package main

import (
	"os"

	"github.com/aretw0/screengraph/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [graph]",
	Short: "Check the graph for consistency",
	Long: `Builds the graph, which rejects unresolved edges and invalid guards, then crawls
it from the initial screen and reports unreachable screens, unused actions,
dead ends and screens whose arrival cannot be verified.`,
	Run: func(cmd *cobra.Command, args []string) {
		strict, _ := cmd.Flags().GetBool("strict")
		g := loadGraph(cmd, args, nil)
		exitOnError(cli.Validate(os.Stdout, g, strict))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Fail when warnings are found")
}
