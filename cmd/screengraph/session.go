package main

import (
	"fmt"
	"os"

	"github.com/aretw0/screengraph/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted navigation sessions",
	Long:  `List, inspect, and remove the sessions held by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	Run: func(cmd *cobra.Command, args []string) {
		p := openStore(cmd)
		defer p.Close()
		exitOnError(cli.ListSessions(cmd.Context(), os.Stdout, p.Store))
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the snapshot of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		p := openStore(cmd)
		defer p.Close()
		exitOnError(cli.InspectSession(cmd.Context(), os.Stdout, p.Store, args[0]))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm [session-id]...",
	Short: "Remove one or more sessions",
	Run: func(cmd *cobra.Command, args []string) {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			fmt.Println("Error: give at least one session ID, or --all")
			os.Exit(1)
		}
		p := openStore(cmd)
		defer p.Close()
		exitOnError(cli.RemoveSessions(cmd.Context(), os.Stdout, p.Store, args, all))
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionRmCmd.Flags().Bool("all", false, "Remove every stored session")
}

func openStore(cmd *cobra.Command) *cli.Persistence {
	cfg, logger := loadConfig(cmd)
	p, err := cli.OpenStore(cfg, logger)
	exitOnError(err)
	return p
}
