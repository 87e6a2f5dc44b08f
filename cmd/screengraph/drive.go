package main

import (
	"os"

	"github.com/aretw0/screengraph/internal/cli"
	"github.com/spf13/cobra"
)

var gotoCmd = &cobra.Command{
	Use:   "goto <screen>",
	Short: "Navigate the app to a screen",
	Long: `Drives the application through the commands of a driver file (--driver) to the
given screen. With --session the position and user state survive between
invocations in the configured store.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := driveOptions(cmd)
		opts.To = args[0]
		runDrive(cmd, opts)
	},
}

var performCmd = &cobra.Command{
	Use:   "perform <action>",
	Short: "Perform a named action, navigating first when needed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		pairs, _ := cmd.Flags().GetStringArray("param")
		params, err := cli.ParseParams(pairs)
		exitOnError(err)

		opts := driveOptions(cmd)
		opts.Action = args[0]
		opts.Params = params
		runDrive(cmd, opts)
	},
}

func driveOptions(cmd *cobra.Command) cli.DriveOptions {
	driverPath, _ := cmd.Flags().GetString("driver")
	sessionID, _ := cmd.Flags().GetString("session")
	fresh, _ := cmd.Flags().GetBool("fresh")
	end, _ := cmd.Flags().GetBool("end")
	relaunch, _ := cmd.Flags().GetBool("relaunch")
	return cli.DriveOptions{
		GraphPath:  graphPath(cmd, nil),
		DriverPath: driverPath,
		SessionID:  sessionID,
		Fresh:      fresh,
		End:        end,
		Relaunch:   relaunch,
		Set:        setFlag(cmd),
	}
}

func runDrive(cmd *cobra.Command, opts cli.DriveOptions) {
	cfg, logger := loadConfig(cmd)

	sigCtx := cli.NewSignalContext(cmd.Context())
	defer sigCtx.Cancel()

	err := cli.Drive(sigCtx, os.Stdout, cfg, logger, opts)
	if err != nil && sigCtx.Signal() != nil {
		logger.Info("interrupted", "signal", sigCtx.Signal())
	}
	exitOnError(err)
}

func init() {
	for _, c := range []*cobra.Command{gotoCmd, performCmd} {
		rootCmd.AddCommand(c)
		c.Flags().String("driver", "driver.yaml", "Driver file binding operations to commands")
		c.Flags().String("session", "", "Session ID to resume or create")
		c.Flags().Bool("fresh", false, "Start the session over instead of resuming it")
		c.Flags().Bool("end", false, "Delete the session when done")
		c.Flags().Bool("relaunch", false, "Relaunch the app before navigating")
		c.Flags().StringArray("set", nil, "Set a user state field (name=value)")
	}
	performCmd.Flags().StringArray("param", nil, "Action parameter (name=value)")
}
