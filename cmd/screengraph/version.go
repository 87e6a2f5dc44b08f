package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/screengraph"
	"github.com/aretw0/screengraph/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of screengraph",
	Run: func(cmd *cobra.Command, args []string) {
		version := strings.TrimSpace(screengraph.Version)
		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, version)
			return
		}
		fmt.Printf("screengraph version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
