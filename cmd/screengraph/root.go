package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/screengraph/internal/cli"
	"github.com/aretw0/screengraph/internal/config"
	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "screengraph",
	Short: "Screengraph navigates UI tests through a graph of app screens",
	Long: `Screengraph describes an application as a graph of verifiable screens and
the gestures between them, then plans and drives navigation for UI tests.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("graph", "g", ".", "Graph file, or a directory containing one")
	rootCmd.PersistentFlags().String("config", ".", "Directory containing screengraph.yaml")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Duration("verify-timeout", 0, "How long to wait for a screen to be recognised (default 5s)")
	rootCmd.PersistentFlags().Duration("poll-interval", 0, "Pause between two screen checks (default 100ms)")
	rootCmd.PersistentFlags().String("store", config.StoreMemory, "Session store: memory, file or redis")
	rootCmd.PersistentFlags().String("store-dir", ".screengraph/sessions", "Directory of the file store")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Address of the redis store")
}

// graphPath returns --graph, or the first argument when the flag was not set.
func graphPath(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("graph")
	if !cmd.Flags().Changed("graph") && len(args) > 0 {
		path = args[0]
	}
	return path
}

func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger) {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir, cmd.Flags())
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg, cli.NewLogger(cfg.Level())
}

func loadGraph(cmd *cobra.Command, args []string, driver automation.Driver) *graph.Graph {
	g, err := cli.LoadGraph(graphPath(cmd, args), driver)
	if err != nil {
		fmt.Printf("Error loading graph: %v\n", err)
		os.Exit(1)
	}
	return g
}

func setFlag(cmd *cobra.Command) map[string]string {
	pairs, _ := cmd.Flags().GetStringArray("set")
	set, err := cli.ParseSet(pairs)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return set
}

func exitOnError(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
