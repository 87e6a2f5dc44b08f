package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/screengraph/internal/cli"
	httpAdapter "github.com/aretw0/screengraph/pkg/adapters/http"
	"github.com/aretw0/screengraph/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [graph]",
	Short: "Serve the graph over HTTP",
	Long: `Exposes the graph, path planning and reachable actions as a read-only JSON API,
with Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := loadConfig(cmd)
		g := loadGraph(cmd, args, nil)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics.New(reg)

		handler := httpAdapter.NewHandler(g,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting screengraph server", "address", srv.Addr, "graph", graphPath(cmd, args))
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			logger.Error("server error", "error", err)
			os.Exit(1)

		case <-sigCtx.Done():
			logger.Info("shutting down", "signal", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "error", err)
				}
			}
			logger.Info("server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
