// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bioexplorer/internal/metrics"
	"github.com/pdiddy/bioexplorer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for the web frontend",
	Long: `Serve exposes search, study detail, KPIs, facet values, export and chat
over HTTP, with Prometheus metrics at /metrics. Clients keep their result
cache and chat history by sending an X-Session-ID header.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")
	if err := viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := explorerConfig(viper.GetViper())
	backend, err := newBackend(cfg)
	if err != nil {
		return err
	}

	srv, err := server.New(backend, cfg,
		server.WithLogger(logger),
		server.WithRecorder(metrics.NewRecorder()),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Mock.Enabled {
		logger.Warn("serving fixture data; no backend calls will be made")
	}
	return srv.Run(ctx)
}
