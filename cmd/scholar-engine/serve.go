// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-engine/internal/artifact"
	"github.com/pdiddy/scholar-engine/internal/engine"
	"github.com/pdiddy/scholar-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search API",
	Long: `Serve starts the HTTP API over the artifact bundle in the data
directory. Artifacts load lazily on first use, so the server starts even
before "scholar-engine fetch" has run; methods whose artifacts are missing
return 503 until the bundle is in place.

The server stops gracefully on SIGINT or SIGTERM, draining in-flight
requests first.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := serviceConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Artifacts.DataDir = dataDir
	}

	logger := newLogger()

	store := artifact.Open(cfg.Artifacts.DataDir)
	defer store.Close()

	if !store.Ready() {
		logger.Warn("artifact bundle incomplete; run \"scholar-engine fetch\"",
			"data_dir", cfg.Artifacts.DataDir)
	}

	embedder, err := buildEmbedder(cfg.Embedding, store, logger)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg.Engine, store, embedder, engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eng.Close()

	h := server.NewHandler(eng, store, cfg.Engine, cfg.Artifacts.DataDir, version, logger)
	srv := server.New(cfg.Server, h, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, \":8080\")")
	serveCmd.Flags().String("data-dir", "", "artifact directory (default from config, \"data\")")

	rootCmd.AddCommand(serveCmd)
}
