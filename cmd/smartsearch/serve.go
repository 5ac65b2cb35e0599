package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/smartsearch/internal/server"
	"github.com/hyperjump/smartsearch/internal/watcher"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		Short:   "Start the HTTP server",
		Long: `Start the HTTP server.

The index is built from the document catalog, watched directories are
synced, and file changes under them are indexed until shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), g)
		},
	}
}

func runServe(parent context.Context, g *globalOptions) error {
	cfg, cfgPath, logger, err := g.setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Engine.BuildIndex(ctx); err != nil {
		return err
	}
	dirs := cfg.Watch.Directories
	recursive := cfg.Watch.RecursiveOrDefault()
	if len(dirs) > 0 {
		if _, err := c.Indexer.SyncDirectories(ctx, dirs, recursive); err != nil {
			logger.Warn("Initial directory sync incomplete", zap.Error(err))
		}
	}

	w := watcher.New(c.Indexer, dirs, cfg.Watch.Extensions, recursive, watcher.WithLogger(logger))
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	srv := server.NewServer(c.Engine, c.Storage, cfg, logger,
		server.WithWatch(w, cfgPath),
		server.WithMetrics(c.Metrics),
	)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
