// Package main provides the entry point for the finmcp MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkorchagin/finmcp-go/internal/config"
	"github.com/mkorchagin/finmcp-go/internal/embedding"
	"github.com/mkorchagin/finmcp-go/internal/metrics"
	"github.com/mkorchagin/finmcp-go/internal/server"
	"github.com/mkorchagin/finmcp-go/internal/store"
	"github.com/mkorchagin/finmcp-go/internal/tools"
)

const version = "0.1.0"

func main() {
	// Load and validate configuration; a misconfigured server must not
	// accept a single tool call.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("finmcp starting",
		"version", version,
		"store_backend", cfg.StoreBackend,
		"embed_provider", cfg.EmbedProvider,
		"embed_model", cfg.EmbedModel,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to the store
	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("closing store")
		_ = st.Close(ctx)
	}()

	if err := st.InitSchema(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	// Create embedder
	embedder, err := embedding.New(cfg)
	if err != nil {
		logger.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	logger.Info("embedder initialized", "model", embedder.Model(), "dimension", embedder.Dimension())

	// Create and setup server
	srv := server.New(version, logger)
	srv.Setup()

	// Register tools
	deps := &tools.Dependencies{
		Store:        st,
		Embedder:     embedder,
		Logger:       logger,
		Metrics:      metrics.NewCollector(),
		EmbedTimeout: cfg.EmbedTimeout,
		StoreTimeout: cfg.StoreTimeout,
	}
	tools.RegisterAll(srv.MCPServer(), deps)

	logger.Info("server ready, awaiting connections")

	// Run server (blocks until disconnect or context cancelled)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
