// Package cli provides the finctl command-line interface for operating a
// finmcp deployment: schema migration, account inspection, and ad-hoc
// similarity searches against the same store the server uses.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mkorchagin/finmcp-go/internal/config"
	"github.com/mkorchagin/finmcp-go/internal/embedding"
	"github.com/mkorchagin/finmcp-go/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and store, wired by the root PersistentPreRunE
	cfg config.Config
	st  store.Store

	// Lazy-initialized embedder; only search commands need one
	embedder embedding.Embedder
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "finctl",
	Short: "Operate a finmcp finance store",
	Long: `Finctl manages the database behind the finmcp MCP server: it creates
the schema, lists accounts, and runs the same semantic searches the
server exposes as tools.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration: %w", err)
		}

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		var err error
		st, err = store.Open(context.Background(), cfg, logger)
		if err != nil {
			return fmt.Errorf("connect to store: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			if err := st.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
		}
	},
}

// getEmbedder lazily initializes the embedding provider.
func getEmbedder() (embedding.Embedder, error) {
	if embedder == nil {
		var err error
		embedder, err = embedding.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
	}
	return embedder, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(searchCmd)
}
