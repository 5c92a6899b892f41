package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create the tables and vector indexes finmcp needs. All statements are
idempotent, so migrate is safe to run repeatedly and on every deploy.

The vector index dimension comes from FINMCP_EMBEDDING_DIMENSION and must
match the configured embedding model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := st.InitSchema(cmd.Context()); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
		fmt.Printf("Schema ready (%s backend, dimension %d)\n", cfg.StoreBackend, cfg.EmbedDimension)
		return nil
	},
}
