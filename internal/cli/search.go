package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit      int
	searchCategories bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over transactions or categories",
	Long: `Embed the query text and run a nearest-neighbor search, exactly like
the search_similar_transactions and search_similar_categories tools.

Examples:
  finctl search "coffee shops"
  finctl search --categories "eating out"
  finctl search -n 10 "exchange withdrawal fees"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		emb, err := getEmbedder()
		if err != nil {
			return err
		}
		vector, err := emb.Embed(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("embed query: %w", err)
		}

		if searchCategories {
			matches, err := st.SearchCategories(cmd.Context(), vector, searchLimit)
			if err != nil {
				return fmt.Errorf("search categories: %w", err)
			}
			for _, m := range matches {
				desc := ""
				if m.Category.Description != nil {
					desc = " - " + *m.Category.Description
				}
				fmt.Printf("%.4f  %-10s %s%s\n", m.Distance, m.Category.Kind, m.Category.Name, desc)
			}
			fmt.Printf("\n%d match(es)\n", len(matches))
			return nil
		}

		matches, err := st.SearchTransactions(cmd.Context(), vector, searchLimit)
		if err != nil {
			return fmt.Errorf("search transactions: %w", err)
		}
		for _, m := range matches {
			desc := ""
			if m.Transaction.Description != nil {
				desc = *m.Transaction.Description
			}
			fmt.Printf("%.4f  %s  %8.2f %-6s %s\n",
				m.Distance,
				m.Transaction.OccurredAt.Format("2006-01-02"),
				m.Transaction.Amount,
				m.Transaction.Currency,
				desc,
			)
		}
		fmt.Printf("\n%d match(es)\n", len(matches))
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "max results (1-25)")
	searchCmd.Flags().BoolVarP(&searchCategories, "categories", "c", false, "search categories instead of transactions")
}
