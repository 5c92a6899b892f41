package cli

import (
	"fmt"

	"github.com/mkorchagin/finmcp-go/internal/models"
	"github.com/spf13/cobra"
)

var (
	accountsKind   string
	accountsSearch string
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts",
	Long: `List accounts in the store, optionally filtered by kind or by a
case-insensitive name substring.

Examples:
  finctl accounts
  finctl accounts --kind onchain
  finctl accounts --search wallet`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := models.AccountFilter{Search: accountsSearch}
		if accountsKind != "" {
			kind, err := models.ParseAccountKind(accountsKind)
			if err != nil {
				return err
			}
			filter.Kind = &kind
		}

		accounts, err := st.ListAccounts(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		if len(accounts) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}

		for _, a := range accounts {
			line := fmt.Sprintf("%s  %-9s %-6s %s", a.ID, a.Kind, a.Currency, a.Name)
			if a.Institution != nil {
				line += fmt.Sprintf(" (%s)", *a.Institution)
			} else if a.Network != nil {
				line += fmt.Sprintf(" [%s]", *a.Network)
			}
			fmt.Println(line)
		}
		fmt.Printf("\n%d account(s)\n", len(accounts))
		return nil
	},
}

func init() {
	accountsCmd.Flags().StringVarP(&accountsKind, "kind", "k", "", "filter by kind (onchain or offchain)")
	accountsCmd.Flags().StringVarP(&accountsSearch, "search", "s", "", "name substring filter")
}
