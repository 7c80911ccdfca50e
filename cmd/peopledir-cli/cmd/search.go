package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"peopledir/internal/application/commands"
	"peopledir/internal/domain"
)

var (
	searchLimit  int
	suggestLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search employees",
	Long: `Search for employees by name, email or position.

Results are ranked by relevance using fuzzy matching. The query is
added to the local search history.

Examples:
  peopledir-cli search lovelace
  peopledir-cli search "ada l"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		s := GetServices()

		results, err := commands.NewSearchCommand(s.Client, query, searchLimit).Execute(cmd.Context())
		if err != nil {
			return err
		}
		rememberSearch(query)

		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No results found")
			return nil
		}
		employees := make([]domain.Employee, len(results))
		for i, r := range results {
			employees[i] = r.Employee
		}
		printEmployees(cmd.OutOrStdout(), employees)
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <term>",
	Short: "Show search-as-you-type completions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := GetServices()
		limit := suggestLimit
		if limit == 0 {
			limit = s.Config.Directory.SuggestionLimit
		}
		suggestions, err := commands.NewSuggestCommand(s.Client, args[0], limit).Execute(cmd.Context())
		if err != nil {
			return err
		}
		for _, sg := range suggestions {
			if sg.Kind != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", sg.Kind, sg.Text)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), sg.Text)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum results")
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "maximum suggestions (default from config)")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(suggestCmd)
}
