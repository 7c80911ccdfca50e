package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"peopledir/internal/application"
	"peopledir/internal/application/commands"
	"peopledir/internal/domain"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Manage saved filters",
	Long: `List, save, delete and apply named filter sets. At most five are kept;
saving a sixth drops the oldest.

Examples:
  peopledir-cli filters save "Remote sales" --filter department=Sales --filter location=Remote
  peopledir-cli filters apply <id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := requireState()
		if err != nil {
			return err
		}
		saved, err := state.SavedFilters()
		if err != nil {
			return err
		}
		if len(saved) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved filters")
			return nil
		}
		for _, f := range saved {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", f.ID, f.Name, describeFilter(f))
		}
		return nil
	},
}

func describeFilter(f domain.SavedFilter) string {
	keys := make([]string, 0, len(f.Filters))
	for k := range f.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+"="+f.Filters[k])
	}
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	return strings.Join(parts, " ")
}

var filtersSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the given filters under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := requireState()
		if err != nil {
			return err
		}
		name := strings.TrimSpace(args[0])
		if name == "" {
			return &application.ValidationError{Field: "name", Message: "name is required"}
		}
		filters, err := commands.ParseFilters(listFilters)
		if err != nil {
			return err
		}

		saved, err := state.SavedFilters()
		if err != nil {
			return err
		}
		f := domain.SavedFilter{
			ID:        uuid.NewString(),
			Name:      name,
			Filters:   filters,
			Search:    strings.TrimSpace(listSearch),
			CreatedAt: time.Now(),
		}
		if err := state.SaveSavedFilters(domain.AddSavedFilter(saved, f)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", f.Name, f.ID)
		return nil
	},
}

var filtersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := requireState()
		if err != nil {
			return err
		}
		saved, err := state.SavedFilters()
		if err != nil {
			return err
		}
		remaining := domain.RemoveSavedFilter(saved, args[0])
		if len(remaining) == len(saved) {
			return fmt.Errorf("saved filter %q: %w", args[0], application.ErrNotFound)
		}
		return state.SaveSavedFilters(remaining)
	},
}

var filtersApplyCmd = &cobra.Command{
	Use:   "apply <id>",
	Short: "List the first page matching a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireState(); err != nil {
			return err
		}
		engine := GetServices().NewDirectory()
		defer engine.Close()

		res, err := engine.ApplySavedFilter(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if res.Err != nil {
			return res.Err
		}

		snap := engine.Snapshot()
		printEmployees(cmd.OutOrStdout(), snap.Items)
		fmt.Fprintf(cmd.OutOrStdout(), "\npage %d of %d, %d employees\n",
			snap.Pagination.Page, snap.TotalPages, snap.Pagination.TotalCount)
		return nil
	},
}

func init() {
	filtersSaveCmd.Flags().StringVarP(&listSearch, "search", "s", "", "free-text search")
	filtersSaveCmd.Flags().StringArrayVarP(&listFilters, "filter", "f", nil, "filter as key=value")
	filtersCmd.AddCommand(filtersSaveCmd, filtersDeleteCmd, filtersApplyCmd)
	rootCmd.AddCommand(filtersCmd)
}
