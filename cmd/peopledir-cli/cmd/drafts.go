package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"peopledir/internal/application"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List unsubmitted form drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := requireState()
		if err != nil {
			return err
		}
		drafts, err := state.ListDrafts()
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No drafts")
			return nil
		}
		for _, d := range drafts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  saved %s\n", d.Key, d.SavedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var draftsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print the values of a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := requireState()
		if err != nil {
			return err
		}
		d, err := state.LoadDraft(args[0])
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("draft %q: %w", args[0], application.ErrNotFound)
		}

		var data struct {
			Step   int               `json:"step"`
			Values map[string]string `json:"values"`
		}
		if err := json.Unmarshal(d.Data, &data); err != nil {
			return fmt.Errorf("draft %q is unreadable: %w", args[0], err)
		}
		names := make([]string, 0, len(data.Values))
		for name := range data.Values {
			names = append(names, name)
		}
		sort.Strings(names)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (step %d, saved %s)\n", d.Key, data.Step+1, d.SavedAt.Local().Format("2006-01-02 15:04"))
		for _, name := range names {
			fmt.Fprintf(out, "  %s: %s\n", name, data.Values[name])
		}
		return nil
	},
}

var draftsDeleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := requireState()
		if err != nil {
			return err
		}
		return state.DeleteDraft(args[0])
	},
}

func init() {
	draftsCmd.AddCommand(draftsShowCmd, draftsDeleteCmd)
	rootCmd.AddCommand(draftsCmd)
}
