package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peopledir/internal/domain"
	"peopledir/internal/ports"
)

var errNoState = errors.New("client state database is unavailable")

func requireState() (ports.ClientState, error) {
	s := GetServices()
	if s.State == nil {
		return nil, errNoState
	}
	return s.State, nil
}

// rememberSearch adds term to the persisted history. Failures are logged
// and otherwise ignored.
func rememberSearch(term string) {
	s := GetServices()
	if s.State == nil {
		return
	}
	history, err := s.State.SearchHistory()
	if err != nil {
		s.Log.Warn("search history unavailable", zap.Error(err))
	}
	if err := s.State.SaveSearchHistory(domain.AddToHistory(history, term)); err != nil {
		s.Log.Warn("saving search history", zap.Error(err))
	}
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := requireState()
		if err != nil {
			return err
		}
		history, err := state.SearchHistory()
		if err != nil {
			return err
		}
		if len(history) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recent searches")
			return nil
		}
		for i, term := range history {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, term)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every recent search",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := requireState()
		if err != nil {
			return err
		}
		if err := state.SaveSearchHistory(nil); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Search history cleared")
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
