package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"peopledir/internal/application/commands"
)

var (
	treeDepth      int
	treeDepartment string
)

var treeCmd = &cobra.Command{
	Use:   "tree [employee-id]",
	Short: "Display the reporting tree under an employee",
	Long: `Display the org chart below an employee, the given employee counting
as the first level. Without an ID the configured hierarchy.root_id is used.

Examples:
  peopledir-cli tree 1
  peopledir-cli tree 1 --depth 5 --department Engineering`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := GetServices()
		rootID := s.Config.Hierarchy.RootID
		if len(args) == 1 {
			rootID = args[0]
		}

		engine := s.NewHierarchy()
		defer engine.Close()

		nodes, err := commands.NewOrgChartCommand(engine, rootID, treeDepth, treeDepartment).Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if m := engine.Manager(); m != nil {
			fmt.Fprintf(out, "(reports to %s %s)\n", m.ID, m.FullName())
		}
		for _, n := range nodes {
			indent := strings.Repeat("  ", n.Level)
			suffix := ""
			switch {
			case !n.Loaded:
				suffix = " …"
			case n.ReportCount > 0:
				suffix = fmt.Sprintf(" [%d]", n.ReportCount)
			}
			fmt.Fprintf(out, "%s%s %s  %s%s\n", indent, n.ID, n.FullName(), n.Position, suffix)
		}
		stats := engine.Stats()
		fmt.Fprintf(out, "\n%d employees, %d levels loaded\n", stats.Loaded, stats.Depth)
		return nil
	},
}

func init() {
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 0, "levels to load, root included (default from config)")
	treeCmd.Flags().StringVar(&treeDepartment, "department", "", "only show employees in this department")
	rootCmd.AddCommand(treeCmd)
}
