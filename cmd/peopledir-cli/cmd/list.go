package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"peopledir/internal/application/commands"
	"peopledir/internal/domain"
)

var (
	listPage      int
	listPageSize  int
	listSearch    string
	listFilters   []string
	listSortBy    string
	listSortOrder string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of the directory",
	Long: `List employees, one page at a time, with optional filters and sorting.

Examples:
  peopledir-cli list
  peopledir-cli list --page 2 --page-size 50
  peopledir-cli list --filter department=Engineering --filter status=active
  peopledir-cli list --search ada --sort lastName --order desc`,
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := listQuery()
		if err != nil {
			return err
		}
		res, err := commands.NewListEmployeesCommand(GetServices().Client, q).Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printEmployees(out, res.Items)
		p := domain.Pagination{Page: q.Page, PageSize: q.PageSize, TotalCount: res.TotalCount}
		fmt.Fprintf(out, "\npage %d of %d, %d employees\n", q.Page, p.TotalPages(), res.TotalCount)
		return nil
	},
}

func listQuery() (domain.Query, error) {
	filters, err := commands.ParseFilters(listFilters)
	if err != nil {
		return domain.Query{}, err
	}
	cfg := GetServices().Config
	q := domain.Query{
		Page:      listPage,
		PageSize:  listPageSize,
		Search:    listSearch,
		SortField: listSortBy,
		SortOrder: domain.SortOrder(listSortOrder),
		Filters:   filters,
	}
	if q.PageSize == 0 {
		q.PageSize = cfg.Directory.PageSize
	}
	if q.SortField == "" {
		q.SortField = cfg.Directory.SortBy
	}
	if q.SortOrder == "" && q.SortField != "" {
		q.SortOrder = domain.SortOrder(cfg.Directory.SortOrder)
	}
	return q, nil
}

func printEmployees(w io.Writer, employees []domain.Employee) {
	if len(employees) == 0 {
		fmt.Fprintln(w, "No employees found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPOSITION\tDEPARTMENT\tLOCATION\tSTATUS")
	for _, e := range employees {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.FullName(), e.Email, e.Position, e.Department, e.Location, e.Status)
	}
	tw.Flush()
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&listSearch, "search", "s", "", "free-text search")
	cmd.Flags().StringArrayVarP(&listFilters, "filter", "f", nil, "filter as key=value (department, location, status, employment_type)")
	cmd.Flags().StringVar(&listSortBy, "sort", "", "field to sort by")
	cmd.Flags().StringVar(&listSortOrder, "order", "", "sort order: asc or desc")
}

func init() {
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "rows per page (default from config)")
	addQueryFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}
