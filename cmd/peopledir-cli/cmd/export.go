package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"peopledir/internal/application/commands"
)

var exportFields string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered directory as CSV",
	Long: `Export every employee matching the filters as CSV and store the file in
the configured export location (a local directory or an S3 bucket).

Requires a role with the export permission.

Examples:
  peopledir-cli export --filter department=Sales
  peopledir-cli export --fields id,email --role hr_manager`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := GetServices()
		q, err := listQuery()
		if err != nil {
			return err
		}
		sink, err := s.Sink(cmd.Context())
		if err != nil {
			return err
		}

		fields := s.Config.Export.Fields
		if exportFields != "" {
			fields = nil
			for _, f := range strings.Split(exportFields, ",") {
				if f = strings.TrimSpace(f); f != "" {
					fields = append(fields, f)
				}
			}
		}

		res, err := commands.NewExportCommand(s.Client, sink, s.Checker, s.Role(), q, fields).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records (%s) to %s\n",
			res.TotalRecords, strings.Join(res.Fields, ", "), res.Location)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFields, "fields", "", "comma-separated columns (default from config)")
	addQueryFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
