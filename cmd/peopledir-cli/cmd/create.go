package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"peopledir/internal/application"
	"peopledir/internal/application/commands"
	"peopledir/internal/forms"
	"peopledir/internal/permissions"
)

var (
	createValues []string
	createResume bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an employee",
	Long: `Create an employee from field=value pairs. Values are saved as the
new-employee draft as they are set, so a rejected submission can be
resumed with --resume.

Fields: firstName, lastName, position, department, employmentType,
status, managerId, hireDate, salary, email, phone, location.

Examples:
  peopledir-cli create --set firstName=Ada --set lastName=Lovelace ...
  peopledir-cli create --resume --set location=London`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := GetServices()
		if err := s.Checker.Require(s.Role(), permissions.ActionEdit, permissions.ObjectEmployees); err != nil {
			return err
		}

		values := map[string]string{}
		for _, pair := range createValues {
			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				return &application.ValidationError{Field: "set", Message: fmt.Sprintf("expected field=value, got %q", pair)}
			}
			values[strings.TrimSpace(name)] = value
		}

		opts := []forms.Option{forms.WithFlags(s.Flags), forms.WithLogger(s.Log)}
		if s.State != nil {
			opts = append(opts, forms.WithDrafts(s.State, forms.DraftKeyNewEmployee))
		}
		form := forms.NewEmployeeForm(s.Client, opts...)
		if createResume {
			if savedAt, ok := form.RestoreDraft(); ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "resuming draft from %s\n", savedAt.Local().Format("2006-01-02 15:04"))
			}
		}

		created, err := commands.NewCreateEmployeeCommand(form, values).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", created.FullName(), created.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringArrayVar(&createValues, "set", nil, "field=value, repeatable")
	createCmd.Flags().BoolVar(&createResume, "resume", false, "start from the saved new-employee draft")
	rootCmd.AddCommand(createCmd)
}
