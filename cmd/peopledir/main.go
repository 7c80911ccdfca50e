package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peopledir/internal/adapters/editor"
	"peopledir/internal/adapters/tui"
	"peopledir/internal/app"
	"peopledir/internal/application/commands"
	"peopledir/internal/config"
	"peopledir/internal/domain"
	"peopledir/internal/forms"
	"peopledir/internal/logging"
)

func main() {
	var configPath, apiURL, role string

	rootCmd := &cobra.Command{
		Use:           "peopledir",
		Short:         "Terminal UI for the employee directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, apiURL, role)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "config file (default "+config.Path()+")")
	rootCmd.Flags().StringVar(&apiURL, "api-url", "", "backend base URL")
	rootCmd.Flags().StringVar(&role, "role", "", "permission role")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, apiURL, role string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if role != "" {
		cfg.Permissions.Role = role
	}

	log, err := logging.ForTUI(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	services, err := app.Open(cfg, log, nil)
	if err != nil {
		return err
	}
	defer services.Close()

	a := tui.NewApp(tui.Deps{
		Directory:    services.NewDirectory(),
		Hierarchy:    services.NewHierarchy(),
		NewForm:      newForm(services),
		Export:       exportFunc(services),
		ExportFields: cfg.Export.Fields,
		Opener:       editor.NewOpener(),
		Role:         services.Role(),
		Flags:        services.Flags,
		RootID:       domain.EmployeeID(cfg.Hierarchy.RootID),
		Depth:        cfg.Hierarchy.DefaultDepth,
	})
	defer a.Close()

	p := tea.NewProgram(a, tea.WithAltScreen())
	a.Bind(p)

	log.Info("starting", zap.String("api", cfg.API.BaseURL), zap.String("role", services.Role()))
	_, err = p.Run()
	return err
}

func newForm(s *app.Services) func() *forms.Form {
	return func() *forms.Form {
		opts := []forms.Option{
			forms.WithFlags(s.Flags),
			forms.WithLogger(s.Log),
		}
		if s.State != nil {
			opts = append(opts, forms.WithDrafts(s.State, forms.DraftKeyNewEmployee))
		}
		return forms.NewEmployeeForm(s.Client, opts...)
	}
}

func exportFunc(s *app.Services) func(context.Context, domain.Query, []string) (commands.ExportResult, error) {
	return func(ctx context.Context, q domain.Query, fields []string) (commands.ExportResult, error) {
		sink, err := s.Sink(ctx)
		if err != nil {
			return commands.ExportResult{}, err
		}
		return commands.NewExportCommand(s.Client, sink, s.Checker, s.Role(), q, fields).Execute(ctx)
	}
}
