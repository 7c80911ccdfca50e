package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"peopledir/internal/app"
	"peopledir/internal/config"
	"peopledir/internal/logging"
)

var (
	configPath string
	apiURL     string
	role       string
	logLevel   string

	services *app.Services
)

var rootCmd = &cobra.Command{
	Use:   "peopledir-cli",
	Short: "CLI for the employee directory",
	Long: `peopledir-cli is a command-line interface for an employee-management
backend.

It lists and searches the directory, prints org charts, exports the
filtered directory and manages locally saved search history, filters
and form drafts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if services == nil {
			return nil
		}
		_ = services.Log.Sync()
		return services.Close()
	},
}

func setup() error {
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
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	s, err := app.Open(cfg, log, nil)
	if err != nil {
		return err
	}
	services = s
	log.Debug("configured", zap.String("api", cfg.API.BaseURL), zap.String("role", cfg.Permissions.Role))
	return nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.Path(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&role, "role", "", "permission role (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

// GetServices returns the initialized services
func GetServices() *app.Services {
	return services
}
