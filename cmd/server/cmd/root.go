package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"eventmanagement/config"
)

var (
	// Global flags
	logLevel string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = newRootCommand()
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Event management backend",
		Long: `Event management backend: create and maintain events, register users for them,
send registration confirmations and export event summaries as PDF.

Running the binary without a subcommand starts the HTTP server.`,
		SilenceUsage: true,
		// Run the serve command by default if no subcommand is specified
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error) (default: LOG_LEVEL or info)")
	root.Flags().IntVar(&serverPort, "port", 0, "server port (default: PORT or 8080)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newUsersCommand())
	return root
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the environment configuration and builds the logger, honouring --log-level.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
