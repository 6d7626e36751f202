// Package cli provides the command-line interface for rowmatch.
package cli

import (
	"context"
	"fmt"
	"os"

	"rowmatch/internal/config"
	"rowmatch/internal/logger"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

type configKey struct{}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var (
		cfgFile string
		verbose bool
	)

	rootCmd := &cobra.Command{
		Use:   "rowmatch",
		Short: "Copy spreadsheet rows whose key appears in a lookup sheet",
		Long: `rowmatch reads one or more source workbooks, keeps the rows whose key column
value appears in a lookup workbook column, and writes them to a new workbook.

Merged cells are resolved and carried over, date cells are kept as real dates,
and the output file name gets a timestamp so earlier results are never
overwritten.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			_, statErr := os.Stat(cfgFile)
			cfg, err := config.LoadConfig(cfgFile)
			if err != nil {
				return err
			}

			// the log file location comes from the config, so config
			// events are logged once the logger is up
			if err := logger.Setup(cfg.Log.Directory, verbose || cfg.Log.Verbose); err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}
			if os.IsNotExist(statErr) {
				logger.Info("Created default config file", "path", cfgFile)
			} else {
				logger.Info("Loaded configuration", "path", cfgFile)
			}
			logger.Info("Command started", "command", cmd.CommandPath(), "version", Version)

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file, created with defaults when missing")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug level logging")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewWizardCommand())
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewScanCommand())
	rootCmd.AddCommand(NewSuggestCommand())
	rootCmd.AddCommand(NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	defer logger.Close()

	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// getConfig retrieves the config loaded by the root command.
func getConfig(cmd *cobra.Command) *config.Config {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
			return c
		}
	}
	return config.Default()
}
