// Package cli implements the sheetorders command line.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/sheetorders/internal/config"
	"github.com/JonMunkholm/sheetorders/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	EnvFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// DefaultEnvFile is loaded when present.
const DefaultEnvFile = ".env"

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sheetorders",
		Short: "Stage orders from a spreadsheet",
		Long: `Read order rows from a worksheet, validate them, stage new orders,
and mark every examined row with the run timestamp.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return loadEnvFile(opts.EnvFile, cmd.Flags().Changed("env-file"))
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", DefaultEnvFile, "dotenv file to load before reading the environment")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// loadEnvFile applies a dotenv file over the environment. A missing default
// file is ignored; a missing explicit file is an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	// Overload: values in the file win over the existing environment
	if err := godotenv.Overload(path); err != nil {
		return WrapExitError(ExitCommandError, "load env file", err)
	}
	return nil
}

// setup loads the configuration and configures logging.
func (o *RootOptions) setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}

	level := cfg.Logging.Level
	if o.Verbose {
		level = "debug"
	}
	logging.Setup(level, cfg.Logging.Format)

	slog.Debug("configuration loaded", "config", cfg.String())
	return cfg, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
