// Package commands implements the dbpack command line.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/meigma/dbpack/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
}

var globals globalFlags

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dbpack",
		Short: "dbpack - pack mod source trees into containers",
		Long: `dbpack packs a project folder into a single container file.

Each top-level folder of the project is a group; every item inside it is
either converted by a content encoder or copied verbatim under a key derived
from its name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&globals.configPath, "config", "",
		"project file (default: $"+config.EnvVar+")")
	cmd.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newPackCmd(), newInspectCmd(), newVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// newLogger returns the logger for library diagnostics, writing to w.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads the project file named by --config, falling back to
// the environment. ok is false when neither names one.
func loadConfig() (cfg *config.Config, ok bool, err error) {
	switch {
	case globals.configPath != "":
		cfg, err = config.LoadFile(globals.configPath)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}
