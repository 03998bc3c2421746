// Package cmd provides the command-line interface of parkgate.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/parkgate/config"
)

// ErrExpectationsFailed is returned by run when a script expectation did not
// hold.
var ErrExpectationsFailed = errors.New("script expectations failed")

// NewRootCmd creates the parkgate command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "parkgate",
		Short: "Simulate a code-controlled parking gate.",
		Long: `parkgate simulates the controller of a parking gate: a vehicle ` +
			`arrives, the driver enters a two digit code and the gate opens ` +
			`when the code matches. Scripts drive the gate inputs and check ` +
			`its outputs cycle by cycle.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "",
		"TOML configuration file")
	rootCmd.PersistentFlags().String("env-file", ".env",
		"file with PARKGATE_* variables, skipped when missing")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newScenariosCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newReportCmd())

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	err := NewRootCmd().Execute()
	if err != nil {
		return 1
	}

	return 0
}

// loadConfig resolves the configuration from the defaults, the config file,
// the .env file and the environment, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		var err error

		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}

	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return cfg, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
