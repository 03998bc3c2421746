package cmd

import (
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML.",
		Long: "Print the configuration after applying the config file, the " +
			".env file and the PARKGATE_* environment variables.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				warn("Warning: %v\n", err)
			}

			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}
