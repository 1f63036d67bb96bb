// Package config implements the config command.
package config

import (
	"github.com/spf13/cobra"

	"github.com/trailtracker/trailtracker/internal/conf"
)

// Command creates a command that prints the effective configuration.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		showSecrets bool
		defaults    bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after defaults, the config file and TRAILTRACKER_* environment overrides are applied.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := cmd.OutOrStdout().Write(conf.DefaultConfig())
				return err
			}

			data, err := settings.YAML(!showSecrets)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print passwords and DSNs unmasked")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Print the embedded default configuration instead")

	return cmd
}
