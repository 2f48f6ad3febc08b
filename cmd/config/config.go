// Package config implements the configuration dump subcommand.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/snore-go/internal/conf"
)

// Command creates a new command printing the effective configuration, the
// merged result of defaults, config file, environment and flags.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := settings.DumpYAML()
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}
