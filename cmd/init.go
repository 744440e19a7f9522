package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/selfassign/lint"
)

// initCmd: selfassign init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new linter configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = lint.DefaultConfigFile
		}
		if err := lint.WriteConfig(path, lint.DefaultConfig()); err != nil {
			return fmt.Errorf("error initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", path)
		return nil
	},
}
