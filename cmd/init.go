package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/scopelint/lint"
)

// initCmd: scopelint init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new linter configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = lint.DefaultConfigFile
		}
		if err := lint.WriteConfig(path, lint.DefaultConfig(nil)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", path)
		return nil
	},
}
