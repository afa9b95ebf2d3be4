// Package commands implements the rhxdctl administrative CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "rhxdctl",
	Short: "rhxdctl - rhxd account administration",
	Long: `rhxdctl manages the named-account store an rhxd server authenticates
against: adding and removing accounts, resetting passwords, and granting
or revoking access privileges.

Use "rhxdctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "rhxd config file (default: $XDG_CONFIG_HOME/rhxd/config.yaml)")

	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(configCmd)
}

// GetConfigFile returns the config file path from the global --config flag.
func GetConfigFile() string {
	return cfgFile
}
