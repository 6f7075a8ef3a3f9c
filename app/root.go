// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "corpsite",
	Short: "Corpsite serves the corporate website and its back-office",
	Long: `Corpsite serves the public tender and contract catalogs with their
captcha gated document requests, and the back-office where roles and
their permission matrices are managed.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Directory holding main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
