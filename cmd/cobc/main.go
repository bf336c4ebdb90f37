// Package main implements cobc, the unit-script compiler CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/unit-scripts/cobc/pkg/ui"
)

var version = "0.1.0-alpha"

func main() {
	rootCmd := &cobra.Command{
		Use:          "cobc",
		Short:        "cobc - a unit-script compiler",
		Version:      version,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintCobcHelp(version)
		},
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		ui.PrintCobcHelp(version)
	})

	rootCmd.SetHelpCommand(&cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintCobcHelp(version)
		},
	})

	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(decodeCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cobc",
		Run: func(cmd *cobra.Command, args []string) {
			ui.PrintVersionInfo(version)
		},
	}
}
