// Indigo-cli is a command-line client for INDIGO astronomical servers.
//
// It provides server discovery, a live property monitor, and direct
// property commands for devices attached to INDIGO servers. Communication
// uses the JSON protocol over WebSocket.
//
// Usage:
//
//	indigo-cli [command] [flags]
//
// Running without arguments launches the live monitor.
// See 'indigo-cli --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goastro/indigo/internal/logging"
	"github.com/goastro/indigo/internal/version"
)

func main() {
	logging.InitializeFromEnv()
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "indigo-cli",
	Short: "INDIGO Server Client",
	Long: `A command-line client for INDIGO astronomical servers.

Provides server discovery, a live property monitor, and direct
get/set commands for device properties.

If no command is specified, the live monitor will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the monitor when no subcommand provided
		return runWatch(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("indigo-cli %s (commit: %s)\n", version.Version, version.Commit)
	},
}
