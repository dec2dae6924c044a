// Powerpack is a terminal administration console for a Looker-style
// analytics platform.
//
// It lists users and lets the operator edit their login e-mail inline,
// lists and runs delivery schedules, and signs SSO embed URLs. An optional
// host bridge lets an embedding shell drive the console's active page.
//
// Usage:
//
//	powerpack [command] [flags]
//
// Running without arguments launches the interactive console.
// See 'powerpack --help' for available commands.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/muurk/powerpack/internal/config"
	"github.com/muurk/powerpack/internal/logging"
	"github.com/muurk/powerpack/internal/version"
)

// Global flags
var (
	instanceName string
	baseURL      string
	clientID     string
	logLevel     string
	bridgeAddr   string
	advertise    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "powerpack",
	Short: "Admin Power Pack console",
	Long: `A terminal administration console for your analytics platform instance.

Browse users and edit their login e-mail inline, list and run delivery
schedules, and sign SSO embed URLs.

If no command is specified, the interactive console will launch automatically.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The console owns the terminal, so its logs go to a file
		if !cmd.HasParent() {
			return initFileLogging()
		}
		return logging.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runConsole,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&instanceName, "instance", "i", "", "Configured instance name (default: preferences.default_instance)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Instance API base URL (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "API client ID (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $"+logging.LogLevelEnvVar+" or silent)")

	rootCmd.Flags().StringVar(&bridgeAddr, "bridge", "", "Host bridge listen address, empty disables (default: preferences.bridge_addr)")
	rootCmd.Flags().BoolVar(&advertise, "advertise", false, "Advertise the host bridge over mDNS")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "powerpack %s\n", version.Full())
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", info.GoVersion, info.Platform)
	},
}

func initFileLogging() error {
	dir, err := config.GetConfigDir()
	if err != nil {
		return logging.Initialize(logLevel)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return logging.InitializeWithOutput(logLevel, filepath.Join(dir, "powerpack.log"))
}
