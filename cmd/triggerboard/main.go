// Package main is the entry point for the triggerboard CLI.
//
// TriggerBoard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	triggerboard serve -c config.yaml    # Start the web dashboard
//	triggerboard watch -c config.yaml    # Show the events in the terminal
//	triggerboard validate -c config.yaml # Validate configuration
//	triggerboard version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "triggerboard",
	Short: "A live dashboard for triggered events",
	Long: `TriggerBoard shows the latest triggered events of a trigger service.

It polls the service's fetch_events endpoint at a fixed interval and shows
the returned records in a web UI (Server-Sent Events for live updates) or
in the terminal.

Quick start:
  1. Run the trigger service on localhost:8989
  2. Run: triggerboard serve
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  poll_interval: 5s
  source:
    url: http://localhost:8989/triggered_events/fetch_events
    filters:
      status: active`,
	PersistentPreRunE: loadEnvFile,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// loadEnvFile populates the environment from --env-file before any config
// is read, so ${VAR} references in the config can use it.
func loadEnvFile(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this triggerboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "triggerboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "load environment variables from a .env file")
	rootCmd.AddCommand(versionCmd)
}
