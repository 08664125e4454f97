// Package main is the entry point for the gpswatch CLI.
//
// gpswatch can be used either as a library (SDK) or as a standalone
// binary. The binary is a thin consumer of the public API, intended for
// bring-up and smoke-testing a gpsd installation.
//
// Usage:
//
//	gpswatch watch                    # Print cached GPS state until interrupted
//	gpswatch watch -c config.yaml     # Same, with a config file
//	gpswatch validate -c config.yaml  # Validate configuration
//	gpswatch version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "gpswatch",
	Short: "Cached GPS receiver state over gpsd",
	Long: `gpswatch polls a local gpsd daemon in the background, caches the most
recent sentence of every message class, and prints the derived position
and drift-corrected time.

Quick start:
  1. Make sure gpsd is installed and running
  2. Run: gpswatch watch
  3. Wait for a fix; position lines appear every few seconds

Example config:
  address: localhost:2947
  poll_interval: 500ms
  log_level: info`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this gpswatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gpswatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
