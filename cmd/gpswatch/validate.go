package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dukat-Gul/gpswatch/config"
)

// validateCmd validates a config file without touching the daemon.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a gpswatch configuration file without connecting to gpsd.

This command parses the YAML, expands environment variables, and
validates all fields. It's useful for CI/CD pipelines or pre-deployment
checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  gpswatch validate -c config.yaml
  gpswatch validate --config /etc/gpswatch/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Address:       %s\n", cfg.Address)
	fmt.Printf("  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Printf("  Dial timeout:  %s\n", cfg.DialTimeout.Duration())
	fmt.Printf("  Read timeout:  %s\n", cfg.ReadTimeout.Duration())
	fmt.Printf("  Foreground:    %v\n", cfg.Foreground)
	fmt.Printf("  Log level:     %s\n", cfg.LogLevel)

	return nil
}
