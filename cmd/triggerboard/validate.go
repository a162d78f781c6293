package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jpalmerr/triggerboard"
	"github.com/jpalmerr/triggerboard/config"
	"github.com/spf13/cobra"
)

var (
	green = color.New(color.FgGreen, color.Bold).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a TriggerBoard configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  triggerboard validate -c config.yaml
  triggerboard validate -c config.yaml --env-file .env`,
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

	src, err := config.BuildSource(cfg.Source)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	columns := triggerboard.DefaultColumns()
	if len(cfg.Columns) > 0 {
		columns = columns[:0]
		for _, c := range cfg.Columns {
			columns = append(columns, triggerboard.Column{HeaderName: c.Header, Field: c.Field})
		}
	}
	fields := make([]string, len(columns))
	for i, c := range columns {
		fields[i] = c.Field
	}

	fmt.Println(green("Config is valid!"))
	fmt.Printf("  %s %d\n", gray("Port:         "), cfg.Port)
	fmt.Printf("  %s %s\n", gray("Poll interval:"), cfg.PollInterval.Duration())
	fmt.Printf("  %s %s\n", gray("Source:       "), src.RequestURL())
	fmt.Printf("  %s %v\n", gray("Columns:      "), fields)

	return nil
}
