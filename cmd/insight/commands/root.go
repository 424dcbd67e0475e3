package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	env     string
	format  string
	quiet   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "insight",
	Short: "CLI tool for the attrition scoring service",
	Long: `Insight is a command-line tool for the attrition scoring service.

It scores employee and customer records, browses the roster, inspects
model artifacts and talks to the chat assistant.

Examples:
  insight predict employee --file record.yaml
  insight predict customer --file customer.json --format json
  insight employees list --risk-level "High Risk"
  insight artifacts status
  insight chat "which department has the highest churn risk?"`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the attrition API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for admin operations")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Environment (dev, staging, prod)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
}
