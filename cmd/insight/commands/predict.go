package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/insightportal/attrition/internal/cli"
	"github.com/insightportal/attrition/internal/client"
)

var predictFile string

var predictCmd = &cobra.Command{
	Use:   "predict <employee|customer>",
	Short: "Score a record against the churn model",
	Long: `Score one record against the employee or customer churn model.

The record is read from a YAML or JSON file given with --file.

Examples:
  insight predict employee --file record.yaml
  insight predict customer --file customer.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		variant := args[0]
		if variant != "employee" && variant != "customer" {
			return fmt.Errorf("variant must be 'employee' or 'customer', got '%s'", variant)
		}
		if predictFile == "" {
			return fmt.Errorf("--file is required")
		}

		record, err := readRecordFile(predictFile)
		if err != nil {
			return err
		}

		// Get environment configuration
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		// Create API client
		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		pred, err := c.Predict(ctx, variant, record)
		if err != nil {
			return fmt.Errorf("prediction failed: %w", err)
		}

		if !quiet {
			return cli.PrintPrediction(pred, cli.OutputFormat(format))
		}
		return nil
	},
}

// readRecordFile parses a YAML or JSON record file into a raw record map.
func readRecordFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var record map[string]any
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON record: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("failed to parse YAML record: %w", err)
		}
	}
	return record, nil
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVar(&predictFile, "file", "", "Path to the record file (YAML or JSON)")
}
