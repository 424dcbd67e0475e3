package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightportal/attrition/internal/cli"
	"github.com/insightportal/attrition/internal/client"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Inspect and reload model artifacts",
}

var artifactsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show artifact load status per schema variant",
	Long: `Show which artifact sets the server has loaded and their fingerprints.

Examples:
  insight artifacts status
  insight artifacts status --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		statuses, err := c.ArtifactStatus(ctx)
		if err != nil {
			return fmt.Errorf("failed to get artifact status: %w", err)
		}

		if !quiet {
			return cli.PrintArtifacts(statuses, cli.OutputFormat(format))
		}
		return nil
	},
}

var artifactsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload artifact sets from disk (admin)",
	Long: `Ask the server to re-read both artifact sets from disk.

Requires the admin API key.

Examples:
  insight artifacts reload --api-key admin-123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		if envCfg.APIKey == "" {
			return fmt.Errorf("an admin API key is required (--api-key or config file)")
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		result, err := c.ReloadArtifacts(ctx)
		if err != nil {
			return fmt.Errorf("failed to reload artifacts: %w", err)
		}

		if !quiet {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(artifactsCmd)
	artifactsCmd.AddCommand(artifactsStatusCmd)
	artifactsCmd.AddCommand(artifactsReloadCmd)
}
