package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightportal/attrition/internal/cli"
	"github.com/insightportal/attrition/internal/client"
)

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Ask the assistant one question",
	Long: `Send one question to the retrieval-augmented assistant.

Examples:
  insight chat "which department has the highest churn risk?"
  insight chat "summarize the remote work policy"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")

		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		ctx := context.Background()
		reply, err := c.Chat(ctx, message)
		if err != nil {
			return fmt.Errorf("chat request failed: %w", err)
		}

		if !quiet {
			fmt.Println(reply.Response)
			if len(reply.Sources) > 0 {
				fmt.Println("\nSources:")
				for _, src := range reply.Sources {
					fmt.Printf("  - %s\n", src.Source)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
