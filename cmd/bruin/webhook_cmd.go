package main

import (
	"fmt"

	"github.com/spf13/cobra"

	bruinconfig "github.com/bruinnotes/bruin/internal/config"
	"github.com/bruinnotes/bruin/internal/ui"
)

// webhookCmd groups commands for inspecting and exercising the
// configured webhook endpoint, separate from the automatic dispatch
// note mutations already trigger.
var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Inspect and test the configured webhook endpoint",
}

var webhookTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a synthetic event to the configured webhook URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		url := bruinconfig.GetString("webhook.url")
		if url == "" {
			return fmt.Errorf("no webhook.url configured")
		}
		app.Webhook.Send(webhookPayload("test", "note-test", "synthetic test event"))
		fmt.Printf("%s test event to %s\n", ui.RenderPass("Sent"), url)
		return nil
	},
}

func init() {
	webhookCmd.AddCommand(webhookTestCmd)
	rootCmd.AddCommand(webhookCmd)
}
