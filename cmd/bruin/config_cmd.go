package main

import (
	"fmt"

	"github.com/spf13/cobra"

	bruinconfig "github.com/bruinnotes/bruin/internal/config"
	"github.com/bruinnotes/bruin/internal/ui"
)

// configKeys lists every key config.Initialize registers a default for,
// in the order they're documented there.
var configKeys = []string{
	"vault",
	"legacy-vault",
	"control-dir",
	"catalog-path",
	"no-watcher",
	"actor",
	"sync.tick-interval",
	"sync.debounce-after",
	"sync.max-retries",
	"graph.depth-limit",
	"graph.node-cap",
	"webhook.url",
	"webhook.secret",
	"webhook.max-retries",
	"log.dir",
	"log.max-size-mb",
	"log.max-backups",
	"daemon.sweep-interval",
	"daemon.log-path",
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and override configuration values",
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := bruinconfig.GetString(args[0])
		if app.JSONOutput {
			outputJSON(map[string]string{args[0]: v})
			return nil
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Override a configuration value for this process",
	Long: `Set overrides a configuration value in memory for the lifetime of
this command invocation; it does not persist to the config file. To make
a change stick, edit .bruin/config.yaml directly.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bruinconfig.Set(args[0], args[1])
		fmt.Printf("%s = %s %s\n", args[0], args[1], ui.RenderMuted("(this invocation only)"))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every known configuration key and its current value",
	RunE: func(cmd *cobra.Command, args []string) error {
		if app.JSONOutput {
			out := make(map[string]string, len(configKeys))
			for _, k := range configKeys {
				out[k] = bruinconfig.GetString(k)
			}
			outputJSON(out)
			return nil
		}
		for _, k := range configKeys {
			fmt.Printf("%-24s %s\n", k, bruinconfig.GetString(k))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd)
	rootCmd.AddCommand(configCmd)
}
