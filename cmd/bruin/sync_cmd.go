package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bruinnotes/bruin/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full sweep between the catalog and the vault now",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Sync.TriggerSync(rootCtx); err != nil {
			return err
		}
		st := app.Sync.Status()
		if app.JSONOutput {
			outputJSON(st)
			return nil
		}
		fmt.Printf("%s %d file(s) as of %s\n", ui.RenderPass("Synced"), st.FilesSynced, st.LastSweep.Format("15:04:05"))
		if len(st.RetryQueue) > 0 {
			fmt.Printf("%s %d file(s) left in the retry queue\n", ui.RenderWarn("Warning:"), len(st.RetryQueue))
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := app.Sync.Status()
		if app.JSONOutput {
			outputJSON(st)
			return nil
		}
		avail := app.Sync.VaultAvailability()
		fmt.Printf("vault:       %s (writable=%v)\n", app.Vault.Dir(), avail.Writable)
		fmt.Printf("syncing:     %v\n", st.Syncing)
		fmt.Printf("last sweep:  %s\n", st.LastSweep.Format("2006-01-02 15:04:05"))
		if st.Error != "" {
			fmt.Printf("last error:  %s\n", ui.RenderWarn(st.Error))
		}
		if len(st.RetryQueue) > 0 {
			fmt.Printf("retry queue: %d file(s)\n", len(st.RetryQueue))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}
