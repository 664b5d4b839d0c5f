package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON        bool
	flagVault       string
	flagControlDir  string
	flagCatalogPath string
	flagActor       string

	rootCtx context.Context
)

var rootCmd = &cobra.Command{
	Use:   "bruin",
	Short: "A local-first note store reconciled between a catalog and a markdown vault",
	Long: `bruin keeps a structured catalog (tags, wiki-links, full-text search,
an editorial workflow) in sync with a directory of plain markdown files
with YAML front matter, so the files stay the source of truth a human or
another tool can edit directly.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		ctx, err := newAppContext(context.Background())
		if err != nil {
			return err
		}
		app = ctx
		rootCtx = context.Background()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			app.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&flagVault, "vault", "", "vault directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagControlDir, "control-dir", "", "control directory for the sync trigger file")
	rootCmd.PersistentFlags().StringVar(&flagCatalogPath, "catalog", "", "path to the catalog database file")
	rootCmd.PersistentFlags().StringVar(&flagActor, "actor", "", "actor name recorded on activity-log entries")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bruin: %v\n", err)
		os.Exit(1)
	}
}
