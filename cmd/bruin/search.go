package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bruinnotes/bruin/internal/ui"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search across note titles and bodies",
	Long: `Search runs an FTS5 query over every note's title and body and
returns the best matches ranked by relevance, each with a snippet of the
matching text.

Examples:
  bruin search "project kickoff"
  bruin search database --limit 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")

		results, err := app.Catalog.Search(rootCtx, query, limit)
		if err != nil {
			return err
		}
		if app.JSONOutput {
			outputJSON(results)
			return nil
		}
		if len(results) == 0 {
			fmt.Printf("No notes found matching %q\n", query)
			return nil
		}
		fmt.Printf("Found %d note(s) matching %q:\n\n", len(results), query)
		for _, r := range results {
			fmt.Printf("%s  %s\n  %s\n\n", ui.RenderAccent(r.ID), r.Title, ui.RenderMuted(r.Snippet))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntP("limit", "n", 20, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
