package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bruinnotes/bruin/internal/ui"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every tag with its note count",
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, err := app.Catalog.ListTags(rootCtx)
		if err != nil {
			return err
		}
		if app.JSONOutput {
			outputJSON(tags)
			return nil
		}
		if len(tags) == 0 {
			fmt.Println("no tags yet")
			return nil
		}
		for _, t := range tags {
			pin := ""
			if t.Pinned {
				pin = " *"
			}
			fmt.Printf("%-30s %4d%s\n", ui.RenderAccent(t.Name), t.NoteCount, pin)
		}
		return nil
	},
}

// tagRenameCmd renames a tag, rewriting every descendant tag's prefix and
// every affected note's front matter so the vault stays consistent with
// the catalog rather than waiting for the next sweep to notice drift.
var tagRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a tag and all of its descendants",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		affected, err := app.Catalog.RenameTag(rootCtx, args[0], args[1])
		if err != nil {
			return err
		}
		for _, id := range affected {
			if err := app.Reconciler.ExportNote(rootCtx, id); err != nil {
				return fmt.Errorf("pushing renamed tag to vault for %s: %w", id, err)
			}
		}
		if app.JSONOutput {
			outputJSON(map[string]any{"renamed": args[0] + " -> " + args[1], "notes_updated": affected})
			return nil
		}
		fmt.Printf("%s %s to %s across %d note(s)\n", ui.RenderPass("Renamed"), args[0], args[1], len(affected))
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a tag, leaving notes in place with their remaining tags",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Catalog.DeleteTag(rootCtx, args[0]); err != nil {
			return err
		}
		fmt.Printf("%s tag %s\n", ui.RenderWarn("Deleted"), args[0])
		return nil
	},
}

func init() {
	tagCmd.AddCommand(tagListCmd, tagRenameCmd, tagDeleteCmd)
	rootCmd.AddCommand(tagCmd)
}
