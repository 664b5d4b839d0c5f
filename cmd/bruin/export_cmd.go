package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bruinnotes/bruin/internal/catalog"
	"github.com/bruinnotes/bruin/internal/ui"
)

// exportCmd renders a single note, or the whole vault, to a form meant
// for sharing outside bruin: a terminal-styled preview, a standalone
// HTML document, or flattened markdown.
var exportCmd = &cobra.Command{
	Use:   "export [note-id]",
	Short: "Render a note or the whole vault to html, markdown, or the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")
		renderer := newDefaultRenderer()
		ef := formatFlagToExportFormat(format)

		var content string
		if len(args) == 1 {
			n, err := app.Catalog.GetNote(rootCtx, args[0])
			if err != nil {
				return err
			}
			content, err = renderer.Note(n, ef)
			if err != nil {
				return err
			}
		} else {
			notes, err := app.Catalog.ListNotes(rootCtx, catalog.ListFilter{})
			if err != nil {
				return err
			}
			content, err = renderer.Vault(notes, ef)
			if err != nil {
				return err
			}
		}

		if out == "" {
			fmt.Print(content)
			return nil
		}
		if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing export to %s: %w", out, err)
		}
		fmt.Printf("%s %s\n", ui.RenderPass("Wrote"), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "markdown", "render format: terminal, html, markdown")
	exportCmd.Flags().String("out", "", "write the rendered output to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
