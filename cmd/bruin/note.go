package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bruinnotes/bruin/internal/catalog"
	"github.com/bruinnotes/bruin/internal/ids"
	"github.com/bruinnotes/bruin/internal/tagextract"
	"github.com/bruinnotes/bruin/internal/ui"
	"github.com/bruinnotes/bruin/internal/vault"
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new note",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")
		if len(args) == 1 {
			title = args[0]
		}
		if title == "" {
			return runCreateForm(cmd.Context())
		}
		return createNote(title, body)
	},
}

func createNote(title, body string) error {
	now := time.Now().UTC()
	id := ids.New()
	tags := tagextract.Extract(body)

	vn := vault.Note{ID: id, Title: title, Body: body, Tags: tags, CreatedAt: now, UpdatedAt: now}
	if err := app.Vault.Write(vn); err != nil {
		return fmt.Errorf("writing note to vault: %w", err)
	}

	action, _, err := app.Reconciler.ReconcileOne(rootCtx, app.Vault.PathForID(id))
	if err != nil {
		return fmt.Errorf("importing new note %s: %w", id, err)
	}
	if err := app.Catalog.AppendEvent(rootCtx, catalog.Event{NoteID: id, Kind: "created", Actor: app.Actor, CreatedAt: now, Summary: title}); err != nil {
		return fmt.Errorf("logging create event: %w", err)
	}
	app.Webhook.Send(webhookPayload("note.created", id, title))

	if app.JSONOutput {
		outputJSON(map[string]any{"id": id, "title": title, "action": action.String()})
	} else {
		fmt.Printf("%s %s: %s\n", ui.RenderPass("Created"), id, title)
	}
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note's title, body, and tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := app.Catalog.GetNote(rootCtx, args[0])
		if err != nil {
			return err
		}
		if app.JSONOutput {
			outputJSON(n)
			return nil
		}
		renderer := newDefaultRenderer()
		format, _ := cmd.Flags().GetString("format")
		out, err := renderer.Note(n, formatFlagToExportFormat(format))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, optionally filtered by tag or trash state",
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("tag")
		showTrashed, _ := cmd.Flags().GetBool("trashed")

		f := catalog.ListFilter{Tag: tag}
		if showTrashed {
			t := true
			f.Trashed = &t
		}
		notes, err := app.Catalog.ListNotes(rootCtx, f)
		if err != nil {
			return err
		}
		if app.JSONOutput {
			outputJSON(notes)
			return nil
		}
		for _, n := range notes {
			fmt.Printf("%s  %-40s  %s\n", n.ID, n.Title, n.State)
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note's title and/or body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")

		n, err := app.Catalog.GetNote(rootCtx, id)
		if err != nil {
			return err
		}
		if title != "" {
			n.Title = title
		}
		if body != "" {
			n.Body = body
		}
		n.Tags = tagextract.Extract(n.Body)
		now := time.Now().UTC()

		vn := vault.Note{ID: n.ID, Title: n.Title, Body: n.Body, Tags: n.Tags, CreatedAt: n.CreatedAt, UpdatedAt: now, IsPinned: n.Pinned}
		if err := app.Vault.Write(vn); err != nil {
			return fmt.Errorf("writing note to vault: %w", err)
		}
		if _, _, err := app.Reconciler.ReconcileOne(rootCtx, app.Vault.PathForID(id)); err != nil {
			return fmt.Errorf("reconciling edited note %s: %w", id, err)
		}
		if err := app.Catalog.AppendEvent(rootCtx, catalog.Event{NoteID: id, Kind: "edited", Actor: app.Actor, CreatedAt: now, Summary: n.Title}); err != nil {
			return fmt.Errorf("logging edit event: %w", err)
		}
		app.Webhook.Send(webhookPayload("note.updated", id, n.Title))
		fmt.Printf("%s %s\n", ui.RenderPass("Updated"), id)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"trash"},
	Short:   "Move a note to the trash",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		now := time.Now().UTC()
		if err := app.Catalog.SoftDelete(rootCtx, id, now); err != nil {
			return err
		}
		if err := app.Vault.Delete(id); err != nil {
			return fmt.Errorf("removing note from vault: %w", err)
		}
		if err := app.Catalog.AppendEvent(rootCtx, catalog.Event{NoteID: id, Kind: "trashed", Actor: app.Actor, CreatedAt: now}); err != nil {
			return fmt.Errorf("logging trash event: %w", err)
		}
		app.Webhook.Send(webhookPayload("note.trashed", id, ""))
		fmt.Printf("%s %s\n", ui.RenderWarn("Trashed"), id)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a trashed note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		now := time.Now().UTC()
		if err := app.Catalog.Restore(rootCtx, id, now); err != nil {
			return err
		}
		n, err := app.Catalog.GetNote(rootCtx, id)
		if err != nil {
			return err
		}
		vn := vault.Note{ID: n.ID, Title: n.Title, Body: n.Body, Tags: n.Tags, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt, IsPinned: n.Pinned}
		if err := app.Vault.Write(vn); err != nil {
			return fmt.Errorf("restoring note to vault: %w", err)
		}
		fmt.Printf("%s %s\n", ui.RenderPass("Restored"), id)
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <id>",
	Short: "Advance a note from review to published",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionState(args[0], "published")
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <id>",
	Short: "Move a note into review state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transitionState(args[0], "review")
	},
}

func transitionState(id, state string) error {
	n, err := app.Catalog.GetNote(rootCtx, id)
	if err != nil {
		return err
	}
	n.State = state
	now := time.Now().UTC()
	if err := app.Catalog.UpdateNote(rootCtx, n, now); err != nil {
		return err
	}
	if err := app.Catalog.AppendEvent(rootCtx, catalog.Event{NoteID: id, Kind: "state:" + state, Actor: app.Actor, CreatedAt: now, Summary: n.Title}); err != nil {
		return fmt.Errorf("logging state-change event: %w", err)
	}
	app.Webhook.Send(webhookPayload("note."+state, id, n.Title))
	fmt.Printf("%s is now %s\n", id, ui.RenderAccent(state))
	return nil
}

func init() {
	createCmd.Flags().StringP("title", "t", "", "note title")
	createCmd.Flags().StringP("body", "b", "", "note body")
	rootCmd.AddCommand(createCmd)

	showCmd.Flags().String("format", "terminal", "render format: terminal, html, markdown")
	rootCmd.AddCommand(showCmd)

	listCmd.Flags().String("tag", "", "filter by tag")
	listCmd.Flags().Bool("trashed", false, "show only trashed notes")
	rootCmd.AddCommand(listCmd)

	editCmd.Flags().StringP("title", "t", "", "new title")
	editCmd.Flags().StringP("body", "b", "", "new body")
	rootCmd.AddCommand(editCmd)

	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(reviewCmd)
}
