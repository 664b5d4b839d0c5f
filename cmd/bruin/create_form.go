package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// runCreateForm walks the user through an interactive terminal form when
// `bruin create` is invoked with no title, mirroring how a form-driven
// create command prompts for fields it would otherwise take as flags.
func runCreateForm(ctx context.Context) error {
	var title, body string
	confirmed := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("Brief summary of the note (required)").
				Placeholder("e.g., Grocery list").
				Value(&title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),

			huh.NewText().
				Title("Body").
				Description("Markdown content. Use #tag anywhere in the text to tag the note.").
				CharLimit(20000).
				Value(&body),

			huh.NewConfirm().
				Title("Create this note?").
				Affirmative("Create").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.RunWithContext(ctx); err != nil {
		return fmt.Errorf("running create form: %w", err)
	}
	if !confirmed {
		return nil
	}

	return createNote(title, body)
}
