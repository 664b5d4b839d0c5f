package export

import (
	"strings"
	"testing"
	"time"

	"github.com/bruinnotes/bruin/internal/catalog"
)

func testNote(id, title, body string) catalog.Note {
	now := time.Now().UTC()
	return catalog.Note{ID: id, Title: title, Body: body, CreatedAt: now, UpdatedAt: now}
}

func TestNoteMarkdownIncludesTitleAsHeading(t *testing.T) {
	r := New(80)
	out, err := r.Note(testNote("a", "Grocery list", "- eggs\n- milk"), FormatMarkdown)
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	if !strings.HasPrefix(out, "# Grocery list\n\n") {
		t.Fatalf("expected markdown to start with a level-1 heading, got %q", out)
	}
	if !strings.Contains(out, "- eggs") {
		t.Fatalf("expected body to be present, got %q", out)
	}
}

func TestNoteHTMLConvertsMarkdown(t *testing.T) {
	r := New(80)
	out, err := r.Note(testNote("b", "Plans", "**bold** and a [link](https://example.com)"), FormatHTML)
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("expected markdown bold to become <strong>, got %q", out)
	}
	if !strings.Contains(out, `href="https://example.com"`) {
		t.Fatalf("expected link to be converted, got %q", out)
	}
	if !strings.Contains(out, "<h1>Plans</h1>") {
		t.Fatalf("expected title heading, got %q", out)
	}
}

func TestNoteTerminalRendersWithoutError(t *testing.T) {
	r := New(80)
	out, err := r.Note(testNote("c", "Today", "Some *italic* text."), FormatTerminal)
	if err != nil {
		t.Fatalf("Note: %v", err)
	}
	if out == "" {
		t.Fatal("expected non-empty terminal render")
	}
}

func TestNoteUnknownFormatErrors(t *testing.T) {
	r := New(80)
	if _, err := r.Note(testNote("d", "X", "y"), Format("bogus")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestVaultMarkdownSeparatesNotesWithRule(t *testing.T) {
	r := New(80)
	notes := []catalog.Note{
		testNote("a", "First", "one"),
		testNote("b", "Second", "two"),
	}
	out, err := r.Vault(notes, FormatMarkdown)
	if err != nil {
		t.Fatalf("Vault: %v", err)
	}
	if !strings.Contains(out, "# First") || !strings.Contains(out, "# Second") {
		t.Fatalf("expected both notes present, got %q", out)
	}
	if !strings.Contains(out, "---") {
		t.Fatalf("expected a separator between notes, got %q", out)
	}
}

func TestVaultHTMLIncludesAllNotes(t *testing.T) {
	r := New(80)
	notes := []catalog.Note{
		testNote("a", "First", "one"),
		testNote("b", "Second", "two"),
	}
	out, err := r.Vault(notes, FormatHTML)
	if err != nil {
		t.Fatalf("Vault: %v", err)
	}
	if !strings.Contains(out, "<h1>First</h1>") || !strings.Contains(out, "<h1>Second</h1>") {
		t.Fatalf("expected both note headings present, got %q", out)
	}
}
