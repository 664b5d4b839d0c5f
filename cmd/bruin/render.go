package main

import (
	"time"

	"golang.org/x/term"

	"github.com/bruinnotes/bruin/internal/export"
	"github.com/bruinnotes/bruin/internal/webhook"
)

func webhookPayload(eventType, noteID, summary string) webhook.Payload {
	return webhook.Payload{
		EventType: eventType,
		NoteID:    noteID,
		Summary:   summary,
		Timestamp: time.Now().UTC(),
	}
}

func newDefaultRenderer() *export.Renderer {
	width := 100
	if w, _, err := term.GetSize(0); err == nil && w > 0 {
		width = w
	}
	return export.New(width)
}

func formatFlagToExportFormat(s string) export.Format {
	switch s {
	case "html":
		return export.FormatHTML
	case "markdown", "md":
		return export.FormatMarkdown
	default:
		return export.FormatTerminal
	}
}
