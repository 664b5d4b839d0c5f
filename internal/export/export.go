// Package export renders a note (or a whole vault) to a form meant for
// sharing outside Bruin: an ANSI-styled terminal preview, a standalone
// HTML document, or plain markdown with its front matter stripped.
package export

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/bruinnotes/bruin/internal/catalog"
)

// Format selects the rendering target.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Renderer renders catalog notes. Its width is fixed at construction and
// the underlying glamour renderer is built per call, so one Renderer may
// be shared across goroutines.
type Renderer struct {
	width int
}

// New returns a Renderer that wraps terminal output at the given width.
// A width of 0 lets glamour pick its own default wrap width.
func New(width int) *Renderer {
	return &Renderer{width: width}
}

// Note renders a single note in the requested format.
func (r *Renderer) Note(n catalog.Note, format Format) (string, error) {
	switch format {
	case FormatTerminal:
		return r.renderTerminal(n)
	case FormatHTML:
		return renderHTML(n)
	case FormatMarkdown:
		return renderMarkdown(n), nil
	default:
		return "", fmt.Errorf("export: unknown format %q", format)
	}
}

// Vault renders every note into one document, in the order given. Each
// note starts with a level-1 heading of its title in every format;
// FormatTerminal also puts a horizontal rule between notes, and
// FormatMarkdown ends every note with a "---" rule.
func (r *Renderer) Vault(notes []catalog.Note, format Format) (string, error) {
	switch format {
	case FormatTerminal:
		var sb strings.Builder
		for i, n := range notes {
			if i > 0 {
				sb.WriteString(strings.Repeat("─", max(1, r.width)) + "\n")
			}
			out, err := r.renderTerminal(n)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		}
		return sb.String(), nil
	case FormatMarkdown:
		var sb strings.Builder
		for _, n := range notes {
			sb.WriteString(renderMarkdown(n))
			sb.WriteString("\n\n---\n\n")
		}
		return sb.String(), nil
	case FormatHTML:
		return renderVaultHTML(notes)
	default:
		return "", fmt.Errorf("export: unknown format %q", format)
	}
}

func (r *Renderer) renderTerminal(n catalog.Note) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.width > 0 {
		opts = append(opts, glamour.WithWordWrap(r.width))
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("building terminal renderer: %w", err)
	}
	out, err := tr.Render(renderMarkdown(n))
	if err != nil {
		return "", fmt.Errorf("rendering note %s: %w", n.ID, err)
	}
	return out, nil
}

func renderMarkdown(n catalog.Note) string {
	var sb strings.Builder
	sb.WriteString("# " + n.Title + "\n\n")
	sb.WriteString(n.Body)
	return sb.String()
}

var noteTemplate = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article>
<h1>{{.Title}}</h1>
{{.Body}}
</article>
</body>
</html>
`))

func renderHTML(n catalog.Note) (string, error) {
	body, err := markdownToHTML(n.Body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := noteTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: n.Title, Body: template.HTML(body)}); err != nil {
		return "", fmt.Errorf("rendering HTML for note %s: %w", n.ID, err)
	}
	return buf.String(), nil
}

var vaultTemplate = template.Must(template.New("vault").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Bruin vault export</title>
</head>
<body>
{{range .}}
<article>
<h1>{{.Title}}</h1>
{{.Body}}
</article>
<hr>
{{end}}
</body>
</html>
`))

func renderVaultHTML(notes []catalog.Note) (string, error) {
	type rendered struct {
		Title string
		Body  template.HTML
	}
	items := make([]rendered, 0, len(notes))
	for _, n := range notes {
		body, err := markdownToHTML(n.Body)
		if err != nil {
			return "", err
		}
		items = append(items, rendered{Title: n.Title, Body: template.HTML(body)})
	}
	var buf bytes.Buffer
	if err := vaultTemplate.Execute(&buf, items); err != nil {
		return "", fmt.Errorf("rendering vault HTML: %w", err)
	}
	return buf.String(), nil
}

func markdownToHTML(body string) (string, error) {
	md := goldmark.New(goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()))
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

// WriteTo writes rendered content to w, returning the number of bytes
// written. A thin convenience wrapper for CLI commands writing to a file
// or stdout.
func WriteTo(w io.Writer, content string) (int, error) {
	return io.WriteString(w, content)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
