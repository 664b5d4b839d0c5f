// Package frontmatter implements the vault file codec: serializing a note
// record to "---\n<yaml>\n---\n<body>" and parsing the reverse.
// Serialization writes a fixed byte-exact layout so the round-trip
// property (parse(serialize(n)) == n) holds; parsing leans on yaml.v3 to
// tolerate whatever a human or another tool may have written into the
// header.
package frontmatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/bruinnotes/bruin/internal/bruinerr"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Header is the set of fields the codec round-trips through vault files.
// Note.state and Note.workspace_id are catalog-only fields: they are never
// emitted here and never read back.
type Header struct {
	ID        string
	Title     string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
	IsPinned  bool
}

// Serialize produces the canonical vault file byte sequence for a note.
// Keys are emitted in the fixed order id, title, tags, created_at,
// updated_at, is_pinned. String scalars are double-quoted with only `"`
// escaped (as `\"`); tags are a YAML block sequence of quoted strings, or
// the inline literal "[]" when empty.
func Serialize(h Header, body string) []byte {
	var b strings.Builder
	b.WriteString(delimiter)
	b.WriteByte('\n')

	fmt.Fprintf(&b, "id: %s\n", quote(h.ID))
	fmt.Fprintf(&b, "title: %s\n", quote(h.Title))

	if len(h.Tags) == 0 {
		b.WriteString("tags: []\n")
	} else {
		b.WriteString("tags:\n")
		for _, t := range h.Tags {
			fmt.Fprintf(&b, "  - %s\n", quote(t))
		}
	}

	fmt.Fprintf(&b, "created_at: %s\n", quote(h.CreatedAt.Format(time.RFC3339)))
	fmt.Fprintf(&b, "updated_at: %s\n", quote(h.UpdatedAt.Format(time.RFC3339)))
	fmt.Fprintf(&b, "is_pinned: %t\n", h.IsPinned)

	b.WriteString(delimiter)
	b.WriteByte('\n')
	b.WriteString(body)

	return []byte(b.String())
}

func quote(s string) string {
	escaped := strings.ReplaceAll(s, `"`, `\"`)
	return `"` + escaped + `"`
}

// rawHeader mirrors the permissive shape accepted on parse: missing keys
// become zero values, "tags" accepts only a sequence of strings (anything
// else yields an empty list), and "is_pinned" defaults to false.
type rawHeader struct {
	ID        *string   `yaml:"id"`
	Title     *string   `yaml:"title"`
	Tags      yaml.Node `yaml:"tags"`
	CreatedAt *string   `yaml:"created_at"`
	UpdatedAt *string   `yaml:"updated_at"`
	IsPinned  *bool     `yaml:"is_pinned"`
}

// Parse splits a vault file into its header and body. If the input does
// not start with "---", the header is empty and the whole input is the
// body. Otherwise it looks for the closing delimiter, preferring "\n---\n"
// (body follows); "\n---" at end-of-input is accepted only when nothing
// but whitespace follows. Any other structure is a malformed-header error.
func Parse(data []byte) (Header, string, error) {
	text := string(data)

	if !strings.HasPrefix(text, delimiter) {
		return Header{}, text, nil
	}

	rest := text[len(delimiter):]

	closeSeq := "\n" + delimiter + "\n"
	if idx := strings.Index(rest, closeSeq); idx >= 0 {
		yamlPart := rest[:idx]
		body := rest[idx+len(closeSeq):]
		h, err := parseHeaderYAML(yamlPart)
		return h, body, err
	}

	closeOnly := "\n" + delimiter
	if idx := strings.Index(rest, closeOnly); idx >= 0 {
		yamlPart := rest[:idx]
		trailing := rest[idx+len(closeOnly):]
		if strings.TrimSpace(trailing) != "" {
			return Header{}, "", bruinerr.Malformed("malformed front-matter header: trailing content after closing delimiter")
		}
		h, err := parseHeaderYAML(yamlPart)
		return h, "", err
	}

	return Header{}, "", bruinerr.Malformed("malformed front-matter header: closing delimiter not found")
}

func parseHeaderYAML(raw string) (Header, error) {
	var rh rawHeader
	if err := yaml.Unmarshal([]byte(raw), &rh); err != nil {
		return Header{}, bruinerr.Malformed("malformed front-matter header: %v", err)
	}

	var h Header
	if rh.ID != nil {
		h.ID = *rh.ID
	}
	if rh.Title != nil {
		h.Title = *rh.Title
	}
	h.Tags = parseTagsNode(rh.Tags)
	if rh.CreatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *rh.CreatedAt); err == nil {
			h.CreatedAt = t
		}
	}
	if rh.UpdatedAt != nil {
		if t, err := time.Parse(time.RFC3339, *rh.UpdatedAt); err == nil {
			h.UpdatedAt = t
		}
	}
	if rh.IsPinned != nil {
		h.IsPinned = *rh.IsPinned
	}
	return h, nil
}

// parseTagsNode accepts only a sequence of scalar strings; anything else
// (a map, a single scalar, absence) yields an empty list.
func parseTagsNode(n yaml.Node) []string {
	if n.Kind != yaml.SequenceNode {
		return nil
	}
	var tags []string
	for _, item := range n.Content {
		if item.Kind == yaml.ScalarNode {
			tags = append(tags, item.Value)
		}
	}
	return tags
}
