// Package vault resolves the on-disk notes directory, enumerates and writes
// `.md` files, fingerprints content, and probes write availability. Two
// candidate directories exist on the host: a preferred one and a legacy one
// the adapter migrates away from.
package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bruinnotes/bruin/internal/frontmatter"
	"github.com/bruinnotes/bruin/internal/ids"
	"github.com/bruinnotes/bruin/internal/tagextract"
)

// Note is the vault-side view of a note: whatever the front-matter codec
// and tag extractor can recover from a single file on disk.
type Note struct {
	ID        string
	Title     string
	Body      string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
	IsPinned  bool
	Path      string
}

// Availability describes whether the vault directory exists and accepts
// writes, with a verbatim failure reason when it does not.
type Availability struct {
	Exists   bool
	Writable bool
	Reason   string
}

const sentinelName = ".bruin-write-probe"

// sentinelContent is the fixed byte string written and removed to probe
// writability.
var sentinelContent = []byte("bruin-write-probe")

// Vault is the resolved, on-disk notes directory.
type Vault struct {
	dir string
}

// Resolve picks the vault directory: the preferred container if it
// exists, else migrates (copies, does not move) `.md` files out of the
// legacy container into the preferred one if the legacy one exists and
// holds any, else simply returns the preferred path uncreated.
func Resolve(preferredDir, legacyDir string) (*Vault, error) {
	if info, err := os.Stat(preferredDir); err == nil && info.IsDir() {
		return &Vault{dir: preferredDir}, nil
	}

	if entries, err := os.ReadDir(legacyDir); err == nil {
		hasMD := false
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".md") {
				hasMD = true
				break
			}
		}
		if hasMD {
			if err := os.MkdirAll(preferredDir, 0o755); err != nil {
				return nil, fmt.Errorf("creating preferred vault directory: %w", err)
			}
			for _, e := range entries {
				if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
					continue
				}
				src := filepath.Join(legacyDir, e.Name())
				dst := filepath.Join(preferredDir, e.Name())
				data, err := os.ReadFile(src)
				if err != nil {
					return nil, fmt.Errorf("reading legacy note %s: %w", src, err)
				}
				if err := os.WriteFile(dst, data, 0o644); err != nil {
					return nil, fmt.Errorf("copying legacy note to %s: %w", dst, err)
				}
			}
			return &Vault{dir: preferredDir}, nil
		}
	}

	return &Vault{dir: preferredDir}, nil
}

// Dir returns the resolved vault directory path.
func (v *Vault) Dir() string { return v.dir }

func (v *Vault) path(id string) string {
	return filepath.Join(v.dir, id+".md")
}

// PathForID returns the file path (joined onto the vault directory) for a note id, without
// checking whether it exists.
func (v *Vault) PathForID(id string) string {
	return v.path(id)
}

// IDFromPath returns the note id a vault file path encodes: its base
// name with the ".md" extension stripped.
func IDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Write truncate-writes <id>.md for the given note.
func (v *Vault) Write(n Note) error {
	h := frontmatter.Header{
		ID:        n.ID,
		Title:     n.Title,
		Tags:      n.Tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		IsPinned:  n.IsPinned,
	}
	data := frontmatter.Serialize(h, n.Body)
	if err := os.WriteFile(v.path(n.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing note %s: %w", n.ID, err)
	}
	return nil
}

// Delete removes <id>.md if present; it is a no-op otherwise.
func (v *Vault) Delete(id string) error {
	err := os.Remove(v.path(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting note %s: %w", id, err)
	}
	return nil
}

// isPlaceholder reports whether a leaf name is a cloud-daemon stub: any
// name whose leaf begins with '.', including the `.*.icloud` pattern.
func isPlaceholder(name string) bool {
	return strings.HasPrefix(name, ".")
}

// List enumerates the direct `.md` children of the vault, skipping every
// placeholder leaf name.
func (v *Vault) List() ([]string, error) {
	entries, err := os.ReadDir(v.dir)
	if err != nil {
		return nil, fmt.Errorf("listing vault directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if isPlaceholder(name) {
			continue
		}
		if filepath.Ext(name) != ".md" {
			continue
		}
		paths = append(paths, filepath.Join(v.dir, name))
	}
	return paths, nil
}

// Fingerprint computes the vault-side content fingerprint: lowercase hex
// SHA-256 of title bytes followed immediately by body bytes, no separator.
func Fingerprint(title, body string) string {
	h := sha256.New()
	h.Write([]byte(title))
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}

// Read parses path and returns the recovered note. Missing header fields
// are defaulted: a freshly generated id, empty title, tags extracted from
// the body, and both timestamps set to now.
func Read(path string, now time.Time) (Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Note{}, fmt.Errorf("reading note file %s: %w", path, err)
	}

	header, body, err := frontmatter.Parse(data)
	if err != nil {
		return Note{}, err
	}

	n := Note{
		ID:        header.ID,
		Title:     header.Title,
		Body:      body,
		Tags:      header.Tags,
		CreatedAt: header.CreatedAt,
		UpdatedAt: header.UpdatedAt,
		IsPinned:  header.IsPinned,
		Path:      path,
	}
	if n.ID == "" {
		n.ID = ids.New()
	}
	if n.Tags == nil {
		n.Tags = tagextract.Extract(body)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = now
	}
	return n, nil
}

// CheckAvailability reports whether the vault directory exists and
// accepts writes, probing writability by writing and removing a sentinel
// file. Failure reasons are captured verbatim.
func CheckAvailability(dir string) Availability {
	info, err := os.Stat(dir)
	if err != nil {
		return Availability{Exists: false, Writable: false, Reason: err.Error()}
	}
	if !info.IsDir() {
		return Availability{Exists: false, Writable: false, Reason: fmt.Sprintf("%s is not a directory", dir)}
	}

	probe := filepath.Join(dir, sentinelName)
	if err := os.WriteFile(probe, sentinelContent, 0o644); err != nil {
		return Availability{Exists: true, Writable: false, Reason: err.Error()}
	}
	if err := os.Remove(probe); err != nil {
		return Availability{Exists: true, Writable: false, Reason: err.Error()}
	}
	return Availability{Exists: true, Writable: true}
}
