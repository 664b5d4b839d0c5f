package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestResolvePrefersExisting(t *testing.T) {
	preferred := t.TempDir()
	legacy := t.TempDir()

	v, err := Resolve(preferred, legacy)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Dir() != preferred {
		t.Fatalf("got %q, want %q", v.Dir(), preferred)
	}
}

func TestResolveMigratesFromLegacy(t *testing.T) {
	base := t.TempDir()
	preferred := filepath.Join(base, "preferred")
	legacy := filepath.Join(base, "legacy")
	if err := os.MkdirAll(legacy, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(legacy, "note1.md"), []byte("---\ntitle: \"x\"\n---\nbody"), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := Resolve(preferred, legacy)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Dir() != preferred {
		t.Fatalf("got %q, want %q", v.Dir(), preferred)
	}
	if _, err := os.Stat(filepath.Join(preferred, "note1.md")); err != nil {
		t.Fatalf("expected note copied into preferred dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(legacy, "note1.md")); err != nil {
		t.Fatalf("expected legacy copy to remain (copy, not move): %v", err)
	}
}

func TestResolveNeitherExistsReturnsPreferredUncreated(t *testing.T) {
	base := t.TempDir()
	preferred := filepath.Join(base, "preferred")
	legacy := filepath.Join(base, "legacy")

	v, err := Resolve(preferred, legacy)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v.Dir() != preferred {
		t.Fatalf("got %q, want %q", v.Dir(), preferred)
	}
	if _, err := os.Stat(preferred); !os.IsNotExist(err) {
		t.Fatalf("expected preferred dir to not be created yet")
	}
}

func TestWriteListDelete(t *testing.T) {
	dir := t.TempDir()
	v := &Vault{dir: dir}

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := Note{ID: "abc", Title: "Hello", Body: "World", CreatedAt: now, UpdatedAt: now}
	if err := v.Write(n); err != nil {
		t.Fatalf("Write: %v", err)
	}

	paths, err := v.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "abc.md" {
		t.Fatalf("got %v", paths)
	}

	if err := v.Delete("abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := v.Delete("abc"); err != nil {
		t.Fatalf("Delete should be a no-op when absent: %v", err)
	}

	paths, err = v.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("expected empty vault, got %v", paths)
	}
}

func TestListSkipsPlaceholdersAndNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	v := &Vault{dir: dir}

	files := []string{"real.md", ".hidden.md", ".x.md.icloud", "notes.txt"}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := v.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "real.md" {
		t.Fatalf("got %v", paths)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("title", "body")
	b := Fingerprint("title", "body")
	if a != b {
		t.Fatalf("fingerprint not deterministic: %q vs %q", a, b)
	}
	if Fingerprint("t", "itlebody") == a {
		t.Fatalf("fingerprint should differ across the title/body boundary shift")
	}
}

func TestReadDefaultsMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.md")
	if err := os.WriteFile(path, []byte("plain body with #atag"), 0o644); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	n, err := Read(path, now)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n.ID == "" {
		t.Fatalf("expected generated id")
	}
	if n.Title != "" {
		t.Fatalf("expected empty title, got %q", n.Title)
	}
	if len(n.Tags) != 1 || n.Tags[0] != "atag" {
		t.Fatalf("expected tags extracted from body, got %v", n.Tags)
	}
	if !n.CreatedAt.Equal(now) || !n.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps defaulted to now")
	}
}

func TestCheckAvailability(t *testing.T) {
	dir := t.TempDir()
	a := CheckAvailability(dir)
	if !a.Exists || !a.Writable {
		t.Fatalf("expected existing writable dir, got %+v", a)
	}

	missing := filepath.Join(dir, "does-not-exist")
	a = CheckAvailability(missing)
	if a.Exists {
		t.Fatalf("expected missing dir to report Exists=false")
	}
	if a.Reason == "" {
		t.Fatalf("expected a failure reason")
	}
}
