package main

import (
	"testing"
	"time"

	"github.com/bruinnotes/bruin/internal/vault"
)

func TestTagRenamePushesToVault(t *testing.T) {
	newTestApp(t)
	if err := createNote("Tagged note", "see #work/project1 for details"); err != nil {
		t.Fatalf("createNote: %v", err)
	}

	affected, err := app.Catalog.RenameTag(rootCtx, "work/project1", "work/project2")
	if err != nil {
		t.Fatalf("RenameTag: %v", err)
	}
	if len(affected) != 1 {
		t.Fatalf("expected 1 affected note, got %d", len(affected))
	}
	if err := app.Reconciler.ExportNote(rootCtx, affected[0]); err != nil {
		t.Fatalf("ExportNote: %v", err)
	}

	n, err := app.Catalog.GetNote(rootCtx, affected[0])
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	found := false
	for _, tag := range n.Tags {
		if tag == "work/project2" {
			found = true
		}
	}
	if !found {
		t.Errorf("Tags = %v, want to contain %q", n.Tags, "work/project2")
	}

	vn, err := vault.Read(app.Vault.PathForID(affected[0]), time.Now())
	if err != nil {
		t.Fatalf("vault.Read: %v", err)
	}
	if len(vn.Tags) != 1 || vn.Tags[0] != "work/project2" {
		t.Errorf("vault file tags = %v, want [work/project2]", vn.Tags)
	}
}
