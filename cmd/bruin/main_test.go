package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bruinnotes/bruin/internal/catalog"
	"github.com/bruinnotes/bruin/internal/reconcile"
	"github.com/bruinnotes/bruin/internal/sync"
	"github.com/bruinnotes/bruin/internal/vault"
	"github.com/bruinnotes/bruin/internal/webhook"
)

// newTestApp builds a minimal appContext against an in-memory catalog
// and a throwaway vault directory, and points the package globals at
// it, mirroring how a real invocation's PersistentPreRunE wires app and
// rootCtx before a command's RunE runs.
func newTestApp(t *testing.T) *appContext {
	t.Helper()

	ctx := context.Background()
	c, err := catalog.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening catalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	dir := t.TempDir()
	v, err := vault.Resolve(dir, filepath.Join(dir, "legacy-unused"))
	if err != nil {
		t.Fatalf("resolving vault: %v", err)
	}

	r := reconcile.New(c, v)
	wh := webhook.New("", "", 1)
	t.Cleanup(wh.Close)
	sc := sync.New(r, v.Dir(), sync.Hooks{})

	a := &appContext{
		Catalog:    c,
		Vault:      v,
		Reconciler: r,
		Sync:       sc,
		Webhook:    wh,
		Actor:      "test-user",
		vaultDir:   dir,
	}
	app = a
	rootCtx = ctx
	return a
}
