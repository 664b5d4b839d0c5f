// Package main provides the bruin command-line interface.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bruinnotes/bruin/internal/catalog"
	bruinconfig "github.com/bruinnotes/bruin/internal/config"
	"github.com/bruinnotes/bruin/internal/reconcile"
	"github.com/bruinnotes/bruin/internal/sync"
	"github.com/bruinnotes/bruin/internal/vault"
	"github.com/bruinnotes/bruin/internal/watcher"
	"github.com/bruinnotes/bruin/internal/webhook"
)

// appContext consolidates the runtime state every command needs: the
// open catalog handle, the resolved vault, the reconciler built from
// them, and a sync controller that serializes access between whatever
// command is running and a background watcher a daemon process might
// also be running. One appContext is built per process invocation.
type appContext struct {
	Catalog *catalog.Catalog
	Vault   *vault.Vault
	Reconciler *reconcile.Reconciler
	Sync    *sync.Controller
	Webhook *webhook.Dispatcher

	Actor      string
	JSONOutput bool

	vaultDir   string
	controlDir string
}

var app *appContext

func newAppContext(ctx context.Context) (*appContext, error) {
	if err := bruinconfig.Initialize(); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	vaultDir := firstNonEmpty(flagVault, bruinconfig.GetString("vault"), defaultVaultDir())
	legacyDir := firstNonEmpty(bruinconfig.GetString("legacy-vault"), defaultLegacyVaultDir())
	controlDir := firstNonEmpty(flagControlDir, bruinconfig.GetString("control-dir"), defaultControlDir(vaultDir))
	catalogPath := firstNonEmpty(flagCatalogPath, bruinconfig.GetString("catalog-path"), defaultCatalogPath())

	v, err := vault.Resolve(vaultDir, legacyDir)
	if err != nil {
		return nil, fmt.Errorf("resolving vault: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(catalogPath), 0o755); err != nil {
		return nil, fmt.Errorf("preparing catalog directory: %w", err)
	}
	cat, err := catalog.Open(ctx, catalogPath)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	r := reconcile.New(cat, v)

	wh := webhook.New(bruinconfig.GetString("webhook.url"), bruinconfig.GetString("webhook.secret"), 4)

	sc := sync.New(r, v.Dir(), sync.Hooks{
		NotesImported: func(ids []string) {
			for _, id := range ids {
				wh.Send(webhook.Payload{
					EventType: "note.imported",
					NoteID:    id,
					Summary:   "imported from vault",
					Timestamp: time.Now().UTC(),
				})
			}
		},
	})

	actor := firstNonEmpty(flagActor, bruinconfig.GetString("actor"), defaultActor())

	return &appContext{
		Catalog:    cat,
		Vault:      v,
		Reconciler: r,
		Sync:       sc,
		Webhook:    wh,
		Actor:      actor,
		JSONOutput: flagJSON,
		vaultDir:   vaultDir,
		controlDir: controlDir,
	}, nil
}

func (a *appContext) Close() {
	a.Webhook.Close()
	_ = a.Sync.StopWatcher()
	_ = a.Catalog.Close()
}

// attachWatcher starts a filesystem watcher wired to this context's sync
// controller. Used by the daemon command; one-shot commands never need
// a live watcher of their own.
func (a *appContext) attachWatcher(ctx context.Context) error {
	w, err := watcher.New(a.Reconciler, a.vaultDir, a.controlDir, watcher.WithLock(a.Sync.CatalogLock()))
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	a.Sync.AttachWatcher(w)
	w.Start(ctx)
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func defaultBruinHome() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".bruin")
	}
	return ".bruin"
}

func defaultVaultDir() string {
	return filepath.Join(defaultBruinHome(), "vault")
}

func defaultLegacyVaultDir() string {
	return filepath.Join(defaultBruinHome(), "notes")
}

func defaultControlDir(vaultDir string) string {
	return vaultDir
}

func defaultCatalogPath() string {
	return filepath.Join(defaultBruinHome(), "catalog.db")
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "bruin"
}
