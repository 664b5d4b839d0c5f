package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bruinnotes/bruin/internal/catalog"
	"github.com/bruinnotes/bruin/internal/reconcile"
	"github.com/bruinnotes/bruin/internal/vault"
)

func TestClassify(t *testing.T) {
	trigger := "/control/.bruin-sync-trigger"

	cases := []struct {
		name   string
		ev     fsnotify.Event
		want   EventKind
		wantOK bool
	}{
		{"trigger create", fsnotify.Event{Name: trigger, Op: fsnotify.Create}, eventFullSweep, true},
		{"trigger write", fsnotify.Event{Name: trigger, Op: fsnotify.Write}, eventFullSweep, true},
		{"trigger remove is dropped", fsnotify.Event{Name: trigger, Op: fsnotify.Remove}, 0, false},
		{"md write", fsnotify.Event{Name: "/vault/note.md", Op: fsnotify.Write}, eventChanged, true},
		{"md create", fsnotify.Event{Name: "/vault/note.md", Op: fsnotify.Create}, eventChanged, true},
		{"md remove", fsnotify.Event{Name: "/vault/note.md", Op: fsnotify.Remove}, eventRemoved, true},
		{"md rename", fsnotify.Event{Name: "/vault/note.md", Op: fsnotify.Rename}, eventRemoved, true},
		{"icloud placeholder dropped", fsnotify.Event{Name: "/vault/.note.md.icloud", Op: fsnotify.Create}, 0, false},
		{"dotfile dropped", fsnotify.Event{Name: "/vault/.bruin-write-probe", Op: fsnotify.Create}, 0, false},
		{"non-md dropped", fsnotify.Event{Name: "/vault/note.txt", Op: fsnotify.Write}, 0, false},
		{"chmod-only dropped", fsnotify.Event{Name: "/vault/note.md", Op: fsnotify.Chmod}, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, _, ok := classify(tc.ev, trigger)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && kind != tc.want {
				t.Fatalf("kind = %v, want %v", kind, tc.want)
			}
		})
	}
}

func newTestWatcher(t *testing.T) (*Watcher, *catalog.Catalog, *vault.Vault, string) {
	t.Helper()
	c, err := catalog.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open catalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	vaultDir := t.TempDir()
	controlDir := t.TempDir()
	v, err := vault.Resolve(vaultDir, filepath.Join(vaultDir, "legacy-unused"))
	if err != nil {
		t.Fatalf("Resolve vault: %v", err)
	}

	r := reconcile.New(c, v)
	w, err := New(r, vaultDir, controlDir)
	if err != nil {
		t.Fatalf("New watcher: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, c, v, vaultDir
}

func TestWatcherImportsNewFileAfterDebounce(t *testing.T) {
	w, c, v, _ := newTestWatcher(t)
	ctx := context.Background()

	var statusChanges int
	var mu sync.Mutex
	w.OnStatusChanged = func() {
		mu.Lock()
		statusChanges++
		mu.Unlock()
	}

	w.Start(ctx)

	now := time.Now().UTC()
	if err := v.Write(vault.Note{ID: "X", Title: "A", Body: "hello", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := c.GetNote(ctx, "X"); err == nil {
			mu.Lock()
			got := statusChanges
			mu.Unlock()
			if got < 1 {
				t.Fatalf("expected at least one status-changed emission")
			}
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("note was never imported by the watcher")
}

func TestWatcherTrashesNoteOnRemoval(t *testing.T) {
	w, c, v, _ := newTestWatcher(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := c.CreateNote(ctx, catalog.Note{ID: "X", Title: "A", Body: "hello", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}
	if err := v.Write(vault.Note{ID: "X", Title: "A", Body: "hello", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}

	w.Start(ctx)

	if err := v.Delete("X"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		n, err := c.GetNote(ctx, "X")
		if err == nil && n.Trashed {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("note was never trashed by the watcher")
}

func TestWatcherTriggerFileRequestsFullSweep(t *testing.T) {
	w, _, _, _ := newTestWatcher(t)
	ctx := context.Background()

	done := make(chan struct{}, 1)
	w.OnFullSweepRequested = func() {
		select {
		case done <- struct{}{}:
		default:
		}
	}

	w.Start(ctx)

	triggerDir := filepath.Dir(w.triggerPath)
	if err := os.WriteFile(filepath.Join(triggerDir, TriggerFileName), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("full sweep was never requested")
	}
}

func TestCloseStopsBackgroundLoops(t *testing.T) {
	w, _, _, _ := newTestWatcher(t)
	w.Start(context.Background())
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
