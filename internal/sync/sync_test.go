package sync

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bruinnotes/bruin/internal/catalog"
	"github.com/bruinnotes/bruin/internal/reconcile"
	"github.com/bruinnotes/bruin/internal/vault"
)

func newTestController(t *testing.T) (*Controller, *catalog.Catalog, *vault.Vault) {
	t.Helper()
	c, err := catalog.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open catalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	dir := t.TempDir()
	v, err := vault.Resolve(dir, filepath.Join(dir, "legacy-unused"))
	if err != nil {
		t.Fatalf("Resolve vault: %v", err)
	}

	r := reconcile.New(c, v)
	ctrl := New(r, dir, Hooks{})
	return ctrl, c, v
}

func TestTriggerSyncReportsFilesSyncedAndClearsError(t *testing.T) {
	ctrl, c, _ := newTestController(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := c.CreateNote(ctx, catalog.Note{ID: "X", Title: "A", Body: "hello", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}

	ctrl.setError("stale error from an earlier sweep")

	if err := ctrl.TriggerSync(ctx); err != nil {
		t.Fatalf("TriggerSync: %v", err)
	}

	st := ctrl.Status()
	if st.Syncing {
		t.Fatal("expected Syncing to be false after TriggerSync returns")
	}
	if st.FilesSynced != 1 {
		t.Fatalf("expected one file synced, got %+v", st)
	}
	if st.Error != "" {
		t.Fatalf("expected no error, got %q", st.Error)
	}
	if st.LastSweep.IsZero() {
		t.Fatal("expected LastSweep to be set")
	}
}

func TestTriggerSyncRefusesWhenVaultUnavailable(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctx := context.Background()

	// Point the controller at a vault directory that does not exist.
	badDir := filepath.Join(t.TempDir(), "not-a-dir")
	ctrl.vaultDir = badDir

	if err := ctrl.TriggerSync(ctx); err == nil {
		t.Fatal("expected TriggerSync to refuse an unavailable vault")
	}
	st := ctrl.Status()
	if st.Error == "" {
		t.Fatal("expected Status().Error to be set after a refused sync")
	}
}

func TestTriggerSyncSerializesConcurrentCalls(t *testing.T) {
	ctrl, c, _ := newTestController(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 20; i++ {
		id := string(rune('A' + i))
		if err := c.CreateNote(ctx, catalog.Note{ID: id, Title: id, Body: "body", CreatedAt: now, UpdatedAt: now}); err != nil {
			t.Fatal(err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ctrl.TriggerSync(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent TriggerSync failed: %v", err)
		}
	}

	st := ctrl.Status()
	if st.Syncing {
		t.Fatal("expected Syncing false once all concurrent calls have returned")
	}
}

func TestStatusReturnsIndependentRetryQueueCopy(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.mu.Lock()
	ctrl.state.RetryQueue = []reconcile.FailedSync{{NoteID: "X", Operation: reconcile.OpExport, RetryCount: 1}}
	ctrl.mu.Unlock()

	got := ctrl.Status()
	got.RetryQueue[0].NoteID = "mutated"

	again := ctrl.Status()
	if again.RetryQueue[0].NoteID != "X" {
		t.Fatalf("Status() leaked internal retry queue slice, got %q", again.RetryQueue[0].NoteID)
	}
}
