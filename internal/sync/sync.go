// Package sync is the process-wide sync controller: it owns the single
// lock that serializes access to the catalog and vault between the
// watcher's debounced flushes and any explicitly requested sweep, tracks
// the current sync status, and fans out notifications to whatever is
// listening (a CLI command, a webhook dispatcher).
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bruinnotes/bruin/internal/reconcile"
	"github.com/bruinnotes/bruin/internal/vault"
	"github.com/bruinnotes/bruin/internal/watcher"
)

// State is a snapshot of the controller's current activity.
type State struct {
	Syncing     bool
	LastSweep   time.Time
	Error       string
	FilesSynced int
	Total       int
	Current     int
	Phase       reconcile.Phase
	RetryQueue  []reconcile.FailedSync
}

// Hooks are best-effort notifications fired as a sweep progresses. Any
// of them may be nil.
type Hooks struct {
	NotesImported func(ids []string)
	SyncProgress  func(current, total int, phase reconcile.Phase)
	StatusChanged func()
}

// Controller ties a Reconciler to a vault directory and serializes every
// access to the catalog behind one lock, shared with an attached
// Watcher so the two never race on the same SQLite handle.
type Controller struct {
	r        *reconcile.Reconciler
	vaultDir string
	hooks    Hooks

	catalogLock sync.Mutex

	state State
	mu    sync.Mutex

	w *watcher.Watcher
}

func New(r *reconcile.Reconciler, vaultDir string, hooks Hooks) *Controller {
	return &Controller{r: r, vaultDir: vaultDir, hooks: hooks}
}

// CatalogLock exposes the controller's lock so a Watcher constructed
// separately can be wired to serialize against it via watcher.WithLock.
func (c *Controller) CatalogLock() sync.Locker { return &c.catalogLock }

// AttachWatcher wires w's full-sweep and status-changed signals to this
// controller. w must have been built with c.CatalogLock() so that
// debounced per-file flushes and an explicit TriggerSync never run
// concurrently against the same catalog handle.
func (c *Controller) AttachWatcher(w *watcher.Watcher) {
	c.w = w
	w.OnFullSweepRequested = func() {
		if err := c.TriggerSync(context.Background()); err != nil {
			c.setError(err.Error())
		}
	}
	w.OnStatusChanged = func() {
		if c.hooks.StatusChanged != nil {
			c.hooks.StatusChanged()
		}
	}
}

// StopWatcher closes the attached watcher, if any, and clears it. It is
// the only place a watcher's lifetime ends — callers never hold a
// watcher handle of their own to close independently.
func (c *Controller) StopWatcher() error {
	if c.w == nil {
		return nil
	}
	err := c.w.Close()
	c.w = nil
	return err
}

// VaultAvailability reports whether the controlled vault directory
// currently exists and accepts writes.
func (c *Controller) VaultAvailability() vault.Availability {
	return vault.CheckAvailability(c.vaultDir)
}

// Status returns a snapshot of the controller's current state.
func (c *Controller) Status() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.RetryQueue = append([]reconcile.FailedSync(nil), c.state.RetryQueue...)
	return s
}

func (c *Controller) setSyncing(syncing bool) {
	c.mu.Lock()
	c.state.Syncing = syncing
	c.mu.Unlock()
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.state.Error = msg
	c.mu.Unlock()
}

func (c *Controller) setProgress(current, total int, phase reconcile.Phase) {
	c.mu.Lock()
	c.state.Current = current
	c.state.Total = total
	c.state.Phase = phase
	c.mu.Unlock()
	if c.hooks.SyncProgress != nil {
		c.hooks.SyncProgress(current, total, phase)
	}
}

// TriggerSync runs one full sweep, using and replacing the controller's
// current retry queue. Concurrent calls serialize on the catalog lock
// rather than running in parallel or being rejected. A vault that is not
// currently writable is refused outright, without attempting a sweep.
func (c *Controller) TriggerSync(ctx context.Context) error {
	avail := c.VaultAvailability()
	if !avail.Writable {
		msg := fmt.Sprintf("vault unavailable: %s", avail.Reason)
		c.setError(msg)
		return fmt.Errorf("%s", msg)
	}

	c.catalogLock.Lock()
	defer c.catalogLock.Unlock()

	c.setSyncing(true)
	defer c.setSyncing(false)

	c.mu.Lock()
	queue := append([]reconcile.FailedSync(nil), c.state.RetryQueue...)
	c.mu.Unlock()

	res, err := c.r.Sweep(ctx, queue, c.setProgress)
	if err != nil {
		c.setError(err.Error())
		return err
	}

	c.mu.Lock()
	c.state.LastSweep = time.Now()
	c.state.FilesSynced = res.FilesSynced
	c.state.RetryQueue = res.Failures
	c.state.Error = ""
	c.mu.Unlock()

	if len(res.Imported) > 0 && c.hooks.NotesImported != nil {
		c.hooks.NotesImported(res.Imported)
	}
	if c.hooks.StatusChanged != nil {
		c.hooks.StatusChanged()
	}
	return nil
}
