// Package watcher drives the reconciler off filesystem notifications
// instead of an explicit sweep request: it watches the vault directory and
// a small control directory, classifies raw fsnotify events, batches them
// in a short debounce window, and applies each flushed event against a
// Reconciler.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bruinnotes/bruin/internal/bruinerr"
	"github.com/bruinnotes/bruin/internal/reconcile"
	"github.com/bruinnotes/bruin/internal/vault"
)

// TriggerFileName is the control-directory file whose creation or write
// requests a full sweep rather than a per-path reconcile.
const TriggerFileName = ".bruin-sync-trigger"

const (
	tickInterval  = 200 * time.Millisecond
	debounceAfter = 500 * time.Millisecond
)

// EventKind classifies a raw filesystem notification once placeholder,
// extension, and control-path filtering has been applied.
type EventKind int

const (
	eventChanged EventKind = iota
	eventRemoved
	eventFullSweep
)

// Logger receives best-effort diagnostics; a nil Logger discards them.
// Watcher errors are always logged and swallowed — a single bad file or
// a transient read failure never stops the watch loop.
type Logger interface {
	Debugf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Errorf(string, ...any) {}

// Watcher owns an fsnotify handle over the vault and control directories
// and turns debounced events into reconciler actions.
type Watcher struct {
	fsw         *fsnotify.Watcher
	reconciler  *reconcile.Reconciler
	triggerPath string
	lock        sync.Locker
	log         Logger

	// OnFullSweepRequested is invoked, with the watcher's own lock already
	// released, whenever a flushed event is the trigger file. It is the
	// watcher's only coupling to the process-wide sync controller: the
	// controller owns the retry queue and the catalog lock serialization
	// for a full sweep, the watcher only signals that one was asked for.
	OnFullSweepRequested func()

	// OnStatusChanged is invoked once after any flush round that touched
	// at least one path, consolidating however many individual actions
	// that round applied into a single status notification.
	OnStatusChanged func()

	pendingMu sync.Mutex
	pending   map[string]pendingEvent

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type pendingEvent struct {
	kind EventKind
	last time.Time
}

// Option configures a Watcher at construction time.
type Option func(*Watcher)

// WithLogger overrides the default no-op Logger.
func WithLogger(l Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// WithLock supplies the process-wide lock guarding the catalog. If unset,
// the watcher synchronizes only against itself.
func WithLock(l sync.Locker) Option {
	return func(w *Watcher) { w.lock = l }
}

// New starts watching vaultDir and controlDir (non-recursively) and
// returns a Watcher ready for Start.
func New(r *reconcile.Reconciler, vaultDir, controlDir string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(vaultDir); err != nil {
		fsw.Close()
		return nil, err
	}
	if controlDir != vaultDir {
		if err := fsw.Add(controlDir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		fsw:         fsw,
		reconciler:  r,
		triggerPath: filepath.Join(controlDir, TriggerFileName),
		log:         noopLogger{},
		pending:     make(map[string]pendingEvent),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.lock == nil {
		w.lock = &sync.Mutex{}
	}
	return w, nil
}

// Start launches the event-classification and debounce-flush loops. The
// watcher stops when ctx is canceled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(2)
	go w.classifyLoop(ctx)
	go w.flushLoop(ctx)
}

// Close stops the watch loops and releases the underlying fsnotify
// handle. It blocks until both background goroutines have exited, so the
// caller never leaks a running watcher past this call.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) classifyLoop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			kind, path, keep := classify(ev, w.triggerPath)
			if !keep {
				continue
			}
			w.markPending(path, kind)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Errorf("watcher: fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) markPending(path string, kind EventKind) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.pending[path] = pendingEvent{kind: kind, last: time.Now()}
}

func (w *Watcher) flushLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.flushDue()
		}
	}
}

// flushDue applies every pending event whose last observation is at
// least debounceAfter old, then emits one consolidated status-changed
// signal if anything was applied.
func (w *Watcher) flushDue() {
	now := time.Now()

	w.pendingMu.Lock()
	var due []struct {
		path string
		kind EventKind
	}
	for path, pe := range w.pending {
		if now.Sub(pe.last) >= debounceAfter {
			due = append(due, struct {
				path string
				kind EventKind
			}{path, pe.kind})
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	if len(due) == 0 {
		return
	}

	for _, d := range due {
		w.apply(d.kind, d.path)
	}
	if w.OnStatusChanged != nil {
		w.OnStatusChanged()
	}
}

func (w *Watcher) apply(kind EventKind, path string) {
	if kind == eventFullSweep {
		// The sync controller owns the catalog lock for a full sweep
		// (it also needs it for the retry queue); the watcher does not
		// acquire its own lock here to avoid a nested re-entrant lock.
		if w.OnFullSweepRequested != nil {
			w.OnFullSweepRequested()
		}
		return
	}

	w.lock.Lock()
	defer w.lock.Unlock()
	switch kind {
	case eventChanged:
		w.applyChanged(path)
	case eventRemoved:
		w.applyRemoved(path)
	}
}

func (w *Watcher) applyChanged(path string) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return
	}
	action, id, err := w.reconciler.ReconcileOne(context.Background(), path)
	if err != nil {
		w.log.Errorf("watcher: reconciling %s: %v", path, err)
		return
	}
	w.log.Debugf("watcher: %s %s", action, id)
}

func (w *Watcher) applyRemoved(path string) {
	ctx := context.Background()
	id := vault.IDFromPath(path)

	n, err := w.reconciler.Catalog.GetNote(ctx, id)
	if err != nil {
		if !bruinerr.Is(err, bruinerr.KindNotFound) {
			w.log.Errorf("watcher: looking up %s for removal: %v", id, err)
		}
		return
	}
	if n.Trashed {
		return
	}
	if err := w.reconciler.Catalog.SoftDelete(ctx, id, time.Now().UTC()); err != nil {
		w.log.Errorf("watcher: trashing %s: %v", id, err)
	}
}

// classify turns a raw fsnotify.Event into a kind worth debouncing, or
// discards it. Cloud-daemon placeholder files and anything outside .md
// vault files or the trigger file itself are dropped here.
func classify(ev fsnotify.Event, triggerPath string) (EventKind, string, bool) {
	if ev.Name == triggerPath {
		if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
			return eventFullSweep, ev.Name, true
		}
		return 0, "", false
	}

	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return 0, "", false
	}
	if filepath.Ext(name) != ".md" {
		return 0, "", false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		return eventChanged, ev.Name, true
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return eventRemoved, ev.Name, true
	default:
		return 0, "", false
	}
}
