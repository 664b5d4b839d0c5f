// Package reconcile implements the reconciler: the pure decision function
// mapping a (catalog, vault) pair to an action, the Import/Export
// operations that apply it, and the full-sweep driver that walks the
// whole corpus once and returns a bounded retry list.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/bruinnotes/bruin/internal/bruinerr"
	"github.com/bruinnotes/bruin/internal/catalog"
	"github.com/bruinnotes/bruin/internal/vault"
)

// Action is the reconciler decision function's result. Conflict exists
// only as an intermediate classification and is always resolved to
// Import or Export before it is ever returned from Decide.
type Action int

const (
	Skip Action = iota
	Import
	Export
	Conflict
)

func (a Action) String() string {
	switch a {
	case Import:
		return "import"
	case Export:
		return "export"
	case Conflict:
		return "conflict"
	default:
		return "skip"
	}
}

// Decide consumes a candidate pair and returns exactly one of
// {Import, Export, Skip}.
func Decide(catalogPresent bool, catalogFingerprint *string, catalogUpdatedAt time.Time, vaultFingerprint *string, vaultUpdatedAt time.Time) Action {
	if !catalogPresent {
		return Import
	}
	if catalogFingerprint == nil {
		return Export
	}
	if vaultFingerprint == nil {
		return Import
	}
	if *catalogFingerprint == *vaultFingerprint {
		return Skip
	}
	// conflict -> last-write-wins tie-break
	if !catalogUpdatedAt.Before(vaultUpdatedAt) {
		return Export
	}
	return Import
}

// Operation identifies which half of a failed sync a retry re-attempts.
type Operation string

const (
	OpImport Operation = "import"
	OpExport Operation = "export"
)

// FailedSync is an in-memory record of a sync operation that failed,
// capped at 3 retries.
type FailedSync struct {
	NoteID     string
	Operation  Operation
	LastError  string
	RetryCount int
}

const maxRetries = 3

// Phase is the sweep's current activity, surfaced through the progress
// callback.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseImporting Phase = "importing"
	PhaseExporting Phase = "exporting"
)

// ProgressFunc receives best-effort progress updates during a sweep.
// Emitting is never allowed to block or abort the sweep; callers that
// need asynchrony should make their callback non-blocking themselves.
type ProgressFunc func(current, total int, phase Phase)

// Result is what a full sweep returns.
type Result struct {
	FilesSynced int
	Imported    []string
	Failures    []FailedSync
}

// Reconciler ties a catalog and a vault together.
type Reconciler struct {
	Catalog *catalog.Catalog
	Vault   *vault.Vault
	Now     func() time.Time
}

func New(c *catalog.Catalog, v *vault.Vault) *Reconciler {
	return &Reconciler{Catalog: c, Vault: v, Now: time.Now}
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func emit(progress ProgressFunc, current, total int, phase Phase) {
	if progress == nil {
		return
	}
	progress(current, total, phase)
}

// importFromVault upserts a vault-read note into the catalog, preserving
// the DB-only fields the vault does not carry (editorial state,
// workspace id, trashed flag, created_at), then rebuilds the note's tag
// and wiki-link sets from the body.
func (r *Reconciler) importFromVault(ctx context.Context, vn vault.Note) error {
	existing, err := r.Catalog.GetNote(ctx, vn.ID)
	notFound := bruinerr.Is(err, bruinerr.KindNotFound)
	if err != nil && !notFound {
		return err
	}

	state := "draft"
	var workspaceID *string
	createdAt := vn.CreatedAt
	if !notFound {
		state = existing.State
		workspaceID = existing.WorkspaceID
		createdAt = existing.CreatedAt
	}

	fp := vault.Fingerprint(vn.Title, vn.Body)
	n := catalog.Note{
		ID:          vn.ID,
		Title:       vn.Title,
		Body:        vn.Body,
		Tags:        vn.Tags,
		State:       state,
		Pinned:      vn.IsPinned,
		WorkspaceID: workspaceID,
		Fingerprint: &fp,
		CreatedAt:   createdAt,
		UpdatedAt:   vn.UpdatedAt,
	}

	if notFound {
		n.CreatedAt = vn.CreatedAt
		if err := r.Catalog.CreateNote(ctx, n); err != nil {
			return fmt.Errorf("importing note %s: %w", vn.ID, err)
		}
	} else {
		if err := r.Catalog.UpdateNote(ctx, n, vn.UpdatedAt); err != nil {
			return fmt.Errorf("importing note %s: %w", vn.ID, err)
		}
	}

	return r.Catalog.SyncWikiLinks(ctx, vn.ID, vn.Body)
}

// ExportNote pushes the catalog's current record for id out to its vault
// file. Callers that mutate a note's catalog row directly (a tag rename
// rewriting the tags every affected note front-matter lists, say) use
// this to keep the vault file from drifting out of sync until the next
// sweep would have caught it anyway.
func (r *Reconciler) ExportNote(ctx context.Context, id string) error {
	return r.exportToVault(ctx, id)
}

// exportToVault writes the catalog's current record for id to the vault,
// then records the newly-agreeing fingerprint back on the catalog row.
func (r *Reconciler) exportToVault(ctx context.Context, id string) error {
	n, err := r.Catalog.GetNote(ctx, id)
	if err != nil {
		return fmt.Errorf("exporting note %s: %w", id, err)
	}

	vn := vault.Note{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Tags:      n.Tags,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
		IsPinned:  n.Pinned,
	}
	if err := r.Vault.Write(vn); err != nil {
		return fmt.Errorf("exporting note %s: %w", id, err)
	}

	fp := vault.Fingerprint(n.Title, n.Body)
	if err := r.Catalog.UpdateFingerprint(ctx, id, fp); err != nil {
		return fmt.Errorf("exporting note %s: %w", id, err)
	}
	return nil
}

// importByID re-reads <id>.md from the vault and imports it; used only
// by the retry queue, where the id is known but the path must be
// reconstructed.
func (r *Reconciler) importByID(ctx context.Context, id string) error {
	path := r.Vault.PathForID(id)
	vn, err := vault.Read(path, r.now())
	if err != nil {
		return fmt.Errorf("retrying import of %s: %w", id, err)
	}
	return r.importFromVault(ctx, vn)
}

// ReconcileOne reads a single vault file, runs it through Decide against
// the catalog's current record, and applies whatever action that yields.
// It is the unit both Sweep's per-file walk and the watcher's per-event
// handling are built from.
func (r *Reconciler) ReconcileOne(ctx context.Context, path string) (Action, string, error) {
	vn, err := vault.Read(path, r.now())
	if err != nil {
		return Skip, vault.IDFromPath(path), err
	}

	existing, getErr := r.Catalog.GetNote(ctx, vn.ID)
	present := getErr == nil
	if getErr != nil && !bruinerr.Is(getErr, bruinerr.KindNotFound) {
		return Skip, vn.ID, getErr
	}

	var catalogFP *string
	var catalogUpdatedAt time.Time
	if present {
		catalogFP = existing.Fingerprint
		catalogUpdatedAt = existing.UpdatedAt
	}
	vaultFP := vault.Fingerprint(vn.Title, vn.Body)

	action := Decide(present, catalogFP, catalogUpdatedAt, &vaultFP, vn.UpdatedAt)
	switch action {
	case Import:
		if err := r.importFromVault(ctx, vn); err != nil {
			return action, vn.ID, err
		}
	case Export:
		if err := r.exportToVault(ctx, vn.ID); err != nil {
			return action, vn.ID, err
		}
	}
	return action, vn.ID, nil
}

// Sweep runs the retry queue, walks every vault file applying the
// decision function, then exports every non-trashed catalog note the
// walk did not encounter. It returns the count of files synced, the
// list of newly imported ids, and the new failure list (retry queue for
// the next invocation).
func (r *Reconciler) Sweep(ctx context.Context, retryQueue []FailedSync, progress ProgressFunc) (Result, error) {
	var result Result

	// Step 1: retry queue.
	for _, f := range retryQueue {
		if f.RetryCount >= maxRetries {
			result.Failures = append(result.Failures, f)
			continue
		}

		var opErr error
		switch f.Operation {
		case OpImport:
			opErr = r.importByID(ctx, f.NoteID)
		case OpExport:
			opErr = r.exportToVault(ctx, f.NoteID)
		}
		if opErr != nil {
			result.Failures = append(result.Failures, FailedSync{
				NoteID:     f.NoteID,
				Operation:  f.Operation,
				LastError:  opErr.Error(),
				RetryCount: f.RetryCount + 1,
			})
			continue
		}
		if f.Operation == OpImport {
			result.Imported = append(result.Imported, f.NoteID)
		}
		result.FilesSynced++
	}

	// Step 2: walk every vault file.
	paths, err := r.Vault.List()
	if err != nil {
		return result, fmt.Errorf("listing vault for sweep: %w", err)
	}

	seen := make(map[string]struct{}, len(paths))

	for i, path := range paths {
		action, id, err := r.ReconcileOne(ctx, path)
		seen[id] = struct{}{}
		if err != nil {
			op := OpImport
			if action == Export {
				op = OpExport
			}
			result.Failures = append(result.Failures, FailedSync{
				NoteID: id, Operation: op, LastError: err.Error(), RetryCount: 1,
			})
			continue
		}

		phase := PhaseIdle
		switch action {
		case Import:
			phase = PhaseImporting
			result.Imported = append(result.Imported, id)
			result.FilesSynced++
		case Export:
			phase = PhaseExporting
			result.FilesSynced++
		}
		emit(progress, i+1, len(paths), phase)
	}

	// Step 3: export any non-trashed catalog note the walk never saw.
	notTrashed := false
	notes, err := r.Catalog.ListNotes(ctx, catalog.ListFilter{Trashed: &notTrashed})
	if err != nil {
		return result, fmt.Errorf("listing catalog notes for sweep: %w", err)
	}
	for _, n := range notes {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		if err := r.exportToVault(ctx, n.ID); err != nil {
			result.Failures = append(result.Failures, FailedSync{
				NoteID: n.ID, Operation: OpExport, LastError: err.Error(), RetryCount: 1,
			})
			continue
		}
		result.FilesSynced++
	}

	emit(progress, len(paths), len(paths), PhaseIdle)
	return result, nil
}
