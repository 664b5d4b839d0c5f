package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bruinnotes/bruin/internal/bruinerr"
)

// Note is a catalog row plus its derived tag set.
type Note struct {
	ID          string
	Title       string
	Body        string
	WordCount   int
	State       string
	Trashed     bool
	Pinned      bool
	VaultPath   *string
	Fingerprint *string
	WorkspaceID *string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tags        []string
}

// ListFilter narrows ListNotes. Zero-value fields mean "no filter".
type ListFilter struct {
	Tag         string
	Trashed     *bool
	WorkspaceID string
	Limit       int
	Offset      int
}

func wordCount(body string) int {
	return len(strings.Fields(body))
}

// validTransition allows only draft<->review and review<->published.
func validTransition(from, to string) bool {
	if from == to {
		return true
	}
	switch {
	case from == "draft" && to == "review":
		return true
	case from == "review" && to == "draft":
		return true
	case from == "review" && to == "published":
		return true
	case from == "published" && to == "review":
		return true
	default:
		return false
	}
}

// CreateNote inserts a fresh note, defaulting to version 1, and stores
// whatever fingerprint n carries (nil for a note not yet in the vault).
func (c *Catalog) CreateNote(ctx context.Context, n Note) error {
	if n.State == "" {
		n.State = "draft"
	}
	n.WordCount = wordCount(n.Body)
	if n.Version == 0 {
		n.Version = 1
	}

	return c.RunInTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notes (id, title, body, word_count, state, trashed_at, pinned,
				vault_path, fingerprint, workspace_id, version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?)
		`, n.ID, n.Title, n.Body, n.WordCount, n.State, boolToInt(n.Pinned),
			n.VaultPath, n.Fingerprint, n.WorkspaceID, n.Version, n.CreatedAt, n.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating note %s: %w", n.ID, err)
		}
		return replaceNoteTags(ctx, tx, n.ID, n.Tags)
	})
}

// GetNote fetches a single note by id, including its tag set.
func (c *Catalog) GetNote(ctx context.Context, id string) (Note, error) {
	row := c.db.QueryRowContext(ctx, noteSelectColumns+` WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Note{}, bruinerr.NotFound("note %s not found", id)
		}
		return Note{}, fmt.Errorf("fetching note %s: %w", id, err)
	}
	tags, err := c.tagsForNote(ctx, id)
	if err != nil {
		return Note{}, err
	}
	n.Tags = tags
	return n, nil
}

const noteSelectColumns = `
	SELECT id, title, body, word_count, state, trashed_at, pinned,
		vault_path, fingerprint, workspace_id, version, created_at, updated_at
	FROM notes
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (Note, error) {
	var n Note
	var trashedAt sql.NullTime
	var pinned int
	var vaultPath, fingerprint, workspaceID sql.NullString

	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.WordCount, &n.State, &trashedAt, &pinned,
		&vaultPath, &fingerprint, &workspaceID, &n.Version, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return Note{}, err
	}

	n.Trashed = trashedAt.Valid
	n.Pinned = pinned != 0
	if vaultPath.Valid {
		v := vaultPath.String
		n.VaultPath = &v
	}
	if fingerprint.Valid {
		f := fingerprint.String
		n.Fingerprint = &f
	}
	if workspaceID.Valid {
		w := workspaceID.String
		n.WorkspaceID = &w
	}
	return n, nil
}

// UpdateNote replaces title/body/state/pinned/fingerprint/vault path for
// an existing note, bumping version and re-deriving word count. updatedAt
// is supplied by the caller because imports may need to set it to an
// older timestamp when an older vault version legitimately wins a
// conflict.
func (c *Catalog) UpdateNote(ctx context.Context, n Note, updatedAt time.Time) error {
	return c.RunInTransaction(ctx, func(tx *sql.Tx) error {
		var currentState string
		if err := tx.QueryRowContext(ctx, `SELECT state FROM notes WHERE id = ?`, n.ID).Scan(&currentState); err != nil {
			if err == sql.ErrNoRows {
				return bruinerr.NotFound("note %s not found", n.ID)
			}
			return fmt.Errorf("fetching current state for %s: %w", n.ID, err)
		}
		if n.State == "" {
			n.State = currentState
		}
		if !validTransition(currentState, n.State) {
			return bruinerr.Malformed("illegal state transition %s -> %s", currentState, n.State)
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE notes SET title = ?, body = ?, word_count = ?, state = ?, pinned = ?,
				vault_path = ?, fingerprint = ?, workspace_id = ?, version = version + 1,
				updated_at = ?
			WHERE id = ?
		`, n.Title, n.Body, wordCount(n.Body), n.State, boolToInt(n.Pinned),
			n.VaultPath, n.Fingerprint, n.WorkspaceID, updatedAt, n.ID)
		if err != nil {
			return fmt.Errorf("updating note %s: %w", n.ID, err)
		}
		if n.Tags != nil {
			return replaceNoteTags(ctx, tx, n.ID, n.Tags)
		}
		return nil
	})
}

// SoftDelete sets the trashed flag, leaving the row and its edges intact.
func (c *Catalog) SoftDelete(ctx context.Context, id string, at time.Time) error {
	res, err := c.db.ExecContext(ctx, `UPDATE notes SET trashed_at = ?, updated_at = ? WHERE id = ?`, at, at, id)
	if err != nil {
		return fmt.Errorf("trashing note %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// Restore clears the trashed flag.
func (c *Catalog) Restore(ctx context.Context, id string, at time.Time) error {
	res, err := c.db.ExecContext(ctx, `UPDATE notes SET trashed_at = NULL, updated_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("restoring note %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// HardDelete removes the catalog row (and, via ON DELETE CASCADE, its
// tag/link edges). It never touches the vault file; that is the caller's
// job once this returns successfully.
func (c *Catalog) HardDelete(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting note %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

// UpdateFingerprint records a freshly computed content fingerprint
// without touching version or updated_at: export writes the note to the
// vault unchanged, it only learns that the vault now agrees with it.
func (c *Catalog) UpdateFingerprint(ctx context.Context, id, fingerprint string) error {
	res, err := c.db.ExecContext(ctx, `UPDATE notes SET fingerprint = ? WHERE id = ?`, fingerprint, id)
	if err != nil {
		return fmt.Errorf("updating fingerprint for %s: %w", id, err)
	}
	return requireRowAffected(res, id)
}

func requireRowAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows for %s: %w", id, err)
	}
	if n == 0 {
		return bruinerr.NotFound("note %s not found", id)
	}
	return nil
}

// ListNotes returns notes ordered by (pinned desc, updated_at desc),
// filtered by tag, trashed flag, and workspace, with pagination.
func (c *Catalog) ListNotes(ctx context.Context, f ListFilter) ([]Note, error) {
	query := noteSelectColumns
	var args []any
	var where []string

	if f.Tag != "" {
		query = `
			SELECT n.id, n.title, n.body, n.word_count, n.state, n.trashed_at, n.pinned,
				n.vault_path, n.fingerprint, n.workspace_id, n.version, n.created_at, n.updated_at
			FROM notes n
			JOIN note_tags nt ON nt.note_id = n.id
			JOIN tags t ON t.id = nt.tag_id
		`
		where = append(where, "t.name = ?")
		args = append(args, f.Tag)
	}
	if f.Trashed != nil {
		if *f.Trashed {
			where = append(where, "trashed_at IS NOT NULL")
		} else {
			where = append(where, "trashed_at IS NULL")
		}
	}
	if f.WorkspaceID != "" {
		where = append(where, "workspace_id = ?")
		args = append(args, f.WorkspaceID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY pinned DESC, updated_at DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note row: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}

	for i := range notes {
		tags, err := c.tagsForNote(ctx, notes[i].ID)
		if err != nil {
			return nil, err
		}
		notes[i].Tags = tags
	}
	return notes, nil
}

// Preview returns the first 200 bytes of body, truncated back to the
// nearest valid UTF-8 character boundary.
func Preview(body string) string {
	const max = 200
	if len(body) <= max {
		return body
	}
	end := max
	for end > 0 && !utf8.RuneStart(body[end]) {
		end--
	}
	return body[:end]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
