package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bruinnotes/bruin/internal/bruinerr"
	"github.com/bruinnotes/bruin/internal/tagextract"
)

// Tag is a catalog tag row.
type Tag struct {
	Name      string
	Parent    string
	NoteCount int
	Pinned    bool
}

func (c *Catalog) tagsForNote(ctx context.Context, noteID string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN note_tags nt ON nt.tag_id = t.id
		WHERE nt.note_id = ?
		ORDER BY t.name
	`, noteID)
	if err != nil {
		return nil, fmt.Errorf("fetching tags for note %s: %w", noteID, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// ensureTag returns the id of an existing or freshly created tag row.
func ensureTag(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("looking up tag %s: %w", name, err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO tags (name, parent) VALUES (?, ?)`, name, nullIfEmpty(tagextract.Parent(name)))
	if err != nil {
		return 0, fmt.Errorf("creating tag %s: %w", name, err)
	}
	return res.LastInsertId()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// replaceNoteTags atomically replaces a note's tag edges, creating any
// tag rows that do not yet exist and refreshing cached note counts for
// every tag touched (old or new).
func replaceNoteTags(ctx context.Context, tx *sql.Tx, noteID string, names []string) error {
	var affected []string
	rows, err := tx.QueryContext(ctx, `
		SELECT t.name FROM tags t JOIN note_tags nt ON nt.tag_id = t.id WHERE nt.note_id = ?
	`, noteID)
	if err != nil {
		return fmt.Errorf("listing current tags for %s: %w", noteID, err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		affected = append(affected, name)
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("clearing tags for %s: %w", noteID, err)
	}

	for _, name := range names {
		tagID, err := ensureTag(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO note_tags (note_id, tag_id) VALUES (?, ?)`, noteID, tagID); err != nil {
			return fmt.Errorf("linking note %s to tag %s: %w", noteID, name, err)
		}
		affected = append(affected, name)
	}

	return refreshTagCounts(ctx, tx, affected)
}

func refreshTagCounts(ctx context.Context, tx *sql.Tx, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		seen[n] = struct{}{}
	}
	for name := range seen {
		if _, err := tx.ExecContext(ctx, `
			UPDATE tags SET note_count = (
				SELECT COUNT(*) FROM note_tags WHERE tag_id = tags.id
			) WHERE name = ?
		`, name); err != nil {
			return fmt.Errorf("refreshing count for tag %s: %w", name, err)
		}
	}
	return nil
}

// ListTags returns every tag ordered by name.
func (c *Catalog) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name, parent, note_count, pinned FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		var parent sql.NullString
		var pinned int
		if err := rows.Scan(&t.Name, &parent, &t.NoteCount, &pinned); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		t.Parent = parent.String
		t.Pinned = pinned != 0
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// RenameTag renames old to new, failing if new already exists. Every
// descendant tag (name beginning with old+"/") is rewritten to carry the
// new prefix, with its parent recomputed. Returns the ids of every note
// whose tag set changed, so the caller can re-serialize their vault files
// and keep front matter consistent with the catalog.
func (c *Catalog) RenameTag(ctx context.Context, oldName, newName string) ([]string, error) {
	var affectedNotes []string

	err := c.RunInTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags WHERE name = ?`, newName).Scan(&exists); err != nil {
			return fmt.Errorf("checking for existing tag %s: %w", newName, err)
		}
		if exists > 0 {
			return bruinerr.Malformed("tag %s already exists", newName)
		}

		var oldID int64
		if err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, oldName).Scan(&oldID); err != nil {
			if err == sql.ErrNoRows {
				return bruinerr.NotFound("tag %s not found", oldName)
			}
			return fmt.Errorf("looking up tag %s: %w", oldName, err)
		}

		renamed := []string{oldName}
		rows, err := tx.QueryContext(ctx, `SELECT id, name FROM tags WHERE name LIKE ? ESCAPE '\'`, likePrefix(oldName)+"/%")
		if err != nil {
			return fmt.Errorf("finding descendant tags of %s: %w", oldName, err)
		}
		type descendant struct {
			id   int64
			name string
		}
		var descendants []descendant
		for rows.Next() {
			var d descendant
			if err := rows.Scan(&d.id, &d.name); err != nil {
				rows.Close()
				return err
			}
			descendants = append(descendants, d)
		}
		rows.Close()

		if err := retagNoteSet(ctx, tx, oldID, &affectedNotes); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE tags SET name = ?, parent = ? WHERE id = ?`,
			newName, nullIfEmpty(tagextract.Parent(newName)), oldID); err != nil {
			return fmt.Errorf("renaming tag %s: %w", oldName, err)
		}

		for _, d := range descendants {
			newDescendantName := newName + strings.TrimPrefix(d.name, oldName)
			if err := retagNoteSet(ctx, tx, d.id, &affectedNotes); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `UPDATE tags SET name = ?, parent = ? WHERE id = ?`,
				newDescendantName, nullIfEmpty(tagextract.Parent(newDescendantName)), d.id); err != nil {
				return fmt.Errorf("renaming descendant tag %s: %w", d.name, err)
			}
			renamed = append(renamed, newDescendantName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dedupeStrings(affectedNotes), nil
}

// retagNoteSet appends the ids of notes currently carrying tagID to out.
func retagNoteSet(ctx context.Context, tx *sql.Tx, tagID int64, out *[]string) error {
	rows, err := tx.QueryContext(ctx, `SELECT note_id FROM note_tags WHERE tag_id = ?`, tagID)
	if err != nil {
		return fmt.Errorf("finding notes for tag id %d: %w", tagID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		*out = append(*out, id)
	}
	return rows.Err()
}

func likePrefix(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// DeleteTag removes a tag and its edges; notes keep their remaining tags.
func (c *Catalog) DeleteTag(ctx context.Context, name string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM tags WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting tag %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows for tag %s: %w", name, err)
	}
	if n == 0 {
		return bruinerr.NotFound("tag %s not found", name)
	}
	return nil
}
