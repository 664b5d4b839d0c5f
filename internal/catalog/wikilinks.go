package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
)

// wikiLinkPattern matches [[title]] occurrences.
var wikiLinkPattern = regexp.MustCompile(`\[\[([^\]\n]+)\]\]`)

// SyncWikiLinks rebuilds the outgoing wiki-link edges for one note:
// delete every edge whose source is this note, scan the body for
// [[title]], resolve each to a non-trashed note by exact title match,
// and insert (this, target, wiki_link) for every target other than
// itself. Unresolved titles are silently dropped.
func (c *Catalog) SyncWikiLinks(ctx context.Context, noteID, body string) error {
	return c.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM wiki_links WHERE source_id = ?`, noteID); err != nil {
			return fmt.Errorf("clearing wiki-links for %s: %w", noteID, err)
		}

		titles := wikiLinkPattern.FindAllStringSubmatch(body, -1)
		seen := make(map[string]struct{}, len(titles))
		for _, m := range titles {
			title := m[1]
			if _, dup := seen[title]; dup {
				continue
			}
			seen[title] = struct{}{}

			var targetID string
			err := tx.QueryRowContext(ctx, `
				SELECT id FROM notes WHERE title = ? AND trashed_at IS NULL LIMIT 1
			`, title).Scan(&targetID)
			if err == sql.ErrNoRows {
				continue
			}
			if err != nil {
				return fmt.Errorf("resolving wiki-link title %q: %w", title, err)
			}
			if targetID == noteID {
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO wiki_links (source_id, target_id, kind) VALUES (?, ?, 'wiki_link')
			`, noteID, targetID); err != nil {
				return fmt.Errorf("inserting wiki-link %s -> %s: %w", noteID, targetID, err)
			}
		}
		return nil
	})
}
