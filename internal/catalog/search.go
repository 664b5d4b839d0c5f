// Full-text search: BM25-ranked FTS5 querying with <mark>-wrapped
// snippets, passing the caller's query straight through to MATCH without
// rewriting.
package catalog

import (
	"context"
	"fmt"
)

// SearchResult is one full-text match with a snippeted, <mark>-wrapped
// preview of the matching region.
type SearchResult struct {
	ID      string
	Title   string
	Snippet string
}

// Search runs an FTS5 MATCH query over (title, body) and returns results
// ordered by relevance (best match first), each with a snippet.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx, `
		SELECT n.id, n.title, snippet(notes_fts, 1, '<mark>', '</mark>', '...', 32)
		FROM notes_fts
		JOIN notes n ON notes_fts.rowid = n.rowid
		WHERE notes_fts MATCH ? AND n.trashed_at IS NULL
		ORDER BY bm25(notes_fts)
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching notes: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
