// Package catalog implements the structured store: notes, tags, the
// note-tag join, wiki-links, a full-text index kept synchronous by
// triggers, the activity log, and small key-value settings. It is a
// single SQLite file opened in WAL mode with foreign-key enforcement on,
// accessed through the pure-Go ncruces/go-sqlite3 driver (no cgo).
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Catalog wraps the opened database handle. All access is expected to be
// serialized by an external process-wide lock; Catalog itself does not
// lock — that is the caller's (internal/sync's) responsibility via its
// in-process catalog mutex.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if absent) the single-file catalog at path, turns
// on WAL journaling and foreign-key enforcement, and applies the schema.
func Open(ctx context.Context, path string) (*Catalog, error) {
	// foreign_keys is a per-connection pragma, unlike journal_mode=WAL
	// which is persisted in the file. database/sql's pool can open more
	// than one physical connection under concurrent use (the daemon's
	// watcher debounce goroutine and its periodic sweep can both reach
	// the catalog), and a connection opened after a plain ExecContext
	// pragma call never gets foreign keys turned on. Passing it as a DSN
	// parameter instead applies it to every connection the pool opens.
	dsn := path
	if dsn == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	} else {
		dsn = "file:" + dsn + "?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	// The catalog is serialized by an external lock (internal/sync), so
	// a single physical connection is both correct and removes any
	// remaining doubt about per-connection pragma state.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Catalog{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error { return c.db.Close() }

// UnderlyingDB exposes the raw handle for callers (tests, doctor-style
// diagnostics) that need it directly. Bypasses the catalog's API surface;
// use with caution.
func (c *Catalog) UnderlyingDB() *sql.DB { return c.db }

// RunInTransaction runs fn inside a single transaction, rolling back on
// error or panic and committing otherwise. Multi-statement catalog
// mutations go through this so a half-applied note/tag/link update is
// never visible; single-statement ones run directly on the handle.
func (c *Catalog) RunInTransaction(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}
