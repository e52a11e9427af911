// Package state persists per-document content fingerprints between builds so
// ordinary builders can skip unchanged documents. Inventory builds bypass
// this store entirely and always reprocess everything.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed fingerprint store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens a build state database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS doc_fingerprints (
		docname TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Fingerprint returns the stored fingerprint for a docname, or "" when the
// document has never been built.
func (s *Store) Fingerprint(ctx context.Context, docname string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fp string
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM doc_fingerprints WHERE docname = ?`, docname).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query fingerprint: %w", err)
	}
	return fp, nil
}

// Record stores the fingerprint for a docname, replacing any previous value.
func (s *Store) Record(ctx context.Context, docname, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO doc_fingerprints (docname, fingerprint, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(docname) DO UPDATE SET fingerprint = excluded.fingerprint, updated_at = excluded.updated_at`,
		docname, fingerprint, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("record fingerprint: %w", err)
	}
	return nil
}

// Prune removes fingerprints for documents no longer part of the build.
func (s *Store) Prune(ctx context.Context, known map[string]struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT docname FROM doc_fingerprints`)
	if err != nil {
		return fmt.Errorf("list fingerprints: %w", err)
	}
	var stale []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan fingerprint row: %w", err)
		}
		if _, ok := known[name]; !ok {
			stale = append(stale, name)
		}
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close fingerprint rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate fingerprints: %w", err)
	}

	for _, name := range stale {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM doc_fingerprints WHERE docname = ?`, name); err != nil {
			return fmt.Errorf("prune fingerprint: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
