// Package readtrack persists workstation-local reading state: which
// finding versions the user has already looked at, and the highest
// package version seen per audit. It is a convenience layer; all
// failures here are reported but never block the workflow.
package readtrack

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ifs-audit/actionplan/internal/audit"
)

//go:embed schema.sql
var schemaSQL string

// Store is a SQLite-backed read-mark and lineage store.
// WAL mode allows a reader alongside the single writer.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the tracking database at path. Idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open tracking database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect tracking database: %w", err)
	}

	// Single writer avoids SQLITE_BUSY on this tiny database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply tracking schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// markKey is the read-mark identity: a finding is "unread" again every
// time the package version advances.
func markKey(version int, findingID string) string {
	return fmt.Sprintf("v%d-%s", version, findingID)
}

// MarkRead records that the user has viewed a finding at a version.
func (s *Store) MarkRead(version int, findingID string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO read_marks (mark_key, read_at) VALUES (?, ?)`,
		markKey(version, findingID), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// IsRead reports whether a finding at a version has been viewed.
func (s *Store) IsRead(version int, findingID string) (bool, error) {
	var key string
	err := s.db.QueryRow(
		`SELECT mark_key FROM read_marks WHERE mark_key = ?`,
		markKey(version, findingID),
	).Scan(&key)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query read mark: %w", err)
	}
	return true, nil
}

// UnreadFindings filters the document's findings down to those not yet
// viewed at the document's current version.
func (s *Store) UnreadFindings(d *audit.Document) ([]string, error) {
	out := []string{}
	for i := range d.Findings {
		read, err := s.IsRead(d.Metadata.InternalVersion, d.Findings[i].ID)
		if err != nil {
			return nil, err
		}
		if !read {
			out = append(out, d.Findings[i].ID)
		}
	}
	return out, nil
}

// Observe records the loaded document in the lineage table and reports
// a warning when the version did not advance past the last one seen
// for the same audit. A stale or duplicated package is worth flagging
// once files circulate by hand, but it is the user's call to proceed.
func (s *Store) Observe(d *audit.Document, fingerprint string) (warning string, err error) {
	var lastVersion int
	var lastFingerprint string
	err = s.db.QueryRow(
		`SELECT last_version, fingerprint FROM lineage WHERE coid = ?`,
		d.Metadata.COID,
	).Scan(&lastVersion, &lastFingerprint)
	switch {
	case err == sql.ErrNoRows:
		// First sighting of this audit.
	case err != nil:
		return "", fmt.Errorf("query lineage: %w", err)
	case d.Metadata.InternalVersion < lastVersion:
		warning = fmt.Sprintf("package is v%d but v%d of audit %s was already seen on this machine; this looks like an older copy",
			d.Metadata.InternalVersion, lastVersion, d.Metadata.COID)
	case d.Metadata.InternalVersion == lastVersion && fingerprint != lastFingerprint:
		warning = fmt.Sprintf("package is v%d of audit %s but differs from the v%d already seen on this machine; two copies may have diverged",
			d.Metadata.InternalVersion, d.Metadata.COID, lastVersion)
	}

	if d.Metadata.InternalVersion >= lastVersion {
		_, err = s.db.Exec(
			`INSERT OR REPLACE INTO lineage (coid, last_version, fingerprint, updated_at) VALUES (?, ?, ?, ?)`,
			d.Metadata.COID, d.Metadata.InternalVersion, fingerprint, s.now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return warning, fmt.Errorf("record lineage: %w", err)
		}
	}
	return warning, nil
}
