package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Outcome is the terminal result recorded for a sent workout file.
// Rejections are remembered too, so reruns never resend known-bad
// input.
type Outcome string

const (
	OutcomeUploaded Outcome = "uploaded"
	OutcomeRejected Outcome = "rejected"
)

// SentRecord is one remembered send: the file identity plus what the
// server made of it. Slug is empty for rejected files.
type SentRecord struct {
	Path    string
	Size    int64
	Hash    string
	Outcome Outcome
	Slug    string
}

// StateDB remembers which workout files have already been sent, keyed
// on path plus size plus content hash so an edited file goes out again
// under the same name.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens or creates the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sent_workouts (
		path    TEXT PRIMARY KEY,
		size    INTEGER NOT NULL,
		hash    TEXT NOT NULL,
		outcome TEXT NOT NULL,
		slug    TEXT NOT NULL DEFAULT '',
		sent_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Seen reports whether this exact file content was already sent,
// whether or not the server accepted it.
func (s *StateDB) Seen(relPath string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sent_workouts WHERE path = ? AND size = ? AND hash = ?`,
		relPath, size, hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record stores the terminal outcome for a sent file, replacing any
// earlier record for the same path. Slug is the server-assigned
// workout slug; pass "" for rejections.
func (s *StateDB) Record(relPath string, size int64, hash string, outcome Outcome, slug string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO sent_workouts (path, size, hash, outcome, slug) VALUES (?, ?, ?, ?, ?)`,
		relPath, size, hash, outcome, slug,
	)
	return err
}

// Find returns the remembered record for a path, or nil if the file
// was never sent.
func (s *StateDB) Find(relPath string) (*SentRecord, error) {
	rec := SentRecord{Path: relPath}
	err := s.db.QueryRow(
		`SELECT size, hash, outcome, slug FROM sent_workouts WHERE path = ?`,
		relPath,
	).Scan(&rec.Size, &rec.Hash, &rec.Outcome, &rec.Slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// hashFile computes the SHA-256 digest of a file's content.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
