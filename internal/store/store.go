// Package store handles SQLite persistence of in-flight session saves.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/quickbrown/typist/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNoSave is returned when no save exists for a target text.
var ErrNoSave = errors.New("no save for text")

// Store wraps SQLite access. It holds at most one save per target text,
// keyed by the text's content hash; completion deletes the row.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS saves (
			text_hash TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			position INTEGER NOT NULL,
			typed TEXT NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			score REAL NOT NULL,
			streak INTEGER NOT NULL,
			multiplier REAL NOT NULL,
			saved_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// HashText returns the content hash used to key saves.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Put upserts the save for a target text.
func (s *Store) Put(ctx context.Context, hash string, save model.Save) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saves (text_hash, source_path, position, typed, elapsed_ms, score, streak, multiplier, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(text_hash) DO UPDATE SET
			source_path = excluded.source_path,
			position = excluded.position,
			typed = excluded.typed,
			elapsed_ms = excluded.elapsed_ms,
			score = excluded.score,
			streak = excluded.streak,
			multiplier = excluded.multiplier,
			saved_at = excluded.saved_at`,
		hash,
		save.SourcePath,
		save.Position,
		save.Typed,
		save.ElapsedMs,
		save.Score,
		save.Streak,
		save.Multiplier,
		save.SavedAt.Format(time.RFC3339Nano),
	)
	return err
}

// Get returns the save for a target text, or ErrNoSave.
func (s *Store) Get(ctx context.Context, hash string) (model.Save, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT source_path, position, typed, elapsed_ms, score, streak, multiplier, saved_at
		 FROM saves WHERE text_hash = ?`, hash)
	var save model.Save
	var savedAt string
	err := row.Scan(&save.SourcePath, &save.Position, &save.Typed, &save.ElapsedMs,
		&save.Score, &save.Streak, &save.Multiplier, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Save{}, ErrNoSave
	}
	if err != nil {
		return model.Save{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return model.Save{}, err
	}
	save.SavedAt = parsed
	return save, nil
}

// Delete removes the save for a target text. Missing rows are fine.
func (s *Store) Delete(ctx context.Context, hash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE text_hash = ?`, hash)
	return err
}
