package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rishugupta23/word-guessing-game/logger"
	"github.com/rishugupta23/word-guessing-game/models"
)

// ErrNotFound is returned when a session has no saved round.
var ErrNotFound = errors.New("round not found")

// Store persists in-progress rounds keyed by session ID.
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS rounds (
		session_id TEXT PRIMARY KEY,
		word TEXT NOT NULL,
		hint TEXT NOT NULL,
		guessed_letters TEXT NOT NULL DEFAULT '',
		attempts_left INTEGER NOT NULL DEFAULT 6,
		revealed INTEGER NOT NULL DEFAULT 0,
		forfeited INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_rounds_updated ON rounds(updated_at);`,
}

// Open opens (creating if needed) the SQLite database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps pragmas and writes on one handle
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		logger.Error("couldn't enable WAL mode: %v", err)
	}
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA busy_timeout=5000;"); err != nil {
		logger.Error("couldn't set busy timeout: %v", err)
	}

	for _, stmt := range schema {
		if _, err := sqlDB.ExecContext(ctx, stmt); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	logger.Info("database initialized at %s", path)
	return &Store{db: sqlDB}, nil
}

// SaveRound inserts or replaces the round of r.SessionID.
func (s *Store) SaveRound(ctx context.Context, r models.SavedRound) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rounds (session_id, word, hint, guessed_letters, attempts_left, revealed, forfeited, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			word = excluded.word,
			hint = excluded.hint,
			guessed_letters = excluded.guessed_letters,
			attempts_left = excluded.attempts_left,
			revealed = excluded.revealed,
			forfeited = excluded.forfeited,
			updated_at = excluded.updated_at
	`, r.SessionID, r.Word, r.Hint, r.Guessed, r.AttemptsLeft, r.Revealed, r.Forfeited, r.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("save round %s: %w", r.SessionID, err)
	}
	return nil
}

// LoadRound returns the saved round of sessionID or ErrNotFound.
func (s *Store) LoadRound(ctx context.Context, sessionID string) (models.SavedRound, error) {
	r := models.SavedRound{SessionID: sessionID}
	var updated int64
	err := s.db.QueryRowContext(ctx, `
		SELECT word, hint, guessed_letters, attempts_left, revealed, forfeited, updated_at
		FROM rounds WHERE session_id = ?
	`, sessionID).Scan(&r.Word, &r.Hint, &r.Guessed, &r.AttemptsLeft, &r.Revealed, &r.Forfeited, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return models.SavedRound{}, ErrNotFound
	}
	if err != nil {
		return models.SavedRound{}, fmt.Errorf("load round %s: %w", sessionID, err)
	}
	r.UpdatedAt = time.Unix(0, updated)
	return r, nil
}

// DeleteRound removes the round of sessionID, if any.
func (s *Store) DeleteRound(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rounds WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete round %s: %w", sessionID, err)
	}
	return nil
}

// PruneBefore deletes rounds last updated before t and returns how many went.
func (s *Store) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rounds WHERE updated_at < ?`, t.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune rounds: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
