package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hammamikhairi/vocabecho/internal/domain"
	"github.com/hammamikhairi/vocabecho/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// tokenKey is the settings row holding the vocabulary API token.
const tokenKey = "frdic_api_token"

// Compile-time interface checks.
var (
	_ domain.CredentialStore = (*SQLiteStore)(nil)
	_ domain.RunStore        = (*SQLiteStore)(nil)
)

// SQLiteStore persists the token and run history in a SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// OpenSQLite opens (or creates) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func OpenSQLite(path string, log *logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	log.Debug("storage: opened %s", path)
	return &SQLiteStore{db: db, log: log}, nil
}

func migrate(db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveToken stores the API token. A blank token deletes it.
func (s *SQLiteStore) SaveToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, tokenKey); err != nil {
			return fmt.Errorf("storage: clearing token: %w", err)
		}
		s.log.Info("storage: API token cleared")
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		tokenKey, token)
	if err != nil {
		return fmt.Errorf("storage: saving token: %w", err)
	}
	s.log.Info("storage: API token saved")
	return nil
}

// LoadToken returns the stored token or domain.ErrNotFound.
func (s *SQLiteStore) LoadToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, tokenKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("storage: loading token: %w", err)
	}
	return token, nil
}

// SaveRun persists a run summary. Overwrites if it already exists.
func (s *SQLiteStore) SaveRun(ctx context.Context, run domain.RunSummary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs(id, language, source, total, matched, passed, started_at, finished_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Language, run.Source, run.Total, run.Matched, run.Passed,
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("storage: saving run %s: %w", run.ID, err)
	}
	s.log.Debug("storage: saved run %s", run.ID)
	return nil
}

// ListRuns returns the most recently finished runs first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, language, source, total, matched, passed, started_at, finished_at
		 FROM runs ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: listing runs: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var (
			r                 domain.RunSummary
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &r.Language, &r.Source, &r.Total, &r.Matched, &r.Passed, &started, &finished); err != nil {
			return nil, fmt.Errorf("storage: scanning run: %w", err)
		}
		r.StartedAt = time.UnixMilli(started)
		r.FinishedAt = time.UnixMilli(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}
