package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS loc_cache (
	repository TEXT PRIMARY KEY,
	additions  INTEGER NOT NULL,
	deletions  INTEGER NOT NULL
)`

// SQLiteStore keeps the cache in a single SQLite table.
type SQLiteStore struct {
	path string
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (domain.LocCache, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return domain.LocCache{}, nil
	}
	db, err := s.open(ctx)
	if err != nil {
		return domain.LocCache{}, fmt.Errorf("%w: failed to open cache %s: %w", domain.ErrIO, s.path, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT repository, additions, deletions FROM loc_cache`)
	if err != nil {
		return domain.LocCache{}, fmt.Errorf("%w: failed to query cache: %w", domain.ErrIO, err)
	}
	defer rows.Close()

	cache := domain.LocCache{}
	for rows.Next() {
		var (
			repo  string
			entry domain.LocEntry
		)
		if err := rows.Scan(&repo, &entry.Additions, &entry.Deletions); err != nil {
			return domain.LocCache{}, fmt.Errorf("%w: failed to scan cache row: %w", domain.ErrIO, err)
		}
		cache[repo] = entry
	}
	if err := rows.Err(); err != nil {
		return domain.LocCache{}, fmt.Errorf("%w: failed to read cache rows: %w", domain.ErrIO, err)
	}
	return cache, nil
}

// Save replaces every row in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, c domain.LocCache) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create cache directory: %w", domain.ErrIO, err)
	}
	db, err := s.open(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to open cache %s: %w", domain.ErrIO, s.path, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", domain.ErrIO, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM loc_cache`); err != nil {
		return fmt.Errorf("%w: failed to clear cache: %w", domain.ErrIO, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO loc_cache (repository, additions, deletions) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %w", domain.ErrIO, err)
	}
	defer stmt.Close()
	for repo, entry := range c {
		if _, err := stmt.ExecContext(ctx, repo, entry.Additions, entry.Deletions); err != nil {
			return fmt.Errorf("%w: failed to store %s: %w", domain.ErrIO, repo, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit cache: %w", domain.ErrIO, err)
	}
	return nil
}
