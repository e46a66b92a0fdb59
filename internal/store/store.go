// Package store persists the per-repository line count cache between runs.
package store

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
)

// LocStore loads and saves the whole LOC cache.
type LocStore interface {
	// Load returns the persisted cache. A store that does not exist yet is empty.
	Load(ctx context.Context) (domain.LocCache, error)
	// Save replaces the persisted cache with c.
	Save(ctx context.Context, c domain.LocCache) error
}

// New picks a store by file extension: .db, .sqlite and .sqlite3 are SQLite
// databases, anything else is a JSON file.
func New(path string) LocStore {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return NewJSONStore(path)
	}
}
