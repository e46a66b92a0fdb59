package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/itsmeyessir/itsmeyessir/internal/domain"
)

// JSONStore keeps the cache as a JSON object {"repo": {"add": n, "del": n}}.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load(_ context.Context) (domain.LocCache, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.LocCache{}, nil
	}
	if err != nil {
		return domain.LocCache{}, fmt.Errorf("%w: failed to read cache %s: %w", domain.ErrIO, s.path, err)
	}
	cache := domain.LocCache{}
	if err := json.Unmarshal(data, &cache); err != nil {
		return domain.LocCache{}, fmt.Errorf("%w: failed to decode cache %s: %w", domain.ErrIO, s.path, err)
	}
	return cache, nil
}

func (s *JSONStore) Save(_ context.Context, c domain.LocCache) error {
	if c == nil {
		c = domain.LocCache{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode cache: %w", domain.ErrIO, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: failed to create cache directory: %w", domain.ErrIO, err)
	}
	if err := renameio.WriteFile(s.path, append(data, '\n'), 0o644, renameio.WithExistingPermissions()); err != nil {
		return fmt.Errorf("%w: failed to write cache %s: %w", domain.ErrIO, s.path, err)
	}
	return nil
}
