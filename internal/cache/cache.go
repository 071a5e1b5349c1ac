// Package cache stores raw BoardGameGeek documents on disk.
//
// A cache entry is valid exactly when its file exists: there is no expiry, checksum or invalidation
// beyond removing files with [GameCache.Clear].
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const entryExt = ".xml"

// GameCache keeps one "thing" document per game ID in a directory.
type GameCache struct {
	dir string
}

// NewGameCache returns a cache rooted at dir. The directory is created by [GameCache.Ensure] or the first [GameCache.Save].
func NewGameCache(dir string) *GameCache {
	return &GameCache{dir: dir}
}

// Dir returns the cache directory.
func (c *GameCache) Dir() string { return c.dir }

// Path returns the file of the entry for id.
func (c *GameCache) Path(id string) string {
	return filepath.Join(c.dir, id+entryExt)
}

// Ensure creates the cache directory if it does not exist.
func (c *GameCache) Ensure() error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return nil
}

// Has reports whether an entry exists for id.
func (c *GameCache) Has(id string) bool {
	info, err := os.Stat(c.Path(id))
	return err == nil && !info.IsDir()
}

// Load returns the cached document for id.
func (c *GameCache) Load(id string) ([]byte, error) {
	data, err := os.ReadFile(c.Path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read cached game %s: %w", id, err)
	}
	return data, nil
}

// Save writes the document for id, replacing any previous entry.
func (c *GameCache) Save(id string, data []byte) error {
	if err := c.Ensure(); err != nil {
		return err
	}
	if err := WriteFile(c.Path(id), data); err != nil {
		return fmt.Errorf("failed to cache game %s: %w", id, err)
	}
	return nil
}

// IDs lists the cached game IDs in lexical order. A missing directory is an empty cache.
func (c *GameCache) IDs() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list cache directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), entryExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), entryExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Clear removes every cached entry and returns how many were deleted.
func (c *GameCache) Clear() (int, error) {
	ids, err := c.IDs()
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if err := os.Remove(c.Path(id)); err != nil {
			return i, fmt.Errorf("failed to remove cached game %s: %w", id, err)
		}
	}
	return len(ids), nil
}

// WriteFile writes data to path through a temporary file in the same directory,
// so an interrupted run never leaves a truncated entry that would later count as cached.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SaveCollection writes the raw collection document to path.
func SaveCollection(path string, data []byte) error {
	if err := WriteFile(path, data); err != nil {
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// LoadCollection reads a previously saved collection document.
func LoadCollection(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	return data, nil
}
