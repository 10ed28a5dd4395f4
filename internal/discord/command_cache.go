package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// globalScope names the cache file for globally registered commands.
const globalScope = "global"

// HashCache persists the last uploaded command hashes per guild, one JSON
// file per scope.
type HashCache struct {
	dir string
}

// NewHashCache returns a cache rooted at dir. An empty dir disables it.
func NewHashCache(dir string) *HashCache { return &HashCache{dir: dir} }

func (c *HashCache) path(scope string) string {
	return filepath.Join(c.dir, scope+".json")
}

// Load returns the cached hashes for scope; a missing or unreadable file
// yields an empty map.
func (c *HashCache) Load(scope string) map[string]string {
	out := make(map[string]string)
	if c == nil || c.dir == "" {
		return out
	}
	data, err := os.ReadFile(c.path(scope))
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return make(map[string]string)
	}
	return out
}

// Save replaces the cached hashes for scope.
func (c *HashCache) Save(scope string, hashes map[string]string) error {
	if c == nil || c.dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path(scope), data, 0o644)
}

// Drop removes the cache file for scope.
func (c *HashCache) Drop(scope string) error {
	if c == nil || c.dir == "" {
		return nil
	}
	if err := os.Remove(c.path(scope)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
