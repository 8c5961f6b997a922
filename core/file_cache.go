package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

type fileCacheEntry struct {
	Value     string `toml:"value"`
	ExpiresAt int64  `toml:"expires_at,omitempty"`
}

type fileCacheDocument struct {
	Entries map[string]fileCacheEntry `toml:"entries"`
}

// FileCache persists entries in a TOML file so credentials survive process
// restarts. The file is rewritten on every Set and Delete with 0600
// permissions.
type FileCache struct {
	path string

	mu      sync.Mutex
	entries map[string]fileCacheEntry
}

// NewFileCache loads path if it exists. A missing file is an empty cache.
func NewFileCache(path string) (*FileCache, error) {
	if path == "" {
		return nil, fmt.Errorf("file cache path is required")
	}

	c := &FileCache{
		path:    path,
		entries: make(map[string]fileCacheEntry),
	}

	var doc fileCacheDocument
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("decode file cache %s: %w", path, err)
		}
	}
	for key, entry := range doc.Entries {
		c.entries[key] = entry
	}
	return c, nil
}

func (c *FileCache) Path() string {
	return c.path
}

func (c *FileCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if entry.ExpiresAt > 0 && time.Now().Unix() >= entry.ExpiresAt {
		return "", false
	}
	return entry.Value, true
}

func (c *FileCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := fileCacheEntry{Value: value}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl).Unix()
	}

	prev, existed := c.entries[key]
	c.entries[key] = entry
	if err := c.flush(); err != nil {
		if existed {
			c.entries[key] = prev
		} else {
			delete(c.entries, key)
		}
		return err
	}
	return nil
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, existed := c.entries[key]
	if !existed {
		return nil
	}
	delete(c.entries, key)
	if err := c.flush(); err != nil {
		c.entries[key] = prev
		return err
	}
	return nil
}

// flush must be called with c.mu held.
func (c *FileCache) flush() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp := c.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open cache file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(fileCacheDocument{Entries: c.entries}); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode cache file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

var _ Cache = (*FileCache)(nil)
