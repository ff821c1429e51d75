// Package cache provides file-based caching of provider responses, keyed
// by provider, model, stage, and diff content. A cache hit skips the LLM
// call entirely, so re-running an analysis over an unchanged diff is free.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Entry is one cached provider response.
type Entry struct {
	Key       string    `json:"key"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

// Cache is a directory of JSON entry files.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
}

// New creates a Cache. If dir is empty the platform default is used.
// A disabled cache is a no-op on every method.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
	}, nil
}

// Key builds the cache key for one stage run over one diff.
func Key(provider, model, stage, diff string) string {
	return hashKey(fmt.Sprintf("%s:%s:%s:%s", provider, model, stage, diff))
}

// Get retrieves a cached response by key. Returns ("", false) on miss
// or when the entry has outlived its TTL.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if c.expired(entry) {
		os.Remove(path)
		return "", false
	}
	return entry.Response, true
}

// Put stores a response under key.
func (c *Cache) Put(key, response string) error {
	if !c.enabled {
		return nil
	}
	entry := Entry{
		Key:       key,
		Response:  response,
		CreatedAt: time.Now(),
		TTL:       c.ttlSeconds,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(key), data, 0o644)
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return nil
}

// Stats summarizes the cache contents.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats walks the cache directory and counts entries.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	if !c.enabled || c.dir == "" {
		return stats, nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if c.expired(entry) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string { return c.dir }

// Enabled reports whether caching is active.
func (c *Cache) Enabled() bool { return c.enabled }

func (c *Cache) expired(entry Entry) bool {
	return c.ttlSeconds > 0 && time.Since(entry.CreatedAt) > time.Duration(c.ttlSeconds)*time.Second
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "facet"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "facet"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "facet", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "facet", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "facet"), nil
	}
}
