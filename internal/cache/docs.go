package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	entryPrefix = "doc-"
	dataFile    = "data"
	metaFile    = "meta.json"
)

// Cache keeps raw knowledge base documents fetched from remote sources.
// Writers are serialized so a Prune never sees a half-written entry.
type Cache struct {
	mu      sync.Mutex
	dir     string
	maxSize int64         // max total cache size in bytes
	ttl     time.Duration // cache entry TTL
}

// Meta stores metadata about a cached document.
type Meta struct {
	Key      string    `json:"key"`
	Source   string    `json:"source"`
	Size     int64     `json:"size"`
	StoredAt time.Time `json:"stored_at"`
}

// Entry is a cached document as found on disk.
type Entry struct {
	Meta
	Path    string
	Expired bool
}

func New(dir string, maxSizeMB int, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document cache dir: %w", err)
	}
	return &Cache{
		dir:     dir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		ttl:     ttl,
	}, nil
}

func (c *Cache) entryDir(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, entryPrefix+hex.EncodeToString(sum[:12]))
}

// Has reports whether key is cached and younger than the TTL.
func (c *Cache) Has(key string) bool {
	info, err := os.Stat(filepath.Join(c.entryDir(key), dataFile))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < c.ttl
}

func (c *Cache) Store(key, source string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := c.entryDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, dataFile), data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	meta, err := json.Marshal(Meta{Key: key, Source: source, Size: int64(len(data)), StoredAt: time.Now()})
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), meta, 0o644); err != nil {
		return fmt.Errorf("write cache meta: %w", err)
	}
	return c.prune()
}

func (c *Cache) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(c.entryDir(key), dataFile))
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	return data, nil
}

func (c *Cache) Remove(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(c.entryDir(key))
}

// Clear removes every cached document.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(e.Path); err != nil {
			return fmt.Errorf("remove cache entry: %w", err)
		}
	}
	return nil
}

// Entries lists cached documents, oldest first.
func (c *Cache) Entries() ([]Entry, error) {
	dirs, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var result []Entry
	for _, d := range dirs {
		if !d.IsDir() || !strings.HasPrefix(d.Name(), entryPrefix) {
			continue
		}
		path := filepath.Join(c.dir, d.Name())
		entry := Entry{Path: path}

		if raw, err := os.ReadFile(filepath.Join(path, metaFile)); err == nil {
			_ = json.Unmarshal(raw, &entry.Meta)
		}
		if info, err := os.Stat(filepath.Join(path, dataFile)); err == nil {
			entry.Size = info.Size()
			if entry.StoredAt.IsZero() {
				entry.StoredAt = info.ModTime()
			}
		} else {
			// Half-written entry; treat as expired so Prune removes it.
			entry.Expired = true
		}
		if time.Since(entry.StoredAt) >= c.ttl {
			entry.Expired = true
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StoredAt.Before(result[j].StoredAt)
	})
	return result, nil
}

// Prune removes expired entries, then the oldest ones until the cache fits
// its size cap.
func (c *Cache) Prune() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prune()
}

func (c *Cache) prune() error {
	entries, err := c.Entries()
	if err != nil {
		return err
	}

	var total int64
	remaining := entries[:0]
	for _, e := range entries {
		if e.Expired {
			os.RemoveAll(e.Path)
			continue
		}
		total += e.Size
		remaining = append(remaining, e)
	}

	for _, e := range remaining {
		if total <= c.maxSize {
			break
		}
		os.RemoveAll(e.Path)
		total -= e.Size
	}
	return nil
}

// TotalSize returns total cache size in bytes.
func (c *Cache) TotalSize() (int64, error) {
	var total int64
	err := filepath.Walk(c.dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	return total, nil
}
