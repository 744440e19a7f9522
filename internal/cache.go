package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	tt "github.com/gnolang/selfassign/internal/types"
)

// bump when cacheEntry changes shape
const cacheSchemaVersion uint16 = 1

type cacheEntry struct {
	Schema      uint16
	Filename    string
	ContentHash string
	Fingerprint string
	Issues      []tt.Issue
}

// Cache stores the issues found in a file on disk. An entry is only served
// while the file content and the engine configuration are unchanged.
type Cache struct {
	CacheDir string
	mutex    sync.RWMutex
}

func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{CacheDir: cacheDir}, nil
}

func (c *Cache) pathFor(filename string) string {
	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}
	sum := sha256.Sum256([]byte(abs))
	key := hex.EncodeToString(sum[:])
	return filepath.Join(c.CacheDir, key[:2], key+".mp")
}

// Get returns the cached issues of filename if they were computed from content
// under the configuration identified by fingerprint.
func (c *Cache) Get(filename string, content []byte, fingerprint string) ([]tt.Issue, bool) {
	if c == nil {
		return nil, false
	}
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	f, err := os.Open(c.pathFor(filename))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var entry cacheEntry
	if err := msgpack.NewDecoder(f).Decode(&entry); err != nil {
		return nil, false
	}
	if entry.Schema != cacheSchemaVersion ||
		entry.ContentHash != hashContent(content) ||
		entry.Fingerprint != fingerprint {
		return nil, false
	}
	return entry.Issues, true
}

// Set stores issues for filename. The entry is written to a temporary file and
// renamed into place.
func (c *Cache) Set(filename string, content []byte, fingerprint string, issues []tt.Issue) error {
	if c == nil {
		return nil
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	p := c.pathFor(filename)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(f.Name())

	entry := cacheEntry{
		Schema:      cacheSchemaVersion,
		Filename:    filename,
		ContentHash: hashContent(content),
		Fingerprint: fingerprint,
		Issues:      issues,
	}
	if err := msgpack.NewEncoder(f).Encode(&entry); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	return os.Rename(f.Name(), p)
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() error {
	if c == nil {
		return nil
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := os.RemoveAll(c.CacheDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.MkdirAll(c.CacheDir, 0o755)
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
