// Package cache stores raw page bodies on disk, one file per URL, and
// expires them by file modification time.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/fightmatch/pkg/logger"
	"github.com/okian/fightmatch/pkg/metrics"
)

const (
	// DefaultTTL is how long an entry stays valid after it was written.
	DefaultTTL = 7 * 24 * time.Hour
	// DefaultExtension is the file suffix of entries.
	DefaultExtension = "cache"

	keyLength = 32
	dirPerm   = 0o755
	filePerm  = 0o644
)

// Read outcomes recorded in metrics.
const (
	readHit     = "hit"
	readMiss    = "miss"
	readExpired = "expired"
	readError   = "error"
)

// Key returns the file stem for url: the first 128 bits of its SHA-256, hex encoded.
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:keyLength]
}

// DiskCache is a flat directory of entries. It does no locking; one writer
// per directory is assumed.
type DiskCache struct {
	dir string
	ttl time.Duration
	ext string
	log logger.Logger
	now func() time.Time
}

// New creates a cache rooted at dir. The directory is created on first write.
func New(dir string, opts ...Option) *DiskCache {
	c := &DiskCache{
		dir: dir,
		ttl: DefaultTTL,
		ext: DefaultExtension,
		log: logger.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dir is the cache root.
func (c *DiskCache) Dir() string { return c.dir }

// Path is where the entry for key lives.
func (c *DiskCache) Path(key string) string {
	return filepath.Join(c.dir, key+"."+c.ext)
}

// IsValid reports whether an entry exists and is not older than the TTL.
func (c *DiskCache) IsValid(key string) bool {
	info, err := os.Stat(c.Path(key))
	if err != nil {
		return false
	}
	return c.fresh(info)
}

func (c *DiskCache) fresh(info fs.FileInfo) bool {
	return c.now().Sub(info.ModTime()) <= c.ttl
}

// Read returns the entry for key. Missing, expired and unreadable entries
// all read as absent.
func (c *DiskCache) Read(key string) ([]byte, bool) {
	path := c.Path(key)
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		metrics.RecordCacheRead(readMiss)
		return nil, false
	case err != nil:
		c.log.Debug(context.Background(), "cache stat failed", logger.String("path", path), logger.Error(err))
		metrics.RecordCacheRead(readError)
		return nil, false
	case !c.fresh(info):
		metrics.RecordCacheRead(readExpired)
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.log.Debug(context.Background(), "cache read failed", logger.String("path", path), logger.Error(err))
		metrics.RecordCacheRead(readError)
		return nil, false
	}
	metrics.RecordCacheRead(readHit)
	return data, true
}

// Write stores data under key, replacing any previous entry.
func (c *DiskCache) Write(key string, data []byte) error {
	if err := os.MkdirAll(c.dir, dirPerm); err != nil {
		metrics.RecordCacheWriteError()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.WriteFile(c.Path(key), data, filePerm); err != nil {
		metrics.RecordCacheWriteError()
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Get reads the entry for url.
func (c *DiskCache) Get(url string) ([]byte, bool) {
	return c.Read(Key(url))
}

// Set writes the entry for url.
func (c *DiskCache) Set(url string, data []byte) error {
	return c.Write(Key(url), data)
}
