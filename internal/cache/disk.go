package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// expiryHeaderSize is the length of the big-endian unix-nano expiry stored in
// front of every value. Zero means the value never expires.
const expiryHeaderSize = 8

// Disk is a Cache stored as files under a base directory. Keys of the form
// "a:b:c" map to the file a/b/c.
type Disk struct {
	d   *diskv.Diskv
	now func() time.Time
}

// NewDisk creates a Disk cache rooted at basePath.
func NewDisk(basePath string) *Disk {
	return &Disk{
		d: diskv.New(diskv.Options{
			BasePath:          basePath,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// Reads always hit the file so erasures by other processes are seen.
			CacheSizeMax:      0,
		}),
		now: time.Now,
	}
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, ":")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pathKey.Path...), pathKey.FileName), ":")
}

func (c *Disk) Get(_ context.Context, key string) ([]byte, error) {
	raw, err := c.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("disk cache read %q: %w", key, err)
	}
	if len(raw) < expiryHeaderSize {
		_ = c.d.Erase(key)
		return nil, ErrMiss
	}
	expiresAt := int64(binary.BigEndian.Uint64(raw[:expiryHeaderSize]))
	if expiresAt != 0 && c.now().UnixNano() >= expiresAt {
		_ = c.d.Erase(key)
		return nil, ErrMiss
	}
	return raw[expiryHeaderSize:], nil
}

func (c *Disk) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixNano()
	}
	raw := make([]byte, expiryHeaderSize+len(value))
	binary.BigEndian.PutUint64(raw[:expiryHeaderSize], uint64(expiresAt))
	copy(raw[expiryHeaderSize:], value)
	if err := c.d.Write(key, raw); err != nil {
		return fmt.Errorf("disk cache write %q: %w", key, err)
	}
	return nil
}

func (c *Disk) Delete(_ context.Context, key string) error {
	if !c.d.Has(key) {
		return nil
	}
	if err := c.d.Erase(key); err != nil {
		return fmt.Errorf("disk cache erase %q: %w", key, err)
	}
	return nil
}
