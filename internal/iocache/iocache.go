// Package iocache keeps fetched datasets on disk so repeated runs do not
// read or download unchanged sources again.
//
// A table is stored as a GOB file named after a UUIDv5 key. The key of a
// local file includes its modification time and size, so an edited file
// gets a new key. Remote datasets are keyed by location only and are
// refreshed with Clear or by skipping the cache.
package iocache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/gnames/gnsys"
	"github.com/gnames/gnuuid"
	"github.com/growthcenter/esdash/pkg/errcode"
	"github.com/growthcenter/esdash/pkg/sources"
	"github.com/growthcenter/esdash/pkg/table"
)

// Cache of fetched tables.
type Cache struct {
	dir string
	enc gnfmt.GNgob
}

// New creates a cache in dir.
func New(dir string) (*Cache, error) {
	if err := gnsys.MakeDir(dir); err != nil {
		return nil, CacheWriteError(dir, err)
	}
	return &Cache{dir: dir}, nil
}

// Key identifies the current content of a dataset.
func (c *Cache) Key(ds sources.Dataset) (string, error) {
	id := fmt.Sprintf("%s|%s|%s", ds.Location, ds.Format, ds.Table)
	if !ds.IsRemote() {
		info, err := os.Stat(ds.Location)
		if err != nil {
			return "", err
		}
		id = fmt.Sprintf("%s|%d|%d", id, info.ModTime().UnixNano(), info.Size())
	}
	return gnuuid.New(id).String(), nil
}

// Get returns a cached table. The boolean is false when the key is not
// cached.
func (c *Cache) Get(key string) (*table.Table, bool, error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, CacheReadError(path, err)
	}

	var rec table.Records
	if err = c.enc.Decode(data, &rec); err != nil {
		return nil, false, CacheReadError(path, err)
	}
	slog.Debug("dataset cache hit", "key", key)
	return table.FromRecords(rec), true, nil
}

// Put stores a table under key.
func (c *Cache) Put(key string, t *table.Table) error {
	path := c.path(key)
	data, err := c.enc.Encode(t.Records())
	if err != nil {
		return CacheWriteError(path, err)
	}
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, data, 0644); err != nil {
		return CacheWriteError(path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return CacheWriteError(path, err)
	}
	slog.Debug("dataset cached", "key", key, "rows", t.Len())
	return nil
}

// Clear removes every cached table.
func (c *Cache) Clear() error {
	if err := gnsys.CleanDir(c.dir); err != nil {
		return CacheWriteError(c.dir, err)
	}
	slog.Info("dataset cache cleared", "dir", c.dir)
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".gob")
}

// CacheReadError is returned when a cached table cannot be read.
func CacheReadError(path string, err error) error {
	msg := `Cannot read cached dataset <em>%s</em>

Run the command again with <em>--refresh</em> to rebuild the cache.`
	return &gn.Error{
		Code: errcode.CacheReadError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot read cache %s: %w", path, err),
	}
}

// CacheWriteError is returned when a table cannot be cached.
func CacheWriteError(path string, err error) error {
	msg := "Cannot write dataset cache <em>%s</em>"
	return &gn.Error{
		Code: errcode.CacheWriteError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot write cache %s: %w", path, err),
	}
}
