// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seedxor.
//
// go-seedxor is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package file is a storage.Backend keeping one file per key under a root
// directory. Writes go through a synced temporary file and a rename so a
// power loss leaves either the old or the new value, never a torn one.
// Replaced and deleted values are overwritten with zeros before unlinking.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-seedxor/pkg/storage"
)

const (
	defaultDirPerms  = 0700
	defaultFilePerms = 0600
	tempSuffix       = ".tmp"
)

// Storage is a file-backed storage.Backend.
type Storage struct {
	mu      sync.RWMutex
	rootDir string
	closed  bool
}

var _ storage.Backend = (*Storage)(nil)

// New opens (creating if needed) a backend rooted at rootDir.
func New(rootDir string) (*Storage, error) {
	if rootDir == "" {
		return nil, errors.New("file storage: root directory cannot be empty")
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("file storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, defaultDirPerms); err != nil {
		return nil, fmt.Errorf("file storage: create root directory: %w", err)
	}
	return &Storage{rootDir: abs}, nil
}

// Root returns the absolute root directory.
func (f *Storage) Root() string {
	return f.rootDir
}

// Get reads the value stored under key.
func (f *Storage) Get(key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	path, err := f.path(key)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated and confined to rootDir
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("file storage: read %q: %w", key, err)
	}
	return data, nil
}

// Put atomically replaces the value under key.
func (f *Storage) Put(key string, value []byte, opts *storage.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, err := f.path(key)
	if err != nil {
		return err
	}
	if opts == nil {
		opts = storage.DefaultOptions()
	}
	perms := opts.Permissions
	if perms == 0 {
		perms = defaultFilePerms
	}

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerms); err != nil {
		return fmt.Errorf("file storage: create directory for %q: %w", key, err)
	}

	tmp := path + tempSuffix
	if err := writeFile(tmp, value, perms, opts.Sync); err != nil {
		_ = scrub(tmp)
		return fmt.Errorf("file storage: write %q: %w", key, err)
	}

	// overwrite the previous value in place before it is unlinked by the rename
	if _, err := os.Stat(path); err == nil {
		if err := overwrite(path); err != nil {
			_ = scrub(tmp)
			return fmt.Errorf("file storage: scrub previous %q: %w", key, err)
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = scrub(tmp)
		return fmt.Errorf("file storage: commit %q: %w", key, err)
	}
	return nil
}

// Delete zero-fills and removes the file for key.
func (f *Storage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path, err := f.path(key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("file storage: stat %q: %w", key, err)
	}
	if err := scrub(path); err != nil {
		return fmt.Errorf("file storage: delete %q: %w", key, err)
	}
	return nil
}

// Exists reports whether key has a file.
func (f *Storage) Exists(key string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	path, err := f.path(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("file storage: stat %q: %w", key, err)
	}
	return true, nil
}

// List walks the root and returns the sorted keys with prefix.
func (f *Storage) List(prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, storage.ErrClosed
	}

	keys := make([]string, 0)
	err := filepath.WalkDir(f.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, tempSuffix) {
			return nil
		}
		rel, err := filepath.Rel(f.rootDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("file storage: list: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close marks the backend closed. Files stay on disk.
func (f *Storage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// path validates key and maps it under rootDir.
func (f *Storage) path(key string) (string, error) {
	if f.closed {
		return "", storage.ErrClosed
	}
	if err := validateKey(key); err != nil {
		return "", fmt.Errorf("%w: %v", storage.ErrInvalidKey, err)
	}
	return filepath.Join(f.rootDir, filepath.FromSlash(key)), nil
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if strings.Contains(key, "\x00") {
		return errors.New("key contains null byte")
	}
	if filepath.IsAbs(key) || strings.HasPrefix(key, "/") {
		return errors.New("key cannot be an absolute path")
	}
	if strings.HasSuffix(key, tempSuffix) {
		return errors.New("key uses reserved suffix")
	}
	for _, part := range strings.Split(filepath.ToSlash(key), "/") {
		if part == ".." || part == "." || part == "" {
			return errors.New("key contains path traversal attempt")
		}
	}
	return nil
}

func writeFile(path string, value []byte, perms fs.FileMode, sync bool) error {
	// #nosec G304 - path is validated and confined to rootDir
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perms)
	if err != nil {
		return err
	}
	if _, err := fh.Write(value); err != nil {
		_ = fh.Close()
		return err
	}
	if sync {
		if err := fh.Sync(); err != nil {
			_ = fh.Close()
			return err
		}
	}
	return fh.Close()
}

// overwrite fills an existing file with zeros of the same length.
func overwrite(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	// #nosec G304 - path is validated and confined to rootDir
	fh, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if _, err := fh.Write(make([]byte, info.Size())); err != nil {
		_ = fh.Close()
		return err
	}
	if err := fh.Sync(); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

// scrub overwrites then removes path. A missing file is not an error.
func scrub(path string) error {
	if err := overwrite(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
