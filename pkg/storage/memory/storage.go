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

// Package memory is a volatile storage.Backend. Values are copied on the
// way in and out and zeroed once replaced or deleted. Close zeroes them all.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/jeremyhahn/go-seedxor/pkg/storage"
)

// Storage is an in-memory storage.Backend.
type Storage struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ storage.Backend = (*Storage)(nil)

// New returns an empty in-memory backend.
func New() *Storage {
	return &Storage{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *Storage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put stores a copy of value, zeroing any previous value.
func (s *Storage) Put(key string, value []byte, _ *storage.Options) error {
	if key == "" {
		return storage.ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	v := make([]byte, len(value))
	copy(v, value)
	if old, ok := s.data[key]; ok {
		zero(old)
	}
	s.data[key] = v
	return nil
}

// Delete zeroes and removes key.
func (s *Storage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return storage.ErrNotFound
	}
	zero(v)
	delete(s.data, key)
	return nil
}

// Exists reports whether key holds a value.
func (s *Storage) Exists(key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, storage.ErrClosed
	}
	_, ok := s.data[key]
	return ok, nil
}

// List returns the sorted keys with the given prefix.
func (s *Storage) List(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close zeroes every value. The backend is unusable afterwards.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	for _, v := range s.data {
		zero(v)
	}
	s.data = nil
	s.closed = true
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
