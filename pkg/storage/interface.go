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

// Package storage abstracts the durable slots the device keeps its secret
// in. Backends store opaque values by key; encoding the secret is the
// caller's job.
package storage

import (
	"io/fs"
)

// Backend is a key/value store for small sensitive records.
// All implementations must be thread-safe, and must overwrite a value's
// previous contents when it is replaced or deleted.
type Backend interface {
	// Get returns a copy of the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(key string, value []byte, opts *Options) error

	// Delete erases key, or returns ErrNotFound.
	Delete(key string) error

	// Exists reports whether key holds a value.
	Exists(key string) (bool, error)

	// List returns the keys starting with prefix, sorted.
	List(prefix string) ([]string, error)

	// Close releases the backend. Further calls return ErrClosed.
	Close() error
}

// Options tunes a Put.
type Options struct {
	// Permissions for file backends. Zero means 0600.
	Permissions fs.FileMode

	// Sync forces the value to stable storage before Put returns.
	Sync bool
}

// DefaultOptions returns owner-only, synced writes.
func DefaultOptions() *Options {
	return &Options{
		Permissions: 0600,
		Sync:        true,
	}
}
