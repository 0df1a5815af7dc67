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

// Package secure governs every touch of raw secret material. A secret is
// only ever materialized inside a Scope borrowed from its holder, and the
// buffer holding it is overwritten with zeros when the scope ends, whether
// the caller returns normally, returns early, fails or panics.
package secure

import (
	"errors"
	"runtime"
)

// SecretSize is the length of a master secret that can be split or restored.
const SecretSize = 32

// Mode describes how a stored secret is represented.
type Mode string

const (
	// ModeNone means no secret is present.
	ModeNone Mode = ""

	// ModeWords is a BIP-39 mnemonic secret (16, 24 or 32 bytes of entropy).
	ModeWords Mode = "words"

	// ModeXprv is an extended private key imported without words.
	ModeXprv Mode = "xprv"

	// ModeMaster is a raw BIP-32 master secret.
	ModeMaster Mode = "master"
)

var (
	// ErrNoSecret is returned when the holder has no secret to lend.
	ErrNoSecret = errors.New("secure: no secret stored")

	// ErrUnsupportedMode is returned when the stored secret is not a
	// 24-word mnemonic secret.
	ErrUnsupportedMode = errors.New("secure: secret is not a 24-word mnemonic")

	// ErrScopeBusy is returned when a scope is already live for a holder.
	ErrScopeBusy = errors.New("secure: a scope is already live")
)

// Wipe overwrites b with zeros.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// Buffer owns a secret-bearing byte slice and guarantees it can be wiped.
type Buffer struct {
	b []byte
}

// NewBuffer allocates a zeroed buffer of n bytes.
func NewBuffer(n int) *Buffer {
	return &Buffer{b: make([]byte, n)}
}

// BufferFrom takes ownership of b. The caller must not retain b.
func BufferFrom(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Bytes returns the underlying slice. It is nil once the buffer is wiped.
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Len returns the buffer length, zero after Wipe.
func (b *Buffer) Len() int {
	return len(b.b)
}

// Wipe zeroes the buffer and drops the reference. Safe to call repeatedly.
func (b *Buffer) Wipe() {
	if b == nil || b.b == nil {
		return
	}
	Wipe(b.b)
	b.b = nil
}
