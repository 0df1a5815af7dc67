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

package secure

import (
	"fmt"
	"sync"
)

// Source lends a secret through a Scope. Implementations must hand out at
// most one live scope at a time, typically by delegating to a Guard.
type Source interface {
	OpenScope() (*Scope, error)
}

// Scope is exclusive, time-boxed access to a raw secret. The secret is
// zeroed by Close. A Scope is not safe for concurrent use.
type Scope struct {
	buf     *Buffer
	mode    Mode
	release func()
	closed  bool
}

// Bytes returns the secret. The slice is only valid until Close and
// must not be retained or copied outside a wiped buffer.
func (s *Scope) Bytes() []byte {
	if s.closed {
		return nil
	}
	return s.buf.Bytes()
}

// Mode returns the representation of the lent secret.
func (s *Scope) Mode() Mode {
	return s.mode
}

// Closed reports whether the scope has ended.
func (s *Scope) Closed() bool {
	return s.closed
}

// Close wipes the secret and releases the holder. Idempotent.
func (s *Scope) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.buf.Wipe()
	if s.release != nil {
		s.release()
	}
	return nil
}

// Guard enforces that at most one scope is live for a secret holder.
// The zero value is ready to use.
type Guard struct {
	mu   sync.Mutex
	live bool
}

// Lend takes ownership of secret and returns a scope over it. If a scope
// is already live, secret is wiped and ErrScopeBusy is returned.
func (g *Guard) Lend(secret []byte, mode Mode) (*Scope, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.live {
		Wipe(secret)
		return nil, ErrScopeBusy
	}
	g.live = true

	return &Scope{
		buf:     BufferFrom(secret),
		mode:    mode,
		release: g.release,
	}, nil
}

// Live reports whether a scope is currently outstanding.
func (g *Guard) Live() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.live
}

func (g *Guard) release() {
	g.mu.Lock()
	g.live = false
	g.mu.Unlock()
}

// Acquire borrows a 24-word mnemonic secret from src. Any other kind of
// secret is wiped and rejected with ErrUnsupportedMode.
func Acquire(src Source) (*Scope, error) {
	s, err := src.OpenScope()
	if err != nil {
		return nil, err
	}
	if s.Mode() != ModeWords || len(s.Bytes()) != SecretSize {
		mode, n := s.Mode(), len(s.Bytes())
		_ = s.Close()
		return nil, fmt.Errorf("%w: mode %q with %d bytes", ErrUnsupportedMode, mode, n)
	}
	return s, nil
}

// Do acquires a scope from src, runs fn and closes the scope on every exit
// path, including a panic inside fn.
func Do(src Source, fn func(s *Scope) error) error {
	s, err := Acquire(src)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return fn(s)
}
