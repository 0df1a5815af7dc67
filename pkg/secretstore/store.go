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

// Package secretstore holds the device's operative secret. The durable
// slot survives power cycles; an ephemeral override replaces the active
// secret until the next power cycle without touching the durable slot.
// The raw secret only ever leaves the store through a secure.Scope.
package secretstore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jeremyhahn/go-seedxor/pkg/logging"
	"github.com/jeremyhahn/go-seedxor/pkg/secure"
	"github.com/jeremyhahn/go-seedxor/pkg/storage"
)

// SlotKey is the backend key of the durable secret record.
const SlotKey = "se/secret"

// CommitPath tells which store path accepted a secret.
type CommitPath string

const (
	// CommitPermanent wrote the durable slot.
	CommitPermanent CommitPath = "permanent"

	// CommitEphemeral installed a power-cycle-scoped override.
	CommitEphemeral CommitPath = "ephemeral"
)

// ErrNotEmpty is returned by CommitPermanent when a durable secret exists.
var ErrNotEmpty = errors.New("secretstore: durable secret already present")

// Status summarizes the store without exposing secret material.
type Status struct {
	Durable       bool
	DurableMode   secure.Mode
	Ephemeral     bool
	EphemeralMode secure.Mode
}

// Store is the device secret holder. It implements secure.Source.
type Store struct {
	mu        sync.Mutex
	backend   storage.Backend
	guard     secure.Guard
	ephemeral *secure.Buffer
	ephMode   secure.Mode
	logger    *logging.Logger
}

var _ secure.Source = (*Store)(nil)

// New returns a store over backend. A nil logger uses the default logger.
func New(backend storage.Backend, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Store{
		backend: backend,
		logger:  logger.With("component", "secretstore"),
	}
}

// IsEmpty reports whether the durable slot is blank. A backend error is
// treated as not empty so that a commit never overwrites a slot it
// could not inspect.
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isEmptyLocked()
}

func (s *Store) isEmptyLocked() bool {
	ok, err := s.backend.Exists(SlotKey)
	if err != nil {
		s.logger.Error("durable slot check failed", "error", err)
		return false
	}
	return !ok
}

// CommitPermanent writes secret to the durable slot. It is only valid
// while the slot is empty.
func (s *Store) CommitPermanent(mode secure.Mode, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isEmptyLocked() {
		return ErrNotEmpty
	}
	slot, err := encodeSlot(mode, secret)
	if err != nil {
		return err
	}
	defer secure.Wipe(slot)

	if err := s.backend.Put(SlotKey, slot, storage.DefaultOptions()); err != nil {
		return fmt.Errorf("secretstore: write durable slot: %w", err)
	}
	s.dropEphemeralLocked()
	s.logger.Info("secret committed", "path", CommitPermanent, "mode", mode)
	return nil
}

// CommitEphemeral makes secret the active secret until PowerCycle. The
// durable slot is left untouched.
func (s *Store) CommitEphemeral(mode secure.Mode, secret []byte) error {
	if _, err := modeTag(mode); err != nil {
		return err
	}
	if err := checkLength(mode, len(secret)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := secure.NewBuffer(len(secret))
	copy(buf.Bytes(), secret)

	s.dropEphemeralLocked()
	s.ephemeral = buf
	s.ephMode = mode
	s.logger.Info("secret committed", "path", CommitEphemeral, "mode", mode)
	return nil
}

// OpenScope lends the active secret: the ephemeral override when set,
// otherwise the durable slot.
func (s *Store) OpenScope() (*secure.Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ephemeral != nil {
		raw := make([]byte, s.ephemeral.Len())
		copy(raw, s.ephemeral.Bytes())
		return s.guard.Lend(raw, s.ephMode)
	}

	mode, raw, err := s.readDurableLocked()
	if err != nil {
		return nil, err
	}
	return s.guard.Lend(raw, mode)
}

func (s *Store) readDurableLocked() (secure.Mode, []byte, error) {
	slot, err := s.backend.Get(SlotKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return secure.ModeNone, nil, secure.ErrNoSecret
		}
		return secure.ModeNone, nil, fmt.Errorf("secretstore: read durable slot: %w", err)
	}
	defer secure.Wipe(slot)
	return decodeSlot(slot)
}

// PowerCycle forgets the ephemeral override, as a reboot would.
func (s *Store) PowerCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ephemeral != nil {
		s.logger.Info("ephemeral secret discarded")
	}
	s.dropEphemeralLocked()
}

// Erase wipes the durable slot and any override.
func (s *Store) Erase() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropEphemeralLocked()
	if err := s.backend.Delete(SlotKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("secretstore: erase durable slot: %w", err)
	}
	s.logger.Warn("durable secret erased")
	return nil
}

// Status reports what the store holds.
func (s *Store) Status() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Ephemeral:     s.ephemeral != nil,
		EphemeralMode: s.ephMode,
	}
	mode, raw, err := s.readDurableLocked()
	switch {
	case errors.Is(err, secure.ErrNoSecret):
	case err != nil:
		return st, err
	default:
		secure.Wipe(raw)
		st.Durable = true
		st.DurableMode = mode
	}
	return st, nil
}

func (s *Store) dropEphemeralLocked() {
	s.ephemeral.Wipe()
	s.ephemeral = nil
	s.ephMode = secure.ModeNone
}
