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

package secretstore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-seedxor/pkg/logging"
	"github.com/jeremyhahn/go-seedxor/pkg/secure"
	"github.com/jeremyhahn/go-seedxor/pkg/storage"
	"github.com/jeremyhahn/go-seedxor/pkg/storage/file"
	"github.com/jeremyhahn/go-seedxor/pkg/storage/memory"
)

func secretOf(b byte) []byte {
	return bytes.Repeat([]byte{b}, secure.SecretSize)
}

func activeSecret(t *testing.T, s *Store) []byte {
	t.Helper()
	var out []byte
	require.NoError(t, secure.Do(s, func(sc *secure.Scope) error {
		out = append([]byte(nil), sc.Bytes()...)
		return nil
	}))
	return out
}

func TestStore_EmptyByDefault(t *testing.T) {
	s := New(memory.New(), logging.Discard())
	assert.True(t, s.IsEmpty())

	_, err := s.OpenScope()
	require.ErrorIs(t, err, secure.ErrNoSecret)

	_, err = secure.Acquire(s)
	require.ErrorIs(t, err, secure.ErrNoSecret)
}

func TestStore_CommitPermanent(t *testing.T) {
	s := New(memory.New(), logging.Discard())
	require.NoError(t, s.CommitPermanent(secure.ModeWords, secretOf(0x11)))

	assert.False(t, s.IsEmpty())
	assert.Equal(t, secretOf(0x11), activeSecret(t, s))

	err := s.CommitPermanent(secure.ModeWords, secretOf(0x22))
	require.ErrorIs(t, err, ErrNotEmpty)
	assert.Equal(t, secretOf(0x11), activeSecret(t, s))
}

func TestStore_CommitEphemeralSurvivesUntilPowerCycle(t *testing.T) {
	s := New(memory.New(), logging.Discard())
	require.NoError(t, s.CommitPermanent(secure.ModeWords, secretOf(0x11)))
	require.NoError(t, s.CommitEphemeral(secure.ModeWords, secretOf(0x33)))

	assert.False(t, s.IsEmpty())
	assert.Equal(t, secretOf(0x33), activeSecret(t, s))

	st, err := s.Status()
	require.NoError(t, err)
	assert.True(t, st.Durable)
	assert.True(t, st.Ephemeral)

	s.PowerCycle()
	assert.Equal(t, secretOf(0x11), activeSecret(t, s))

	st, err = s.Status()
	require.NoError(t, err)
	assert.False(t, st.Ephemeral)
}

func TestStore_CommitEphemeralCopiesInput(t *testing.T) {
	s := New(memory.New(), logging.Discard())
	in := secretOf(0x44)
	require.NoError(t, s.CommitEphemeral(secure.ModeWords, in))
	secure.Wipe(in)

	assert.Equal(t, secretOf(0x44), activeSecret(t, s))
}

func TestStore_RejectsBadSecrets(t *testing.T) {
	s := New(memory.New(), logging.Discard())
	require.Error(t, s.CommitPermanent(secure.ModeWords, []byte{1, 2, 3}))
	require.Error(t, s.CommitEphemeral(secure.ModeNone, secretOf(1)))
	assert.True(t, s.IsEmpty())
}

func TestStore_DurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	backend, err := file.New(dir)
	require.NoError(t, err)

	s := New(backend, logging.Discard())
	require.NoError(t, s.CommitPermanent(secure.ModeWords, secretOf(0x55)))
	require.NoError(t, s.CommitEphemeral(secure.ModeWords, secretOf(0x66)))

	// a new process over the same slot sees only the durable secret
	backend2, err := file.New(dir)
	require.NoError(t, err)
	s2 := New(backend2, logging.Discard())
	assert.False(t, s2.IsEmpty())
	assert.Equal(t, secretOf(0x55), activeSecret(t, s2))
}

func TestStore_OneLiveScope(t *testing.T) {
	s := New(memory.New(), logging.Discard())
	require.NoError(t, s.CommitPermanent(secure.ModeWords, secretOf(0x77)))

	sc, err := s.OpenScope()
	require.NoError(t, err)

	_, err = s.OpenScope()
	require.ErrorIs(t, err, secure.ErrScopeBusy)

	require.NoError(t, sc.Close())
	sc2, err := s.OpenScope()
	require.NoError(t, err)
	require.NoError(t, sc2.Close())
}

func TestStore_UnsupportedMode(t *testing.T) {
	s := New(memory.New(), logging.Discard())
	require.NoError(t, s.CommitPermanent(secure.ModeXprv, bytes.Repeat([]byte{1}, 64)))

	_, err := secure.Acquire(s)
	require.ErrorIs(t, err, secure.ErrUnsupportedMode)

	s2 := New(memory.New(), logging.Discard())
	require.NoError(t, s2.CommitPermanent(secure.ModeWords, bytes.Repeat([]byte{1}, 16)))
	_, err = secure.Acquire(s2)
	require.ErrorIs(t, err, secure.ErrUnsupportedMode)
}

func TestStore_Erase(t *testing.T) {
	backend := memory.New()
	s := New(backend, logging.Discard())
	require.NoError(t, s.CommitPermanent(secure.ModeWords, secretOf(0x12)))
	require.NoError(t, s.CommitEphemeral(secure.ModeWords, secretOf(0x13)))

	require.NoError(t, s.Erase())
	assert.True(t, s.IsEmpty())
	_, err := backend.Get(SlotKey)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.OpenScope()
	require.ErrorIs(t, err, secure.ErrNoSecret)

	// erasing an empty store is fine
	require.NoError(t, s.Erase())
}

func TestStore_BackendErrorIsNotEmpty(t *testing.T) {
	backend := memory.New()
	s := New(backend, logging.Discard())
	require.NoError(t, backend.Close())

	assert.False(t, s.IsEmpty())
	require.ErrorIs(t, s.CommitPermanent(secure.ModeWords, secretOf(1)), ErrNotEmpty)
}

func TestStash_RoundTrip(t *testing.T) {
	tests := []struct {
		mode   secure.Mode
		secret []byte
	}{
		{secure.ModeWords, secretOf(9)},
		{secure.ModeWords, bytes.Repeat([]byte{9}, 16)},
		{secure.ModeWords, bytes.Repeat([]byte{9}, 24)},
		{secure.ModeXprv, bytes.Repeat([]byte{9}, 64)},
		{secure.ModeMaster, bytes.Repeat([]byte{9}, 48)},
	}
	for _, tt := range tests {
		slot, err := encodeSlot(tt.mode, tt.secret)
		require.NoError(t, err)
		require.Len(t, slot, SlotSize)

		mode, raw, err := decodeSlot(slot)
		require.NoError(t, err)
		assert.Equal(t, tt.mode, mode)
		assert.Equal(t, tt.secret, raw)
	}
}

func TestStash_DecodeErrors(t *testing.T) {
	_, _, err := decodeSlot(make([]byte, 10))
	require.ErrorIs(t, err, ErrEncoding)

	_, _, err = decodeSlot(make([]byte, SlotSize))
	require.ErrorIs(t, err, ErrEncoding)

	slot := make([]byte, SlotSize)
	slot[0], slot[1] = tagWords, 20
	_, _, err = decodeSlot(slot)
	require.ErrorIs(t, err, ErrEncoding)
}
