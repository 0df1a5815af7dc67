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
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// guardSource lends a fixed secret through a Guard.
type guardSource struct {
	guard  Guard
	secret []byte
	mode   Mode
	err    error
}

func (g *guardSource) OpenScope() (*Scope, error) {
	if g.err != nil {
		return nil, g.err
	}
	buf := make([]byte, len(g.secret))
	copy(buf, g.secret)
	return g.guard.Lend(buf, g.mode)
}

func testSecret() []byte {
	return bytes.Repeat([]byte{0xA5}, SecretSize)
}

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Wipe(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)

	Wipe(nil)
}

func TestBuffer_Wipe(t *testing.T) {
	raw := []byte{9, 9, 9}
	buf := BufferFrom(raw)
	require.Equal(t, 3, buf.Len())

	buf.Wipe()
	assert.Equal(t, []byte{0, 0, 0}, raw)
	assert.Nil(t, buf.Bytes())
	assert.Equal(t, 0, buf.Len())

	// second wipe is a no-op
	buf.Wipe()

	var nilBuf *Buffer
	nilBuf.Wipe()
}

func TestScope_CloseWipes(t *testing.T) {
	src := &guardSource{secret: testSecret(), mode: ModeWords}

	s, err := Acquire(src)
	require.NoError(t, err)
	require.True(t, src.guard.Live())

	view := s.Bytes()
	require.Equal(t, testSecret(), view)
	assert.Equal(t, ModeWords, s.Mode())

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	assert.Equal(t, make([]byte, SecretSize), view, "buffer must be zeroed after Close")
	assert.Nil(t, s.Bytes())
	assert.False(t, src.guard.Live())

	// idempotent
	require.NoError(t, s.Close())
}

func TestGuard_OneLiveScope(t *testing.T) {
	src := &guardSource{secret: testSecret(), mode: ModeWords}

	first, err := Acquire(src)
	require.NoError(t, err)

	_, err = Acquire(src)
	require.ErrorIs(t, err, ErrScopeBusy)

	require.NoError(t, first.Close())

	second, err := Acquire(src)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestGuard_LendBusyWipesInput(t *testing.T) {
	var g Guard
	s, err := g.Lend(testSecret(), ModeWords)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	rejected := testSecret()
	_, err = g.Lend(rejected, ModeWords)
	require.ErrorIs(t, err, ErrScopeBusy)
	assert.Equal(t, make([]byte, SecretSize), rejected)
}

func TestAcquire_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     *guardSource
		wantErr error
	}{
		{
			name:    "empty holder",
			src:     &guardSource{err: ErrNoSecret},
			wantErr: ErrNoSecret,
		},
		{
			name:    "xprv secret",
			src:     &guardSource{secret: bytes.Repeat([]byte{1}, 64), mode: ModeXprv},
			wantErr: ErrUnsupportedMode,
		},
		{
			name:    "12-word secret",
			src:     &guardSource{secret: bytes.Repeat([]byte{1}, 16), mode: ModeWords},
			wantErr: ErrUnsupportedMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Acquire(tt.src)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, s)
			assert.False(t, tt.src.guard.Live(), "rejected scope must be released")
		})
	}
}

func TestDo_ClosesOnEveryPath(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		src := &guardSource{secret: testSecret(), mode: ModeWords}
		var view []byte
		err := Do(src, func(s *Scope) error {
			view = s.Bytes()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, make([]byte, SecretSize), view)
		assert.False(t, src.guard.Live())
	})

	t.Run("error", func(t *testing.T) {
		src := &guardSource{secret: testSecret(), mode: ModeWords}
		boom := errors.New("boom")
		var view []byte
		err := Do(src, func(s *Scope) error {
			view = s.Bytes()
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, make([]byte, SecretSize), view)
		assert.False(t, src.guard.Live())
	})

	t.Run("panic", func(t *testing.T) {
		src := &guardSource{secret: testSecret(), mode: ModeWords}
		var view []byte
		assert.Panics(t, func() {
			_ = Do(src, func(s *Scope) error {
				view = s.Bytes()
				panic("fault")
			})
		})
		assert.Equal(t, make([]byte, SecretSize), view)
		assert.False(t, src.guard.Live())
	})

	t.Run("acquire failure", func(t *testing.T) {
		src := &guardSource{err: ErrNoSecret}
		called := false
		err := Do(src, func(s *Scope) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, ErrNoSecret)
		assert.False(t, called)
	})
}
