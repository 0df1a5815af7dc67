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

package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-seedxor/pkg/storage"
)

func TestPutGet(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value []byte
	}{
		{name: "simple", key: "seed", value: []byte{1, 2, 3}},
		{name: "empty value", key: "empty", value: []byte{}},
		{name: "nested key", key: "se/main", value: []byte{0xff}},
	}

	s := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.Put(tt.key, tt.value, nil))
			got, err := s.Get(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestPut_EmptyKey(t *testing.T) {
	require.ErrorIs(t, New().Put("", []byte{1}, nil), storage.ErrInvalidKey)
}

func TestGet_NotFound(t *testing.T) {
	_, err := New().Get("missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestValuesAreCopied(t *testing.T) {
	s := New()
	in := []byte{1, 2, 3}
	require.NoError(t, s.Put("k", in, nil))
	in[0] = 9

	out, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, out)

	out[1] = 9
	again, _ := s.Get("k")
	assert.Equal(t, []byte{1, 2, 3}, again)
}

func TestOverwriteZeroesPrevious(t *testing.T) {
	s := New()
	require.NoError(t, s.Put("k", []byte{7, 7, 7}, nil))
	old := s.data["k"]

	require.NoError(t, s.Put("k", []byte{8}, nil))
	assert.Equal(t, []byte{0, 0, 0}, old)
}

func TestDelete(t *testing.T) {
	s := New()
	require.NoError(t, s.Put("k", []byte{7, 7}, nil))
	held := s.data["k"]

	require.NoError(t, s.Delete("k"))
	assert.Equal(t, []byte{0, 0}, held)

	ok, err := s.Exists("k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.ErrorIs(t, s.Delete("k"), storage.ErrNotFound)
}

func TestList(t *testing.T) {
	s := New()
	for _, k := range []string{"b/2", "a/1", "b/1", "c"} {
		require.NoError(t, s.Put(k, []byte{1}, nil))
	}

	keys, err := s.List("b/")
	require.NoError(t, err)
	assert.Equal(t, []string{"b/1", "b/2"}, keys)

	all, err := s.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1", "b/1", "b/2", "c"}, all)
}

func TestClose(t *testing.T) {
	s := New()
	require.NoError(t, s.Put("k", []byte{5, 5}, nil))
	held := s.data["k"]

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, []byte{0, 0}, held)

	_, err := s.Get("k")
	require.ErrorIs(t, err, storage.ErrClosed)
	require.ErrorIs(t, s.Put("k", nil, nil), storage.ErrClosed)
	require.ErrorIs(t, s.Delete("k"), storage.ErrClosed)
	_, err = s.Exists("k")
	require.ErrorIs(t, err, storage.ErrClosed)
	_, err = s.List("")
	require.ErrorIs(t, err, storage.ErrClosed)
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			assert.NoError(t, s.Put(key, []byte{byte(i)}, nil))
			_, err := s.Get(key)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	keys, err := s.List("k")
	require.NoError(t, err)
	assert.Len(t, keys, 16)
}
