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

package mnemonic

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBIP39_Vectors(t *testing.T) {
	tests := []struct {
		name    string
		entropy []byte
		phrase  string
	}{
		{
			name:    "all zeros",
			entropy: make([]byte, 32),
			phrase:  strings.Repeat("abandon ", 23) + "art",
		},
		{
			name:    "0x7f",
			entropy: bytes.Repeat([]byte{0x7f}, 32),
			phrase: "legal winner thank year wave sausage worth useful legal winner thank year " +
				"wave sausage worth useful legal winner thank year wave sausage worth title",
		},
		{
			name:    "0x80",
			entropy: bytes.Repeat([]byte{0x80}, 32),
			phrase: "letter advice cage absurd amount doctor acoustic avoid letter advice cage absurd " +
				"amount doctor acoustic avoid letter advice cage absurd amount doctor acoustic bless",
		},
		{
			name:    "all ones",
			entropy: bytes.Repeat([]byte{0xff}, 32),
			phrase:  strings.Repeat("zoo ", 23) + "vote",
		},
	}

	codec := BIP39{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := codec.Encode(tt.entropy)
			require.NoError(t, err)
			assert.Equal(t, strings.Fields(tt.phrase), words)

			decoded, err := codec.Decode(words)
			require.NoError(t, err)
			assert.Equal(t, tt.entropy, decoded)
		})
	}
}

func TestBIP39_RoundTripRandom(t *testing.T) {
	codec := BIP39{}
	for i := 0; i < 64; i++ {
		entropy := make([]byte, EntropySize)
		_, err := rand.Read(entropy)
		require.NoError(t, err)
		// exercise leading zero bytes
		if i%8 == 0 {
			entropy[0], entropy[1] = 0, 0
		}

		words, err := codec.Encode(entropy)
		require.NoError(t, err)
		require.Len(t, words, NumWords)

		decoded, err := codec.Decode(words)
		require.NoError(t, err)
		require.Equal(t, entropy, decoded)
	}
}

func TestBIP39_EncodeWrongSize(t *testing.T) {
	_, err := BIP39{}.Encode(make([]byte, 16))
	require.ErrorIs(t, err, ErrEntropySize)
}

func TestBIP39_DecodeErrors(t *testing.T) {
	valid := strings.Fields(strings.Repeat("abandon ", 23) + "art")

	tests := []struct {
		name    string
		words   []string
		wantErr error
	}{
		{name: "23 words", words: valid[:23], wantErr: ErrWordCount},
		{name: "25 words", words: append(append([]string{}, valid...), "art"), wantErr: ErrWordCount},
		{name: "empty", words: nil, wantErr: ErrWordCount},
		{
			name:    "unknown word",
			words:   append(append([]string{}, valid[:23]...), "notaword"),
			wantErr: ErrUnknownWord,
		},
		{
			name:    "bad checksum",
			words:   append(append([]string{}, valid[:23]...), "zoo"),
			wantErr: ErrChecksum,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BIP39{}.Decode(tt.words)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBIP39_DecodeErrorHidesWords(t *testing.T) {
	words := strings.Fields(strings.Repeat("abandon ", 23) + "secretive")
	_, err := BIP39{}.Decode(words)
	require.ErrorIs(t, err, ErrUnknownWord)
	assert.NotContains(t, err.Error(), "secretive")
	assert.NotContains(t, err.Error(), "abandon")
	assert.Contains(t, err.Error(), "position 24")
}

func TestBIP39_DecodeNormalizes(t *testing.T) {
	words := strings.Fields(strings.Repeat("ABANDON ", 23) + " Art")
	decoded, err := BIP39{}.Decode(words)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 32), decoded)
}

func TestComplete(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
		ok     bool
	}{
		{prefix: "aban", want: "abandon", ok: true},
		{prefix: "ABAN", want: "abandon", ok: true},
		{prefix: "zoo", want: "zoo", ok: true},
		{prefix: "ab", ok: false},
		{prefix: "qqq", ok: false},
		{prefix: "", ok: false},
	}
	for _, tt := range tests {
		got, ok := Complete(tt.prefix)
		assert.Equal(t, tt.ok, ok, tt.prefix)
		assert.Equal(t, tt.want, got, tt.prefix)
	}
}

func TestIsWord(t *testing.T) {
	assert.True(t, IsWord("abandon"))
	assert.True(t, IsWord(" Zoo "))
	assert.False(t, IsWord("bitcoin"))
}

func TestChecksumWord(t *testing.T) {
	w, err := ChecksumWord(BIP39{}, make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, "art", w)

	_, err = ChecksumWord(BIP39{}, []byte{1})
	require.ErrorIs(t, err, ErrEntropySize)
}
