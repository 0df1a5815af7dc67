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

// Package mnemonic maps 32-byte buffers to 24-word BIP-39 phrases and back.
// It is the only place that knows about the dictionary; callers deal in
// word slices and raw bytes.
package mnemonic

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39"
)

// NumWords is the number of words encoding a 32-byte secret or part.
const NumWords = 24

// EntropySize is the number of bytes encoded by NumWords words.
const EntropySize = 32

var (
	// ErrWordCount is returned when a phrase does not contain exactly NumWords words.
	ErrWordCount = errors.New("mnemonic: wrong number of words")

	// ErrUnknownWord is returned when a word is not in the dictionary.
	ErrUnknownWord = errors.New("mnemonic: word not in dictionary")

	// ErrChecksum is returned when the phrase checksum does not match.
	ErrChecksum = errors.New("mnemonic: checksum mismatch")

	// ErrEntropySize is returned when asked to encode anything but EntropySize bytes.
	ErrEntropySize = errors.New("mnemonic: entropy must be 32 bytes")
)

// Codec converts between raw 32-byte values and 24-word phrases. Encode and
// Decode must be mutual inverses over every 32-byte value.
type Codec interface {
	Encode(entropy []byte) ([]string, error)
	Decode(words []string) ([]byte, error)
}

// BIP39 is a Codec over the BIP-39 English word list.
type BIP39 struct{}

var _ Codec = BIP39{}

var (
	dictOnce sync.Once
	dict     map[string]int
	wordList []string
)

func dictionary() map[string]int {
	dictOnce.Do(func() {
		wordList = bip39.GetWordList()
		dict = make(map[string]int, len(wordList))
		for i, w := range wordList {
			dict[w] = i
		}
	})
	return dict
}

// Encode returns the 24 words for entropy.
func (BIP39) Encode(entropy []byte) ([]string, error) {
	if len(entropy) != EntropySize {
		return nil, fmt.Errorf("%w: got %d", ErrEntropySize, len(entropy))
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("mnemonic: encode failed: %w", err)
	}
	return strings.Fields(phrase), nil
}

// Decode validates words and returns the 32 bytes they encode. Error
// messages identify positions, never the words themselves.
func (BIP39) Decode(words []string) ([]byte, error) {
	if len(words) != NumWords {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWordCount, len(words), NumWords)
	}

	d := dictionary()
	normalized := make([]string, len(words))
	for i, w := range words {
		w = Normalize(w)
		if _, ok := d[w]; !ok {
			return nil, fmt.Errorf("%w: position %d", ErrUnknownWord, i+1)
		}
		normalized[i] = w
	}

	entropy, err := bip39.EntropyFromMnemonic(strings.Join(normalized, " "))
	if err != nil {
		return nil, ErrChecksum
	}
	if len(entropy) < EntropySize {
		padded := make([]byte, EntropySize)
		copy(padded[EntropySize-len(entropy):], entropy)
		entropy = padded
	}
	if len(entropy) != EntropySize {
		return nil, fmt.Errorf("%w: decoded %d bytes", ErrEntropySize, len(entropy))
	}
	return entropy, nil
}

// Normalize trims and lower-cases a user-entered word.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// IsWord reports whether word is in the dictionary.
func IsWord(word string) bool {
	_, ok := dictionary()[Normalize(word)]
	return ok
}

// Complete expands a prefix to the single dictionary word it identifies.
// BIP-39 words are unique in their first four letters, so a four-letter
// prefix always resolves. It returns false when the prefix is ambiguous
// or matches nothing.
func Complete(prefix string) (string, bool) {
	prefix = Normalize(prefix)
	if prefix == "" {
		return "", false
	}
	d := dictionary()
	if _, ok := d[prefix]; ok {
		return prefix, true
	}

	match := ""
	for _, w := range wordList {
		if strings.HasPrefix(w, prefix) {
			if match != "" {
				return "", false
			}
			match = w
		}
	}
	return match, match != ""
}

// ChecksumWord returns the last word of the encoding of entropy. For a
// 24-word phrase that word carries the checksum bits.
func ChecksumWord(c Codec, entropy []byte) (string, error) {
	words, err := c.Encode(entropy)
	if err != nil {
		return "", err
	}
	return words[len(words)-1], nil
}
