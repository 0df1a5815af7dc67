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

package seedxor

import (
	"fmt"

	"github.com/jeremyhahn/go-seedxor/pkg/secure"
)

const (
	// PartSize is the length of a part and of the secret.
	PartSize = secure.SecretSize

	// MinParts is the smallest part set.
	MinParts = 2

	// MaxParts is the largest part set.
	MaxParts = 4
)

// Part is one XOR share of a secret.
type Part [PartSize]byte

// Wipe zeroes the part.
func (p *Part) Wipe() {
	secure.Wipe(p[:])
}

// xorInto XORs src into dst.
func xorInto(dst *Part, src *Part) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// combine sets dst to the XOR of all parts.
func combine(dst *Part, parts []Part) {
	dst.Wipe()
	for i := range parts {
		xorInto(dst, &parts[i])
	}
}

// Label returns the letter a part is shown under: A for the first part.
func Label(i int) string {
	return string(rune('A' + i))
}

// PartSet is the ordered output of one split. It lives only for the
// duration of a display and transcription flow; call Wipe when done.
type PartSet struct {
	Parts []Part

	// ChecksumWord is the last word of the original secret's phrase.
	ChecksumWord string

	// Random records whether the masks came from the random source.
	Random bool
}

// Len returns the number of parts.
func (ps *PartSet) Len() int {
	return len(ps.Parts)
}

// Part returns a pointer to part i.
func (ps *PartSet) Part(i int) (*Part, error) {
	if i < 0 || i >= len(ps.Parts) {
		return nil, fmt.Errorf("seedxor: part index %d out of range", i)
	}
	return &ps.Parts[i], nil
}

// Wipe zeroes every part and forgets them.
func (ps *PartSet) Wipe() {
	if ps == nil {
		return
	}
	wipeParts(ps.Parts)
	ps.Parts = nil
	ps.ChecksumWord = ""
}

func wipeParts(parts []Part) {
	for i := range parts {
		parts[i].Wipe()
	}
}
