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
	"strings"

	"github.com/jeremyhahn/go-seedxor/pkg/mnemonic"
)

// LabeledPart is one part as the user writes it down.
type LabeledPart struct {
	Label string
	Words []string
}

// Report is the human-readable form of a PartSet. It is never stored.
type Report struct {
	NumParts     int
	Random       bool
	Parts        []LabeledPart
	ChecksumWord string
}

// NewReport encodes every part of ps.
func NewReport(codec mnemonic.Codec, ps *PartSet) (*Report, error) {
	if codec == nil {
		codec = mnemonic.BIP39{}
	}
	r := &Report{
		NumParts:     ps.Len(),
		Random:       ps.Random,
		Parts:        make([]LabeledPart, 0, ps.Len()),
		ChecksumWord: ps.ChecksumWord,
	}
	for i := range ps.Parts {
		words, err := codec.Encode(ps.Parts[i][:])
		if err != nil {
			r.Wipe()
			return nil, fmt.Errorf("seedxor: encode part %s: %w", Label(i), err)
		}
		r.Parts = append(r.Parts, LabeledPart{Label: Label(i), Words: words})
	}
	return r, nil
}

// String renders the report for display or printing.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Record these %d lists of 24-words each.\n\n", r.NumParts)
	for _, p := range r.Parts {
		fmt.Fprintf(&b, "Part %s:\n", p.Label)
		for j, w := range p.Words {
			fmt.Fprintf(&b, "%2d: %s\n", j+1, w)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "The correctly reconstructed seed phrase will have this final word, "+
		"which we recommend recording:\n\n24: %s\n", r.ChecksumWord)
	return b.String()
}

// Wipe drops every word so the report can no longer be rendered.
func (r *Report) Wipe() {
	if r == nil {
		return
	}
	for i := range r.Parts {
		for j := range r.Parts[i].Words {
			r.Parts[i].Words[j] = ""
		}
		r.Parts[i].Words = nil
	}
	r.Parts = nil
	r.ChecksumWord = ""
}
