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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-seedxor/pkg/mnemonic"
)

func TestReport_String(t *testing.T) {
	splitter := newTestSplitter(t, nil)
	ps, err := splitter.Split(make([]byte, PartSize), 2, false)
	require.NoError(t, err)
	defer ps.Wipe()

	report, err := NewReport(nil, ps)
	require.NoError(t, err)
	assert.Equal(t, 2, report.NumParts)
	assert.Equal(t, "art", report.ChecksumWord)

	out := report.String()
	assert.True(t, strings.HasPrefix(out, "Record these 2 lists of 24-words each."))
	assert.Contains(t, out, "Part A:\n")
	assert.Contains(t, out, "Part B:\n")
	assert.NotContains(t, out, "Part C:")
	assert.Contains(t, out, " 1: "+report.Parts[0].Words[0]+"\n")
	assert.Contains(t, out, "24: "+report.Parts[1].Words[23]+"\n")
	assert.True(t, strings.HasSuffix(out, "24: art\n"))
}

func TestReport_WordsDecodeToParts(t *testing.T) {
	splitter := newTestSplitter(t, nil)
	ps, err := splitter.Split(testSecret(t), 4, true)
	require.NoError(t, err)
	defer ps.Wipe()

	report, err := NewReport(mnemonic.BIP39{}, ps)
	require.NoError(t, err)
	require.Len(t, report.Parts, 4)
	for i, p := range report.Parts {
		assert.Equal(t, Label(i), p.Label)
		require.Len(t, p.Words, mnemonic.NumWords)
		decoded, err := mnemonic.BIP39{}.Decode(p.Words)
		require.NoError(t, err)
		assert.Equal(t, ps.Parts[i][:], decoded)
	}
}

func TestReport_Wipe(t *testing.T) {
	splitter := newTestSplitter(t, nil)
	ps, err := splitter.Split(testSecret(t), 2, false)
	require.NoError(t, err)
	report, err := NewReport(nil, ps)
	require.NoError(t, err)

	words := report.Parts[0].Words
	report.Wipe()
	assert.Nil(t, report.Parts)
	assert.Empty(t, report.ChecksumWord)
	for _, w := range words {
		assert.Empty(t, w)
	}

	var nilReport *Report
	nilReport.Wipe()
}
