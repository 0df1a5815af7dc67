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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-seedxor/pkg/logging"
	"github.com/jeremyhahn/go-seedxor/pkg/secretstore"
	"github.com/jeremyhahn/go-seedxor/pkg/secure"
)

func storeWithSecret(t *testing.T, secret []byte) *secretstore.Store {
	t.Helper()
	store := newMemoryStore()
	require.NoError(t, store.CommitPermanent(secure.ModeWords, secret))
	return store
}

func startSplit(t *testing.T, src secure.Source, entropy EntropySource) (*SplitFlow, Screen) {
	t.Helper()
	f, screen, err := StartSplit(&SplitFlowConfig{
		Splitter: newTestSplitter(t, entropy),
		Source:   src,
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)
	return f, screen
}

func handle(t *testing.T, f interface {
	Handle(Input) (Screen, error)
}, in Input) Screen {
	t.Helper()
	screen, err := f.Handle(in)
	require.NoError(t, err)
	return screen
}

func TestStartSplit_RequiresConfig(t *testing.T) {
	_, _, err := StartSplit(nil)
	require.Error(t, err)
	_, _, err = StartSplit(&SplitFlowConfig{Splitter: newTestSplitter(t, nil)})
	require.Error(t, err)
}

func TestSplitFlow_Completed(t *testing.T) {
	secret := testSecret(t)
	f, screen := startSplit(t, storeWithSecret(t, secret), nil)
	assert.Equal(t, StepChoosePartCount, screen.Step)
	assert.Equal(t, OutcomePending, screen.Outcome)

	screen = handle(t, f, SelectPartCount{N: 3})
	assert.Equal(t, StepChooseMaskSource, screen.Step)
	assert.Equal(t, 3, screen.NumParts)

	screen = handle(t, f, Continue{})
	require.Equal(t, StepShowParts, screen.Step)
	require.NotNil(t, screen.Report)
	report := screen.Report
	require.Len(t, report.Parts, 3)
	assert.False(t, report.Random)

	words := make([][]string, 3)
	for i, p := range report.Parts {
		words[i] = append([]string(nil), p.Words...)
	}
	checksum := report.ChecksumWord

	screen = handle(t, f, Continue{})
	assert.Equal(t, StepVerifyPart, screen.Step)
	assert.Equal(t, "A", screen.PartLabel)

	screen = handle(t, f, SubmitPart{Words: words[0]})
	assert.Equal(t, "B", screen.PartLabel)
	screen = handle(t, f, SubmitPart{Words: words[1]})
	assert.Equal(t, "C", screen.PartLabel)
	screen = handle(t, f, SubmitPart{Words: words[2]})

	assert.Equal(t, StepDone, screen.Step)
	assert.Equal(t, OutcomeCompleted, screen.Outcome)
	assert.True(t, screen.Done())
	assert.Equal(t, checksum, screen.ChecksumWord)
	assert.Nil(t, screen.Report)
	assert.Nil(t, report.Parts)

	_, err := f.Handle(Continue{})
	assert.ErrorIs(t, err, ErrFlowFinished)

	// The user can restore what they transcribed.
	store := newMemoryStore()
	r := newTestReconstructor(t, store)
	for _, w := range words {
		require.NoError(t, r.AddPart(w))
	}
	_, err = r.Commit()
	require.NoError(t, err)
	assert.Equal(t, secret, activeSecret(t, store))
}

func TestSplitFlow_BadPartCount(t *testing.T) {
	f, _ := startSplit(t, storeWithSecret(t, testSecret(t)), nil)

	screen, err := f.Handle(SelectPartCount{N: 5})
	require.ErrorIs(t, err, ErrPartCount)
	assert.Equal(t, StepChoosePartCount, screen.Step)
	assert.Equal(t, OutcomePending, screen.Outcome)

	_, err = f.Handle(Continue{})
	require.ErrorIs(t, err, ErrUnexpectedInput)

	screen = handle(t, f, Abort{})
	assert.Equal(t, OutcomeAborted, screen.Outcome)
}

func TestSplitFlow_WrongTranscriptionReprompts(t *testing.T) {
	f, _ := startSplit(t, storeWithSecret(t, testSecret(t)), nil)
	handle(t, f, SelectPartCount{N: 2})
	screen := handle(t, f, Continue{})
	a := append([]string(nil), screen.Report.Parts[0].Words...)
	b := append([]string(nil), screen.Report.Parts[1].Words...)
	handle(t, f, Continue{})

	screen, err := f.Handle(SubmitPart{Words: b})
	require.ErrorIs(t, err, ErrTranscription)
	assert.Equal(t, StepVerifyPart, screen.Step)
	assert.Equal(t, "A", screen.PartLabel)

	screen, err = f.Handle(SubmitPart{Words: a[:10]})
	require.ErrorIs(t, err, ErrInvalidPart)
	assert.Equal(t, "A", screen.PartLabel)

	handle(t, f, SubmitPart{Words: a})
	screen = handle(t, f, SubmitPart{Words: b})
	assert.Equal(t, OutcomeCompleted, screen.Outcome)
}

func TestSplitFlow_AbortDuringVerifyShowsPartsAgain(t *testing.T) {
	f, _ := startSplit(t, storeWithSecret(t, testSecret(t)), nil)
	handle(t, f, SelectPartCount{N: 2})
	first := handle(t, f, Continue{})
	handle(t, f, Continue{})

	screen := handle(t, f, Abort{})
	assert.Equal(t, StepShowParts, screen.Step)
	assert.Equal(t, first.Report.Parts[0].Words, screen.Report.Parts[0].Words)

	screen = handle(t, f, Continue{})
	assert.Equal(t, "A", screen.PartLabel)
}

func TestSplitFlow_AbortDeterministicAtShowParts(t *testing.T) {
	f, _ := startSplit(t, storeWithSecret(t, testSecret(t)), nil)
	handle(t, f, SelectPartCount{N: 2})
	screen := handle(t, f, Continue{})
	report := screen.Report

	screen = handle(t, f, Abort{})
	assert.Equal(t, OutcomeAborted, screen.Outcome)
	assert.Nil(t, screen.Report)
	assert.Nil(t, report.Parts)
}

func TestSplitFlow_AbortRandomNeedsConfirmation(t *testing.T) {
	f, _ := startSplit(t, storeWithSecret(t, testSecret(t)), nil)
	handle(t, f, SelectPartCount{N: 4})
	screen := handle(t, f, UseRandomMasks{})
	require.True(t, screen.Report.Random)
	shown := append([]string(nil), screen.Report.Parts[0].Words...)

	screen = handle(t, f, Abort{})
	assert.Equal(t, StepConfirmDiscard, screen.Step)

	screen = handle(t, f, Continue{})
	assert.Equal(t, StepShowParts, screen.Step)
	assert.Equal(t, shown, screen.Report.Parts[0].Words)

	handle(t, f, Abort{})
	screen = handle(t, f, Confirm{})
	assert.Equal(t, OutcomeAborted, screen.Outcome)
}

func TestSplitFlow_NoSecretFails(t *testing.T) {
	f, _ := startSplit(t, newMemoryStore(), nil)
	handle(t, f, SelectPartCount{N: 2})

	screen, err := f.Handle(Continue{})
	require.ErrorIs(t, err, secure.ErrNoSecret)
	assert.Equal(t, OutcomeFailed, screen.Outcome)
	assert.ErrorIs(t, screen.Err, secure.ErrNoSecret)
}

func TestSplitFlow_DegenerateEntropyShowsNothing(t *testing.T) {
	sample := make([]byte, PartSize)
	for i := range sample {
		sample[i] = byte(i % 3)
	}
	f, _ := startSplit(t, storeWithSecret(t, testSecret(t)), &fixedEntropy{sample: sample})
	handle(t, f, SelectPartCount{N: 2})

	screen, err := f.Handle(UseRandomMasks{})
	require.ErrorIs(t, err, ErrEntropy)
	assert.Equal(t, OutcomeFailed, screen.Outcome)
	assert.Nil(t, screen.Report)
}

func TestSplitFlow_Close(t *testing.T) {
	f, _ := startSplit(t, storeWithSecret(t, bytes.Repeat([]byte{3}, PartSize)), nil)
	handle(t, f, SelectPartCount{N: 2})
	screen := handle(t, f, Continue{})
	report := screen.Report

	f.Close()
	assert.Equal(t, OutcomeAborted, f.Screen().Outcome)
	assert.Nil(t, report.Parts)

	f.Close()
	assert.Equal(t, OutcomeAborted, f.Screen().Outcome)
}
