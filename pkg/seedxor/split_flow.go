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
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-seedxor/pkg/logging"
	"github.com/jeremyhahn/go-seedxor/pkg/mnemonic"
	"github.com/jeremyhahn/go-seedxor/pkg/secure"
)

// SplitFlowConfig configures a SplitFlow.
type SplitFlowConfig struct {
	// Splitter computes the parts. Required.
	Splitter *Splitter

	// Source lends the secret to split. Required.
	Source secure.Source

	// Codec renders and verifies parts. Defaults to BIP-39.
	Codec mnemonic.Codec

	Logger *logging.Logger
}

// SplitFlow drives a split from part-count selection through verified
// transcription of every part.
type SplitFlow struct {
	splitter *Splitter
	source   secure.Source
	codec    mnemonic.Codec
	logger   *logging.Logger

	step     Step
	outcome  Outcome
	err      error
	numParts int
	parts    *PartSet
	report   *Report
	verify   int
}

// StartSplit creates a SplitFlow waiting for a part count.
func StartSplit(cfg *SplitFlowConfig) (*SplitFlow, Screen, error) {
	if cfg == nil || cfg.Splitter == nil || cfg.Source == nil {
		return nil, Screen{}, errors.New("seedxor: split flow requires a splitter and a source")
	}
	f := &SplitFlow{
		splitter: cfg.Splitter,
		source:   cfg.Source,
		codec:    cfg.Codec,
		logger:   cfg.Logger,
		step:     StepChoosePartCount,
	}
	if f.codec == nil {
		f.codec = mnemonic.BIP39{}
	}
	if f.logger == nil {
		f.logger = logging.DefaultLogger()
	}
	return f, f.Screen(), nil
}

// Screen returns the current suspension point.
func (f *SplitFlow) Screen() Screen {
	s := Screen{
		Step:     f.step,
		Outcome:  f.outcome,
		NumParts: f.numParts,
		Err:      f.err,
	}
	switch f.step {
	case StepShowParts, StepConfirmDiscard:
		s.Report = f.report
	case StepVerifyPart:
		s.PartLabel = Label(f.verify)
	case StepDone:
		if f.outcome == OutcomeCompleted {
			s.ChecksumWord = f.report.ChecksumWord
		}
	}
	return s
}

// Handle applies one input. A non-nil error with a pending outcome means
// the input was refused and the flow is still at the same step.
func (f *SplitFlow) Handle(in Input) (Screen, error) {
	if f.outcome != OutcomePending {
		return f.Screen(), ErrFlowFinished
	}

	var err error
	switch f.step {
	case StepChoosePartCount:
		err = f.choosePartCount(in)
	case StepChooseMaskSource:
		err = f.chooseMaskSource(in)
	case StepShowParts:
		err = f.showParts(in)
	case StepConfirmDiscard:
		err = f.confirmDiscard(in)
	case StepVerifyPart:
		err = f.verifyPart(in)
	default:
		err = ErrUnexpectedInput
	}
	return f.Screen(), err
}

// Close aborts the flow if it is still pending and wipes all parts.
func (f *SplitFlow) Close() {
	if f.outcome == OutcomePending {
		f.finish(OutcomeAborted, nil)
	}
}

func (f *SplitFlow) choosePartCount(in Input) error {
	switch v := in.(type) {
	case SelectPartCount:
		if v.N < MinParts || v.N > MaxParts {
			return ErrPartCount
		}
		f.numParts = v.N
		f.step = StepChooseMaskSource
		return nil
	case Abort:
		f.finish(OutcomeAborted, nil)
		return nil
	}
	return ErrUnexpectedInput
}

func (f *SplitFlow) chooseMaskSource(in Input) error {
	switch in.(type) {
	case Continue:
		return f.generate(false)
	case UseRandomMasks:
		return f.generate(true)
	case Abort:
		f.finish(OutcomeAborted, nil)
		return nil
	}
	return ErrUnexpectedInput
}

func (f *SplitFlow) generate(random bool) error {
	ps, err := f.splitter.SplitScoped(f.source, f.numParts, random)
	if err != nil {
		f.finish(OutcomeFailed, err)
		return err
	}
	report, err := NewReport(f.codec, ps)
	if err != nil {
		ps.Wipe()
		f.finish(OutcomeFailed, err)
		return err
	}
	f.parts = ps
	f.report = report
	f.step = StepShowParts
	return nil
}

func (f *SplitFlow) showParts(in Input) error {
	switch in.(type) {
	case Continue:
		f.verify = 0
		f.step = StepVerifyPart
		return nil
	case Abort:
		// Random parts cannot be shown again once discarded.
		if f.parts.Random {
			f.step = StepConfirmDiscard
			return nil
		}
		f.finish(OutcomeAborted, nil)
		return nil
	}
	return ErrUnexpectedInput
}

func (f *SplitFlow) confirmDiscard(in Input) error {
	switch in.(type) {
	case Confirm:
		f.finish(OutcomeAborted, nil)
		return nil
	case Continue, Abort:
		f.step = StepShowParts
		return nil
	}
	return ErrUnexpectedInput
}

func (f *SplitFlow) verifyPart(in Input) error {
	switch v := in.(type) {
	case SubmitPart:
		entropy, err := f.codec.Decode(v.Words)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPart, err)
		}
		defer secure.Wipe(entropy)
		if subtle.ConstantTimeCompare(entropy, f.parts.Parts[f.verify][:]) != 1 {
			return ErrTranscription
		}
		f.verify++
		if f.verify == f.parts.Len() {
			f.finish(OutcomeCompleted, nil)
		}
		return nil
	case Abort:
		f.step = StepShowParts
		return nil
	}
	return ErrUnexpectedInput
}

func (f *SplitFlow) finish(outcome Outcome, err error) {
	f.parts.Wipe()
	f.parts = nil
	if outcome != OutcomeCompleted {
		f.report.Wipe()
		f.report = nil
	} else {
		// Keep only the checksum word for the final screen.
		word := f.report.ChecksumWord
		f.report.Wipe()
		f.report = &Report{NumParts: f.numParts, ChecksumWord: word}
	}
	f.step = StepDone
	f.outcome = outcome
	f.err = err
	f.logger.Info("split flow finished", "outcome", outcome.String(), "parts", f.numParts)
}
