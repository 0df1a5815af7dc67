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
	"errors"

	"github.com/jeremyhahn/go-seedxor/pkg/logging"
	"github.com/jeremyhahn/go-seedxor/pkg/metrics"
	"github.com/jeremyhahn/go-seedxor/pkg/mnemonic"
	"github.com/jeremyhahn/go-seedxor/pkg/secure"
)

// RestoreStore is the secret holder a restore commits to and may preload
// from. secretstore.Store satisfies it.
type RestoreStore interface {
	Committer
	secure.Source
}

// RestoreFlowConfig configures a RestoreFlow.
type RestoreFlowConfig struct {
	// Store is committed to and, when not empty, offered for preload.
	Store RestoreStore

	// Codec decodes entered parts. Defaults to BIP-39.
	Codec mnemonic.Codec

	Logger *logging.Logger
}

// RestoreFlow drives a Reconstructor from part entry to commit.
type RestoreFlow struct {
	store  RestoreStore
	recon  *Reconstructor
	logger *logging.Logger

	step       Step
	outcome    Outcome
	err        error
	canPreload bool
	commit     *CommitResult
}

// StartRestore creates a RestoreFlow. When the store already holds a
// 24-word secret the flow first offers to count it as a part.
func StartRestore(cfg *RestoreFlowConfig) (*RestoreFlow, Screen, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, Screen{}, errors.New("seedxor: restore flow requires a store")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	recon, err := NewReconstructor(&ReconstructorConfig{
		Store:  cfg.Store,
		Codec:  cfg.Codec,
		Logger: logger,
	})
	if err != nil {
		return nil, Screen{}, err
	}
	f := &RestoreFlow{
		store:  cfg.Store,
		recon:  recon,
		logger: logger.With("session", recon.Session().ID()),
		step:   StepEnterPart,
	}
	if !cfg.Store.IsEmpty() {
		f.canPreload = preloadable(cfg.Store)
		f.step = StepPreloadChoice
	}
	return f, f.Screen(), nil
}

// preloadable reports whether src can lend a 24-word secret.
func preloadable(src secure.Source) bool {
	scope, err := secure.Acquire(src)
	if err != nil {
		return false
	}
	_ = scope.Close()
	return true
}

// Reconstructor exposes the underlying accumulator.
func (f *RestoreFlow) Reconstructor() *Reconstructor {
	return f.recon
}

// Screen returns the current suspension point.
func (f *RestoreFlow) Screen() Screen {
	s := Screen{
		Step:         f.step,
		Outcome:      f.outcome,
		PartsEntered: f.recon.Count(),
		CanPreload:   f.canPreload,
		Commit:       f.commit,
		Err:          f.err,
	}
	switch f.step {
	case StepEnterPart:
		s.PartLabel = Label(f.recon.Count())
	case StepPartAccepted:
		s.ChecksumWord, _ = f.recon.ChecksumWord()
	case StepDone:
		if f.commit != nil {
			s.ChecksumWord = f.commit.ChecksumWord
			s.PartsEntered = f.commit.Parts
		}
	}
	return s
}

// Handle applies one input. A non-nil error with a pending outcome means
// the input was refused and every accepted part is still held.
func (f *RestoreFlow) Handle(in Input) (Screen, error) {
	if f.outcome != OutcomePending {
		return f.Screen(), ErrFlowFinished
	}

	var err error
	switch f.step {
	case StepPreloadChoice:
		err = f.preloadChoice(in)
	case StepEnterPart:
		err = f.enterPart(in)
	case StepPartAccepted:
		err = f.partAccepted(in)
	default:
		err = ErrUnexpectedInput
	}
	return f.Screen(), err
}

// Close aborts the flow if it is still pending.
func (f *RestoreFlow) Close() {
	if f.outcome == OutcomePending {
		f.abort()
	}
}

func (f *RestoreFlow) preloadChoice(in Input) error {
	switch in.(type) {
	case IncludeDeviceSecret:
		if !f.canPreload {
			return ErrUnexpectedInput
		}
		if err := f.recon.Preload(f.store); err != nil {
			return err
		}
		f.step = StepPartAccepted
		return nil
	case Continue:
		f.step = StepEnterPart
		return nil
	case Abort:
		f.abort()
		return nil
	}
	return ErrUnexpectedInput
}

func (f *RestoreFlow) enterPart(in Input) error {
	switch v := in.(type) {
	case SubmitPart:
		if err := f.recon.AddPart(v.Words); err != nil {
			return err
		}
		f.step = StepPartAccepted
		return nil
	case Finish:
		return f.finish()
	case Abort:
		f.abort()
		return nil
	}
	return ErrUnexpectedInput
}

func (f *RestoreFlow) partAccepted(in Input) error {
	switch in.(type) {
	case Continue:
		if f.recon.Count() >= MaxParts {
			return ErrTooManyParts
		}
		f.step = StepEnterPart
		return nil
	case Finish:
		return f.finish()
	case Abort:
		f.abort()
		return nil
	}
	return ErrUnexpectedInput
}

func (f *RestoreFlow) finish() error {
	result, err := f.recon.Commit()
	switch {
	case err == nil:
		f.commit = result
		f.end(OutcomeCompleted, nil)
		return nil
	case errors.Is(err, ErrTooFewParts):
		return err
	default:
		f.recon.discard()
		metrics.RecordRestore(metrics.OutcomeFailed)
		f.end(OutcomeFailed, err)
		return err
	}
}

func (f *RestoreFlow) abort() {
	f.recon.Abort()
	f.end(OutcomeAborted, nil)
}

func (f *RestoreFlow) end(outcome Outcome, err error) {
	f.step = StepDone
	f.outcome = outcome
	f.err = err
	f.logger.Info("restore flow finished", "outcome", outcome.String())
}
