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
	"fmt"

	"github.com/google/uuid"
	"github.com/jeremyhahn/go-seedxor/pkg/logging"
	"github.com/jeremyhahn/go-seedxor/pkg/metrics"
	"github.com/jeremyhahn/go-seedxor/pkg/mnemonic"
	"github.com/jeremyhahn/go-seedxor/pkg/secretstore"
	"github.com/jeremyhahn/go-seedxor/pkg/secure"
)

// State is the lifecycle state of a Reconstructor.
type State int

const (
	// StateEmpty is a fresh session with no parts.
	StateEmpty State = iota

	// StateCollecting holds at least one part and accepts more.
	StateCollecting

	// StateCommitted has handed the combined secret to the store.
	StateCommitted

	// StateAborted was cancelled and its parts wiped.
	StateAborted
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCollecting:
		return "collecting"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the accumulator of one restore. It never leaves the
// Reconstructor that owns it.
type Session struct {
	id    string
	parts []Part
	acc   Part
}

func newSession() *Session {
	return &Session{
		id:    uuid.NewString(),
		parts: make([]Part, 0, MaxParts),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Len returns the number of accepted parts.
func (s *Session) Len() int {
	return len(s.parts)
}

// add appends a copy of p and recomputes the running XOR over all parts.
func (s *Session) add(p *Part) {
	s.parts = append(s.parts, *p)
	combine(&s.acc, s.parts)
}

func (s *Session) wipe() {
	wipeParts(s.parts)
	s.parts = s.parts[:0]
	s.acc.Wipe()
}

// Committer receives a reconstructed secret. secretstore.Store satisfies it.
type Committer interface {
	IsEmpty() bool
	CommitPermanent(mode secure.Mode, secret []byte) error
	CommitEphemeral(mode secure.Mode, secret []byte) error
}

// ReconstructorConfig configures a Reconstructor.
type ReconstructorConfig struct {
	// Store receives the secret on Commit. Required.
	Store Committer

	// Codec decodes submitted parts. Defaults to BIP-39.
	Codec mnemonic.Codec

	Logger *logging.Logger
}

// CommitResult reports where a committed secret went.
type CommitResult struct {
	Path         secretstore.CommitPath
	Parts        int
	ChecksumWord string
}

// Reconstructor collects parts and commits their XOR to the store.
//
// The lifecycle is Empty, then Collecting after the first part, then
// Committed or Aborted. Both terminal states wipe every part and the
// running XOR; further operations return ErrSessionClosed.
type Reconstructor struct {
	store   Committer
	codec   mnemonic.Codec
	logger  *logging.Logger
	session *Session
	state   State
}

// NewReconstructor creates a Reconstructor in StateEmpty.
func NewReconstructor(cfg *ReconstructorConfig) (*Reconstructor, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, errors.New("seedxor: reconstructor requires a store")
	}
	r := &Reconstructor{
		store:   cfg.Store,
		codec:   cfg.Codec,
		logger:  cfg.Logger,
		session: newSession(),
		state:   StateEmpty,
	}
	if r.codec == nil {
		r.codec = mnemonic.BIP39{}
	}
	if r.logger == nil {
		r.logger = logging.DefaultLogger()
	}
	r.logger = r.logger.With("session", r.session.ID())
	return r, nil
}

// State returns the lifecycle state.
func (r *Reconstructor) State() State {
	return r.state
}

// Session returns the accumulator. Only its ID and length are visible.
func (r *Reconstructor) Session() *Session {
	return r.session
}

// Count returns the number of accepted parts.
func (r *Reconstructor) Count() int {
	return r.session.Len()
}

func (r *Reconstructor) closed() bool {
	return r.state == StateCommitted || r.state == StateAborted
}

// AddPart decodes words and adds the part. A rejected part leaves every
// previously accepted part in place. Errors never include the words.
func (r *Reconstructor) AddPart(words []string) error {
	if err := r.checkOpen(); err != nil {
		metrics.RecordPartRejected(rejectReason(err))
		return err
	}
	if r.session.Len() >= MaxParts {
		metrics.RecordPartRejected(rejectReason(ErrTooManyParts))
		return ErrTooManyParts
	}

	entropy, err := r.codec.Decode(words)
	if err != nil {
		metrics.RecordPartRejected(rejectReason(err))
		r.logger.Info("part rejected", "reason", rejectReason(err), "parts", r.session.Len())
		return fmt.Errorf("%w: %w", ErrInvalidPart, err)
	}
	defer secure.Wipe(entropy)
	if len(entropy) != PartSize {
		metrics.RecordPartRejected("length")
		return fmt.Errorf("%w: %w", ErrInvalidPart, ErrInvalidLength)
	}

	var p Part
	copy(p[:], entropy)
	defer p.Wipe()
	return r.addPart(&p)
}

func (r *Reconstructor) checkOpen() error {
	if r.closed() {
		return ErrSessionClosed
	}
	return nil
}

func (r *Reconstructor) addPart(p *Part) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if r.session.Len() >= MaxParts {
		return ErrTooManyParts
	}
	r.session.add(p)
	r.state = StateCollecting
	r.logger.Info("part accepted", "parts", r.session.Len())
	return nil
}

// Preload seeds the session with the device's current secret as the first
// part, so that parts of a split which counted it can be combined with it.
// It is only valid before any part has been added.
func (r *Reconstructor) Preload(src secure.Source) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	if r.state != StateEmpty {
		return ErrUnexpectedInput
	}
	return secure.Do(src, func(scope *secure.Scope) error {
		var p Part
		copy(p[:], scope.Bytes())
		defer p.Wipe()
		return r.addPart(&p)
	})
}

// ChecksumWord returns the last word of the current XOR's phrase. It is
// only available once at least MinParts parts are accepted, so the user
// can compare it against the word recorded at split time.
func (r *Reconstructor) ChecksumWord() (string, bool) {
	if r.closed() || r.session.Len() < MinParts {
		return "", false
	}
	word, err := mnemonic.ChecksumWord(r.codec, r.session.acc[:])
	if err != nil {
		return "", false
	}
	return word, true
}

// Abort wipes the session. It is idempotent.
func (r *Reconstructor) Abort() {
	if r.closed() {
		return
	}
	r.discard()
	metrics.RecordRestore(metrics.OutcomeAborted)
	r.logger.Info("restore aborted")
}

// discard wipes the session without recording an outcome.
func (r *Reconstructor) discard() {
	r.session.wipe()
	r.state = StateAborted
}

// Commit hands the XOR of all parts to the store: permanently when the
// store holds nothing, otherwise as an ephemeral secret until the next
// power cycle. On a store error the session stays in StateCollecting.
func (r *Reconstructor) Commit() (*CommitResult, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	if r.session.Len() < MinParts {
		return nil, ErrTooFewParts
	}

	word, _ := r.ChecksumWord()
	path := secretstore.CommitEphemeral
	if r.store.IsEmpty() {
		path = secretstore.CommitPermanent
	}

	final := secure.NewBuffer(PartSize)
	defer final.Wipe()
	copy(final.Bytes(), r.session.acc[:])

	var err error
	if path == secretstore.CommitPermanent {
		err = r.store.CommitPermanent(secure.ModeWords, final.Bytes())
	} else {
		err = r.store.CommitEphemeral(secure.ModeWords, final.Bytes())
	}
	if err != nil {
		r.logger.Error("commit failed", "path", string(path), "error", err)
		return nil, fmt.Errorf("seedxor: commit %s: %w", path, err)
	}

	result := &CommitResult{
		Path:         path,
		Parts:        r.session.Len(),
		ChecksumWord: word,
	}
	r.session.wipe()
	r.state = StateCommitted
	metrics.RecordCommit(string(path))
	metrics.RecordRestore(metrics.OutcomeCompleted)
	r.logger.Info("restore committed", "path", string(path), "parts", result.Parts)
	return result, nil
}
