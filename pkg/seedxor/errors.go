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

	"github.com/jeremyhahn/go-seedxor/pkg/mnemonic"
)

var (
	// ErrInvalidPart is returned for a word list that does not decode to a
	// part. The session keeps every part accepted so far.
	ErrInvalidPart = errors.New("seedxor: invalid part")

	// ErrEntropy is returned when the random source fails its sanity check.
	// The whole split is abandoned; there is no deterministic fallback.
	ErrEntropy = errors.New("seedxor: random source failed sanity check")

	// ErrSelfCheck is returned when the parts of a split do not XOR back to
	// the secret. No part is ever returned alongside it.
	ErrSelfCheck = errors.New("seedxor: split self-check failed")

	// ErrSessionClosed is returned for an operation on a committed or
	// aborted reconstruction.
	ErrSessionClosed = errors.New("seedxor: session closed")

	// ErrTooFewParts is returned by Commit with fewer than MinParts parts.
	ErrTooFewParts = errors.New("seedxor: at least two parts are required")

	// ErrTooManyParts is returned when adding a part beyond MaxParts.
	ErrTooManyParts = errors.New("seedxor: at most four parts are supported")

	// ErrPartCount is returned for a split part count outside 2..4.
	ErrPartCount = errors.New("seedxor: part count must be 2, 3 or 4")

	// ErrInvalidLength is returned for a secret that is not 32 bytes.
	ErrInvalidLength = errors.New("seedxor: secret must be 32 bytes")

	// ErrTranscription is returned when re-entered words do not match the
	// part being verified.
	ErrTranscription = errors.New("seedxor: words do not match the part shown")

	// ErrUnexpectedInput is returned when a flow receives an input that is
	// not valid at its current step.
	ErrUnexpectedInput = errors.New("seedxor: input not valid at this step")

	// ErrFlowFinished is returned for input to a flow that already ended.
	ErrFlowFinished = errors.New("seedxor: flow already finished")
)

// rejectReason classifies a part rejection for metrics.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, mnemonic.ErrWordCount):
		return "word_count"
	case errors.Is(err, mnemonic.ErrUnknownWord):
		return "unknown_word"
	case errors.Is(err, mnemonic.ErrChecksum):
		return "checksum"
	case errors.Is(err, ErrTooManyParts):
		return "too_many_parts"
	case errors.Is(err, ErrSessionClosed):
		return "session_closed"
	default:
		return "invalid_part"
	}
}
