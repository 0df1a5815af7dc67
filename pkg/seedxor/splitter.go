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
	"strconv"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/jeremyhahn/go-seedxor/pkg/logging"
	"github.com/jeremyhahn/go-seedxor/pkg/metrics"
	"github.com/jeremyhahn/go-seedxor/pkg/mnemonic"
	"github.com/jeremyhahn/go-seedxor/pkg/secure"
	"github.com/jeremyhahn/go-seedxor/pkg/trng"
)

// maskPrefix is the domain label of deterministic masks.
var maskPrefix = []byte("Batshitoshi ")

// EntropySource supplies random bytes for random masks. trng.Resolver
// satisfies it.
type EntropySource interface {
	Rand(n int) ([]byte, error)
}

// SplitterConfig configures a Splitter.
type SplitterConfig struct {
	// Codec encodes the secret for the checksum word. Defaults to BIP-39.
	Codec mnemonic.Codec

	// Entropy draws random mask material. Defaults to the software source.
	Entropy EntropySource

	Logger *logging.Logger
}

// Splitter computes part sets.
type Splitter struct {
	codec   mnemonic.Codec
	entropy EntropySource
	logger  *logging.Logger

	// combine is replaced in tests to force a self-check failure.
	combine func(dst *Part, parts []Part)
}

// NewSplitter creates a Splitter.
func NewSplitter(cfg *SplitterConfig) (*Splitter, error) {
	if cfg == nil {
		cfg = &SplitterConfig{}
	}
	s := &Splitter{
		codec:   cfg.Codec,
		entropy: cfg.Entropy,
		logger:  cfg.Logger,
		combine: combine,
	}
	if s.codec == nil {
		s.codec = mnemonic.BIP39{}
	}
	if s.logger == nil {
		s.logger = logging.DefaultLogger()
	}
	if s.entropy == nil {
		rng, err := trng.NewResolver(&trng.Config{Mode: trng.ModeSoftware})
		if err != nil {
			return nil, fmt.Errorf("seedxor: default entropy source: %w", err)
		}
		s.entropy = rng
	}
	return s, nil
}

// DeterministicMask returns mask i (0-based) of an n-part split of secret:
// SHA256d("Batshitoshi " || secret || "<i> of <n> parts").
func DeterministicMask(secret []byte, i, n int) Part {
	msg := make([]byte, 0, len(maskPrefix)+len(secret)+16)
	msg = append(msg, maskPrefix...)
	msg = append(msg, secret...)
	msg = strconv.AppendInt(msg, int64(i), 10)
	msg = append(msg, " of "...)
	msg = strconv.AppendInt(msg, int64(n), 10)
	msg = append(msg, " parts"...)

	digest := chainhash.DoubleHashB(msg)
	secure.Wipe(msg)

	var mask Part
	copy(mask[:], digest)
	secure.Wipe(digest)
	return mask
}

// randomMask draws PartSize bytes, checks them, and returns their SHA256d.
func (s *Splitter) randomMask() (Part, error) {
	var mask Part
	sample, err := s.entropy.Rand(PartSize)
	if err != nil {
		return mask, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	defer secure.Wipe(sample)

	if len(sample) != PartSize {
		return mask, fmt.Errorf("%w: short read of %d bytes", ErrEntropy, len(sample))
	}
	if err := trng.CheckSample(sample); err != nil {
		return mask, fmt.Errorf("%w: %v", ErrEntropy, err)
	}

	digest := chainhash.DoubleHashB(sample)
	copy(mask[:], digest)
	secure.Wipe(digest)
	return mask, nil
}

// Split divides secret into numParts parts. The first numParts-1 parts are
// masks; the last is secret XORed with every mask. Deterministic splits of
// the same secret and count always produce the same set.
func (s *Splitter) Split(secret []byte, numParts int, useRandomMasks bool) (ps *PartSet, err error) {
	if numParts < MinParts || numParts > MaxParts {
		return nil, ErrPartCount
	}
	if len(secret) != PartSize {
		return nil, ErrInvalidLength
	}

	source := metrics.MaskDeterministic
	if useRandomMasks {
		source = metrics.MaskRandom
	}
	start := time.Now()

	parts := make([]Part, numParts)
	defer func() {
		if err != nil {
			wipeParts(parts)
			reason := splitErrorReason(err)
			metrics.RecordSplit(source, metrics.StatusError, 0)
			metrics.RecordSplitError(reason)
			if errors.Is(err, ErrSelfCheck) {
				s.logger.Error("split self-check failed, parts discarded", "parts", numParts, "mask_source", source)
				return
			}
			s.logger.Warn("split abandoned", "parts", numParts, "mask_source", source, "reason", reason)
		}
	}()

	checksum, err := mnemonic.ChecksumWord(s.codec, secret)
	if err != nil {
		return nil, fmt.Errorf("seedxor: encode secret: %w", err)
	}

	last := &parts[numParts-1]
	copy(last[:], secret)
	for i := 0; i < numParts-1; i++ {
		if useRandomMasks {
			parts[i], err = s.randomMask()
			if err != nil {
				return nil, err
			}
		} else {
			parts[i] = DeterministicMask(secret, i, numParts)
		}
		xorInto(last, &parts[i])
	}

	var check Part
	s.combine(&check, parts)
	ok := subtle.ConstantTimeCompare(check[:], secret) == 1
	check.Wipe()
	if !ok {
		return nil, ErrSelfCheck
	}

	metrics.RecordSplit(source, metrics.StatusSuccess, time.Since(start).Seconds())
	s.logger.Info("split computed", "parts", numParts, "mask_source", source)

	return &PartSet{
		Parts:        parts,
		ChecksumWord: checksum,
		Random:       useRandomMasks,
	}, nil
}

// SplitScoped borrows the secret from src for the duration of the split.
// The scope is closed, and the borrowed copy wiped, before it returns.
func (s *Splitter) SplitScoped(src secure.Source, numParts int, useRandomMasks bool) (*PartSet, error) {
	if numParts < MinParts || numParts > MaxParts {
		return nil, ErrPartCount
	}
	var ps *PartSet
	err := secure.Do(src, func(scope *secure.Scope) error {
		var err error
		ps, err = s.Split(scope.Bytes(), numParts, useRandomMasks)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func splitErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrEntropy):
		return "entropy"
	case errors.Is(err, ErrSelfCheck):
		return "self_check"
	default:
		return "encode"
	}
}
