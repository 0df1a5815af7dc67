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

package secretstore

import (
	"errors"
	"fmt"

	"github.com/jeremyhahn/go-seedxor/pkg/secure"
)

// SlotSize is the fixed size of an encoded secret record.
const SlotSize = 72

const (
	tagWords  byte = 0x01
	tagXprv   byte = 0x02
	tagMaster byte = 0x03

	headerSize = 2
)

// ErrEncoding is returned for a slot record that cannot be decoded.
var ErrEncoding = errors.New("secretstore: malformed secret record")

// encodeSlot lays out mode tag, payload length, payload and zero padding.
func encodeSlot(mode secure.Mode, secret []byte) ([]byte, error) {
	tag, err := modeTag(mode)
	if err != nil {
		return nil, err
	}
	if err := checkLength(mode, len(secret)); err != nil {
		return nil, err
	}
	slot := make([]byte, SlotSize)
	slot[0] = tag
	slot[1] = byte(len(secret))
	copy(slot[headerSize:], secret)
	return slot, nil
}

// decodeSlot returns a fresh copy of the payload. The caller owns it and
// must wipe it.
func decodeSlot(slot []byte) (secure.Mode, []byte, error) {
	if len(slot) != SlotSize {
		return secure.ModeNone, nil, fmt.Errorf("%w: %d bytes", ErrEncoding, len(slot))
	}
	var mode secure.Mode
	switch slot[0] {
	case tagWords:
		mode = secure.ModeWords
	case tagXprv:
		mode = secure.ModeXprv
	case tagMaster:
		mode = secure.ModeMaster
	default:
		return secure.ModeNone, nil, fmt.Errorf("%w: unknown tag 0x%02x", ErrEncoding, slot[0])
	}
	n := int(slot[1])
	if err := checkLength(mode, n); err != nil {
		return secure.ModeNone, nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	out := make([]byte, n)
	copy(out, slot[headerSize:headerSize+n])
	return mode, out, nil
}

func modeTag(mode secure.Mode) (byte, error) {
	switch mode {
	case secure.ModeWords:
		return tagWords, nil
	case secure.ModeXprv:
		return tagXprv, nil
	case secure.ModeMaster:
		return tagMaster, nil
	default:
		return 0, fmt.Errorf("secretstore: cannot store mode %q", mode)
	}
}

func checkLength(mode secure.Mode, n int) error {
	switch mode {
	case secure.ModeWords:
		if n == 16 || n == 24 || n == 32 {
			return nil
		}
	case secure.ModeXprv:
		if n == 64 {
			return nil
		}
	case secure.ModeMaster:
		if n >= 16 && n <= 64 {
			return nil
		}
	}
	return fmt.Errorf("secretstore: invalid %s secret length %d", mode, n)
}
