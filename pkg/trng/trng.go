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

// Package trng resolves the true-random source used for random split masks.
//
// The device prefers hardware entropy: a PKCS#11 token or a TPM 2.0 chip
// when the binary is built with the pkcs11 or tpm2 tags. Otherwise the
// operating system CSPRNG is used.
//
//	rng, _ := trng.NewResolver(&trng.Config{Mode: trng.ModeAuto})
//	defer rng.Close()
//	sample, _ := rng.Rand(32)
//
// Every sample handed to the splitter should pass CheckSample, a coarse
// stuck-bit test that catches a dead or disconnected generator.
package trng

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// Mode specifies which entropy source to use.
type Mode string

const (
	// ModeAuto picks the best available source: PKCS#11 > TPM2 > software.
	ModeAuto Mode = "auto"

	// ModeSoftware uses the operating system CSPRNG.
	ModeSoftware Mode = "software"

	// ModeTPM2 uses the TPM 2.0 GetRandom command.
	ModeTPM2 Mode = "tpm2"

	// ModePKCS11 uses C_GenerateRandom on a PKCS#11 token.
	ModePKCS11 Mode = "pkcs11"
)

// MinDistinctBytes is the fewest distinct byte values a 32-byte sample may
// contain before the generator is considered broken.
const MinDistinctBytes = 5

// ErrDegenerate is returned by CheckSample for a sample with too little variety.
var ErrDegenerate = errors.New("trng: degenerate sample")

// Config selects and configures the entropy source.
type Config struct {
	// Mode is the primary source. Defaults to ModeAuto.
	Mode Mode

	// FallbackMode is tried when the primary source fails a read.
	FallbackMode Mode

	TPM2   *TPM2Config
	PKCS11 *PKCS11Config
}

// TPM2Config configures the TPM 2.0 source.
type TPM2Config struct {
	// Device path, default /dev/tpmrm0.
	Device string

	// MaxRequestSize caps bytes per GetRandom call. Default 32.
	MaxRequestSize int

	// UseSimulator connects to a swtpm over TCP instead of Device.
	UseSimulator  bool
	SimulatorHost string
	SimulatorPort int
}

// PKCS11Config configures the PKCS#11 source.
type PKCS11Config struct {
	// Module is the path to the PKCS#11 library.
	Module string
	SlotID uint
	PIN    string
}

// Source is a raw entropy source.
type Source interface {
	Rand(n int) ([]byte, error)
	Available() bool
	Close() error
}

// Resolver is the entropy source the application holds for its lifetime.
// It implements io.Reader.
type Resolver interface {
	Source
	Read(p []byte) (n int, err error)

	// Mode reports which source actually serves requests.
	Mode() Mode
}

// NewResolver opens the configured source. A nil config selects ModeAuto.
func NewResolver(cfg *Config) (Resolver, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}

	switch cfg.Mode {
	case ModeAuto:
		return newAutoResolver(cfg)
	case ModeSoftware:
		return newSoftwareResolver(), nil
	case ModeTPM2:
		return newTPM2Resolver(cfg.TPM2)
	case ModePKCS11:
		return newPKCS11Resolver(cfg.PKCS11)
	default:
		return nil, fmt.Errorf("trng: unknown mode %q", cfg.Mode)
	}
}

// ParseMode validates a mode name from configuration.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAuto, ModeSoftware, ModeTPM2, ModePKCS11:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("trng: unknown mode %q", s)
	}
}

// CheckSample returns ErrDegenerate when b holds fewer than
// MinDistinctBytes distinct byte values.
func CheckSample(b []byte) error {
	if n := DistinctBytes(b); n < MinDistinctBytes {
		return fmt.Errorf("%w: %d distinct byte values in %d bytes", ErrDegenerate, n, len(b))
	}
	return nil
}

// DistinctBytes counts the distinct byte values in b.
func DistinctBytes(b []byte) int {
	var seen [256]bool
	n := 0
	for _, v := range b {
		if !seen[v] {
			seen[v] = true
			n++
		}
	}
	return n
}

// softwareResolver reads from crypto/rand.
type softwareResolver struct{}

var _ Resolver = (*softwareResolver)(nil)

func newSoftwareResolver() Resolver {
	return &softwareResolver{}
}

func (s *softwareResolver) Rand(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("trng: software read failed: %w", err)
	}
	return buf, nil
}

func (s *softwareResolver) Read(p []byte) (int, error) {
	return rand.Read(p)
}

func (s *softwareResolver) Mode() Mode {
	return ModeSoftware
}

func (s *softwareResolver) Available() bool {
	return true
}

func (s *softwareResolver) Close() error {
	return nil
}

// readFrom adapts a Rand-style source to io.Reader semantics.
func readFrom(src Source, p []byte) (int, error) {
	data, err := src.Rand(len(p))
	if err != nil {
		return 0, err
	}
	n := copy(p, data)
	for i := range data {
		data[i] = 0
	}
	return n, nil
}
