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

//go:build tpm2

package trng

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/go-tpm/tpm2"
	"github.com/google/go-tpm/tpm2/transport"
	"github.com/google/go-tpm/tpm2/transport/tcp"
	"github.com/google/go-tpm/tpmutil"
)

// tpm2Resolver draws entropy with the TPM2_GetRandom command.
type tpm2Resolver struct {
	mu     sync.RWMutex
	rwc    transport.TPMCloser
	config *TPM2Config
}

var _ Resolver = (*tpm2Resolver)(nil)

func newTPM2Resolver(config *TPM2Config) (Resolver, error) {
	cfg := TPM2Config{Device: "/dev/tpmrm0", MaxRequestSize: 32}
	if config != nil {
		cfg = *config
	}
	if cfg.Device == "" {
		cfg.Device = "/dev/tpmrm0"
	}
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = 32
	}

	var rwc transport.TPMCloser
	if cfg.UseSimulator {
		if cfg.SimulatorHost == "" {
			cfg.SimulatorHost = "localhost"
		}
		if cfg.SimulatorPort <= 0 {
			cfg.SimulatorPort = 2321
		}
		// swtpm listens for commands and platform control on adjacent ports
		cmdAddr := fmt.Sprintf("%s:%d", cfg.SimulatorHost, cfg.SimulatorPort)
		platAddr := fmt.Sprintf("%s:%d", cfg.SimulatorHost, cfg.SimulatorPort+1)
		conn, err := tcp.Open(tcp.Config{
			CommandAddress:  cmdAddr,
			PlatformAddress: platAddr,
		})
		if err != nil {
			return nil, fmt.Errorf("trng: connect TPM simulator at %s: %w", cmdAddr, err)
		}
		rwc = conn
	} else {
		dev, err := tpmutil.OpenTPM(cfg.Device)
		if err != nil {
			return nil, fmt.Errorf("trng: open TPM device %s: %w", cfg.Device, err)
		}
		rwc = transport.FromReadWriteCloser(dev)
	}

	return &tpm2Resolver{rwc: rwc, config: &cfg}, nil
}

func tpm2Available() bool {
	return true
}

func (t *tpm2Resolver) Rand(n int) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.rwc == nil {
		return nil, errors.New("trng: TPM2 resolver closed")
	}

	out := make([]byte, 0, n)
	for len(out) < n {
		chunk := n - len(out)
		if chunk > t.config.MaxRequestSize {
			chunk = t.config.MaxRequestSize
		}
		rsp, err := tpm2.GetRandom{BytesRequested: uint16(chunk)}.Execute(t.rwc)
		if err != nil {
			return nil, fmt.Errorf("trng: TPM2 GetRandom: %w", err)
		}
		if len(rsp.RandomBytes.Buffer) == 0 {
			return nil, errors.New("trng: TPM2 GetRandom returned no bytes")
		}
		out = append(out, rsp.RandomBytes.Buffer...)
	}
	return out[:n], nil
}

func (t *tpm2Resolver) Read(p []byte) (int, error) {
	return readFrom(t, p)
}

func (t *tpm2Resolver) Mode() Mode {
	return ModeTPM2
}

func (t *tpm2Resolver) Available() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rwc != nil
}

func (t *tpm2Resolver) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rwc == nil {
		return nil
	}
	err := t.rwc.Close()
	t.rwc = nil
	return err
}
