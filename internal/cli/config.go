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

package cli

import (
	"fmt"
	"io"

	"github.com/jeremyhahn/go-seedxor/internal/config"
	"github.com/jeremyhahn/go-seedxor/pkg/logging"
	"github.com/jeremyhahn/go-seedxor/pkg/metrics"
	"github.com/jeremyhahn/go-seedxor/pkg/secretstore"
	"github.com/jeremyhahn/go-seedxor/pkg/storage"
	"github.com/jeremyhahn/go-seedxor/pkg/storage/file"
	"github.com/jeremyhahn/go-seedxor/pkg/storage/memory"
	"github.com/jeremyhahn/go-seedxor/pkg/trng"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// DataDir overrides storage.path
	DataDir string

	// Storage overrides storage.backend (file, memory)
	Storage string

	// RNG overrides rng.mode (auto, software, tpm2, pkcs11)
	RNG string

	// OutputFormat controls output formatting (json, text)
	OutputFormat string

	// Verbose enables debug logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		OutputFormat: string(OutputFormatText),
	}
}

// Resolve loads the configuration file and applies command-line overrides
func (c *Config) Resolve() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.ConfigFile)
	if err != nil {
		return nil, err
	}
	if c.DataDir != "" {
		cfg.Storage.Path = c.DataDir
	}
	if c.Storage != "" {
		cfg.Storage.Backend = c.Storage
	}
	if c.RNG != "" {
		cfg.RNG.Mode = c.RNG
	}
	if c.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// device is the opened secret store and its collaborators for one command
type device struct {
	cfg     *config.Config
	logger  *logging.Logger
	backend storage.Backend
	store   *secretstore.Store
	rng     trng.Resolver
}

// openDevice resolves the configuration and opens the secret store
func (c *Config) openDevice(logOut io.Writer) (*device, error) {
	cfg, err := c.Resolve()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = logOut
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	backend, err := createBackend(cfg.Storage)
	if err != nil {
		return nil, err
	}

	return &device{
		cfg:     cfg,
		logger:  logger,
		backend: backend,
		store:   secretstore.New(backend, logger.With("component", "secretstore")),
	}, nil
}

// createBackend creates the storage backend for the secret slot
func createBackend(cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case "file":
		backend, err := file.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage backend: %w", err)
		}
		return backend, nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// entropy opens the configured random source on first use
func (d *device) entropy() (trng.Resolver, error) {
	if d.rng != nil {
		return d.rng, nil
	}
	rng, err := trng.NewResolver(d.cfg.TRNGConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open random source: %w", err)
	}
	d.logger.Debug("random source opened", "mode", string(rng.Mode()))
	d.rng = rng
	return rng, nil
}

// close drops any temporary secret, releases the random source and closes
// the backend after writing the metrics textfile
func (d *device) close() error {
	d.store.PowerCycle()
	if d.rng != nil {
		d.logger.MaybeError("close random source", d.rng.Close())
	}
	if path := d.cfg.Metrics.Textfile; path != "" && metrics.IsEnabled() {
		d.logger.MaybeError("write metrics textfile", metrics.WriteTextfile(path))
	}
	return d.backend.Close()
}
