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

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-seedxor/pkg/logging"
	"github.com/jeremyhahn/go-seedxor/pkg/trng"
)

// Config represents the complete device configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Storage StorageConfig `yaml:"storage"`
	RNG     RNGConfig     `yaml:"rng"`
	Split   SplitConfig   `yaml:"split"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig selects where the durable secret slot lives
type StorageConfig struct {
	Backend string `yaml:"backend"` // file, memory
	Path    string `yaml:"path"`
}

// RNGConfig selects the random source used for random masks
type RNGConfig struct {
	Mode     string        `yaml:"mode"`     // auto, software, tpm2, pkcs11
	Fallback string        `yaml:"fallback"` // optional second source
	TPM2     *TPM2Config   `yaml:"tpm2,omitempty"`
	PKCS11   *PKCS11Config `yaml:"pkcs11,omitempty"`
}

// TPM2Config contains TPM 2.0 random source settings
type TPM2Config struct {
	DevicePath    string `yaml:"device_path"`
	UseSimulator  bool   `yaml:"use_simulator"`
	SimulatorHost string `yaml:"simulator_host"`
	SimulatorPort int    `yaml:"simulator_port"`
}

// PKCS11Config contains PKCS#11 random source settings
type PKCS11Config struct {
	Library string `yaml:"library"`
	Slot    uint   `yaml:"slot"`
	Pin     string `yaml:"pin"`
}

// SplitConfig holds defaults for the split command
type SplitConfig struct {
	Parts      int  `yaml:"parts"`
	RandomMask bool `yaml:"random_masks"`
}

// MetricsConfig controls metrics recording
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"` // node_exporter textfile path, empty to skip
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{Backend: "file", Path: "seedxor-data"},
		RNG:     RNGConfig{Mode: string(trng.ModeAuto), Fallback: string(trng.ModeSoftware)},
		Split:   SplitConfig{Parts: 2},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads configuration from a YAML file and applies environment variable overrides
func Load(path string) (*Config, error) {
	// #nosec G304 - Config file path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is set, otherwise the defaults with
// environment overrides applied
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg := Default()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	// Logging
	if level := os.Getenv("SEEDXOR_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("SEEDXOR_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	// Storage
	if backend := os.Getenv("SEEDXOR_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if dataDir := os.Getenv("SEEDXOR_DATA_DIR"); dataDir != "" {
		cfg.Storage.Path = dataDir
	}

	// RNG
	if mode := os.Getenv("SEEDXOR_RNG_MODE"); mode != "" {
		cfg.RNG.Mode = mode
	}
	if tpmPath := os.Getenv("TPM_DEVICE_PATH"); tpmPath != "" {
		if cfg.RNG.TPM2 == nil {
			cfg.RNG.TPM2 = &TPM2Config{}
		}
		cfg.RNG.TPM2.DevicePath = tpmPath
	}
	if pkcs11Lib := os.Getenv("PKCS11_LIBRARY"); pkcs11Lib != "" {
		if cfg.RNG.PKCS11 == nil {
			cfg.RNG.PKCS11 = &PKCS11Config{}
		}
		cfg.RNG.PKCS11.Library = pkcs11Lib
	}

	// Split
	if parts := os.Getenv("SEEDXOR_SPLIT_PARTS"); parts != "" {
		n, err := strconv.Atoi(parts)
		if err != nil {
			log.Printf("Warning: invalid SEEDXOR_SPLIT_PARTS value %q, using default %d: %v",
				parts, cfg.Split.Parts, err)
		} else {
			cfg.Split.Parts = n
		}
	}

	// Metrics
	if textfile := os.Getenv("SEEDXOR_METRICS_TEXTFILE"); textfile != "" {
		cfg.Metrics.Textfile = textfile
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Logging.Format)
	}

	switch c.Storage.Backend {
	case "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the file backend")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid storage backend: %q (must be file or memory)", c.Storage.Backend)
	}

	if _, err := trng.ParseMode(c.RNG.Mode); err != nil {
		return fmt.Errorf("invalid rng mode: %w", err)
	}
	if c.RNG.Fallback != "" {
		if _, err := trng.ParseMode(c.RNG.Fallback); err != nil {
			return fmt.Errorf("invalid rng fallback: %w", err)
		}
	}
	if c.RNG.Mode == string(trng.ModePKCS11) && (c.RNG.PKCS11 == nil || c.RNG.PKCS11.Library == "") {
		return fmt.Errorf("PKCS11 library is required when rng mode is pkcs11")
	}

	if c.Split.Parts < 2 || c.Split.Parts > 4 {
		return fmt.Errorf("invalid split parts: %d (must be 2, 3 or 4)", c.Split.Parts)
	}
	return nil
}

// LoggerConfig converts the logging section for pkg/logging
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
	}
}

// TRNGConfig converts the rng section for pkg/trng
func (c *Config) TRNGConfig() *trng.Config {
	cfg := &trng.Config{
		Mode:         trng.Mode(c.RNG.Mode),
		FallbackMode: trng.Mode(c.RNG.Fallback),
	}
	if c.RNG.TPM2 != nil {
		cfg.TPM2 = &trng.TPM2Config{
			Device:        c.RNG.TPM2.DevicePath,
			UseSimulator:  c.RNG.TPM2.UseSimulator,
			SimulatorHost: c.RNG.TPM2.SimulatorHost,
			SimulatorPort: c.RNG.TPM2.SimulatorPort,
		}
	}
	if c.RNG.PKCS11 != nil {
		cfg.PKCS11 = &trng.PKCS11Config{
			Module: c.RNG.PKCS11.Library,
			SlotID: c.RNG.PKCS11.Slot,
			PIN:    c.RNG.PKCS11.Pin,
		}
	}
	return cfg
}
