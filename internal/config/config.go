// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/storagegate/underwrite/internal/logging"
	"github.com/storagegate/underwrite/internal/spoke"
)

// Vault backends.
const (
	VaultSQLite = "sqlite"
	VaultMemory = "memory"
)

// Config is the process configuration. A file only needs the keys it
// changes; everything else keeps its default.
type Config struct {
	Logging  logging.Config `yaml:"logging" json:"logging"`
	Doctrine spoke.Doctrine `yaml:"doctrine" json:"doctrine"`
	Batch    BatchConfig    `yaml:"batch" json:"batch"`
	Vault    VaultConfig    `yaml:"vault" json:"vault"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// Timeout is a Go duration string applied to each evaluation.
	Timeout string `yaml:"timeout" json:"timeout"`
}

// TimeoutDuration parses Timeout. Call Validate first.
func (b BatchConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0
	}
	return d
}

type VaultConfig struct {
	Driver string `yaml:"driver" json:"driver"`
	Path   string `yaml:"path" json:"path"`
}

func Default() Config {
	return Config{
		Logging:  logging.DefaultConfig(),
		Doctrine: spoke.DefaultDoctrine(),
		Batch:    BatchConfig{Concurrency: 4, Timeout: "30s"},
		Vault:    VaultConfig{Driver: VaultSQLite, Path: "underwrite.db"},
	}
}

// Load reads path and overlays it on Default. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse overlays YAML content on Default and validates the result.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if err := c.Doctrine.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("doctrine: %w", err))
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("batch.concurrency must be at least 1, got %d", c.Batch.Concurrency))
	}
	if d, err := time.ParseDuration(c.Batch.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("batch.timeout: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("batch.timeout must be positive, got %s", d))
	}
	switch c.Vault.Driver {
	case VaultMemory:
	case VaultSQLite:
		if c.Vault.Path == "" {
			errs = append(errs, errors.New("vault.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown vault.driver %q", c.Vault.Driver))
	}
	return errors.Join(errs...)
}
