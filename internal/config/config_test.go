// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storagegate/underwrite/internal/config"
	"github.com/storagegate/underwrite/internal/spoke"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, spoke.DefaultDoctrine(), cfg.Doctrine)
	assert.Equal(t, 30*time.Second, cfg.Batch.TimeoutDuration())
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
logging:
  level: debug
doctrine:
  weightProfile: legacy
  constructionCostPsf: 72.5
batch:
  concurrency: 8
  timeout: 2m
vault:
  driver: memory
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format, "unset keys keep their default")
	assert.Equal(t, spoke.ProfileLegacy, cfg.Doctrine.WeightProfile)
	assert.Equal(t, 72.5, cfg.Doctrine.ConstructionCostPSF)
	assert.Equal(t, 0.065, cfg.Doctrine.TargetCapRate)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, 2*time.Minute, cfg.Batch.TimeoutDuration())
	assert.Equal(t, config.VaultMemory, cfg.Vault.Driver)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{name: "unknown weight profile", content: "doctrine:\n  weightProfile: blended\n", errContains: "unknown weightProfile"},
		{name: "fatal dscr above minimum", content: "doctrine:\n  fatalDscr: 1.5\n", errContains: "fatalDscr"},
		{name: "confidence above ceiling", content: "doctrine:\n  maxConfidencePct: 100\n", errContains: "maxConfidencePct"},
		{name: "zero concurrency", content: "batch:\n  concurrency: 0\n", errContains: "batch.concurrency"},
		{name: "bad timeout", content: "batch:\n  timeout: soon\n", errContains: "batch.timeout"},
		{name: "sqlite without path", content: "vault:\n  path: \"\"\n", errContains: "vault.path"},
		{name: "unknown driver", content: "vault:\n  driver: postgres\n", errContains: "vault.driver"},
		{name: "malformed yaml", content: "batch: [", errContains: "unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.content))
			assert.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	path := filepath.Join(t.TempDir(), "underwrite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vault:\n  path: /tmp/vault.db\n"), 0o600))
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/vault.db", cfg.Vault.Path)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}
