// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storagegate/underwrite/internal/config"
	"github.com/storagegate/underwrite/internal/logging"
	"github.com/storagegate/underwrite/internal/pipeline"
	"github.com/storagegate/underwrite/internal/spoke"
	"github.com/storagegate/underwrite/internal/vault"
)

// app is the process wiring shared by every subcommand.
type app struct {
	cfg          config.Config
	logger       *zap.Logger
	orchestrator *pipeline.Orchestrator
}

func newApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}

	// Logs go to stderr so stdout stays parseable.
	logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	orch, err := pipeline.New(
		spoke.NewSet(cfg.Doctrine),
		pipeline.WithLogger(logger),
		pipeline.WithAuditSink(logging.NewZapAuditSink(logger)),
	)
	if err != nil {
		return nil, err
	}

	cmd.SetContext(logging.WithLogger(contextOf(cmd), logger))
	return &app{cfg: cfg, logger: logger, orchestrator: orch}, nil
}

func (a *app) batchOptions() pipeline.BatchOptions {
	return pipeline.BatchOptions{
		Concurrency: a.cfg.Batch.Concurrency,
		Timeout:     a.cfg.Batch.TimeoutDuration(),
	}
}

// openVault opens the configured store. The caller closes it.
func (a *app) openVault() (vault.Store, error) {
	switch a.cfg.Vault.Driver {
	case config.VaultMemory:
		return vault.NewMemStore(), nil
	default:
		return vault.OpenSQLite(a.cfg.Vault.Path)
	}
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
