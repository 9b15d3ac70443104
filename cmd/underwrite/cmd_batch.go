// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storagegate/underwrite/internal/intake/decoders"
	"github.com/storagegate/underwrite/internal/pipeline"
	"github.com/storagegate/underwrite/internal/report"
)

type batchFlags struct {
	file        string
	concurrency int
	timeout     time.Duration
	format      string
	persist     bool
}

func newBatchCmd(root *rootFlags) *cobra.Command {
	flags := &batchFlags{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate every candidate in a file",
		Long: "Batch evaluates candidates from a multi-document YAML file or a YAML/JSON list\n" +
			"with bounded concurrency. Items that fail validation or time out are listed\n" +
			"as failures; the command exits non-zero when any item failed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.file, "file", "f", "", "Batch file (required)")
	f.IntVar(&flags.concurrency, "concurrency", 0, "Evaluations in flight (config batch.concurrency when 0)")
	f.DurationVar(&flags.timeout, "timeout", 0, "Per-item timeout (config batch.timeout when 0)")
	f.StringVar(&flags.format, "format", "table", "Output format: table, markdown or json")
	f.BoolVar(&flags.persist, "persist", false, "Record successful runs in the vault")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootFlags, flags *batchFlags) error {
	mode, err := report.ParseMode(flags.format)
	if err != nil {
		return err
	}
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer a.close()
	ctx := cmd.Context()

	decoded, err := decoders.NewDefaultRegistry().ReadFile(ctx, flags.file)
	if err != nil {
		return err
	}

	opts := a.batchOptions()
	if flags.concurrency > 0 {
		opts.Concurrency = flags.concurrency
	}
	if flags.timeout > 0 {
		opts.Timeout = flags.timeout
	}

	out := a.orchestrator.EvaluateBatch(ctx, decoded.Items, opts)
	if err := report.Batch(cmd.OutOrStdout(), mode, out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if flags.persist && len(out.Results) > 0 {
		store, err := a.openVault()
		if err != nil {
			return err
		}
		defer store.Close()
		for _, res := range out.Results {
			if err := pipeline.Persist(ctx, store, res); err != nil {
				return err
			}
		}
		a.logger.Info("runs recorded", zap.Int("count", len(out.Results)), zap.String("vault", a.cfg.Vault.Path))
	}

	if len(out.Failures) > 0 {
		return fmt.Errorf("%d of %d candidates failed", len(out.Failures), len(decoded.Items))
	}
	return nil
}
