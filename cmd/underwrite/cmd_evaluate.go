// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/storagegate/underwrite/internal/intake/decoders"
	"github.com/storagegate/underwrite/internal/pipeline"
	"github.com/storagegate/underwrite/internal/report"
)

type evaluateFlags struct {
	file            string
	acreage         float64
	landCostPerAcre float64
	skipValidation  bool
	format          string
	persist         bool
	runID           string
}

func newEvaluateCmd(root *rootFlags) *cobra.Command {
	flags := &evaluateFlags{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one candidate site",
		Long: "Evaluate reads a candidate from a YAML, JSON or Markdown memo file, runs the\n" +
			"validation gate and every spoke, and prints the verdict. A run the gate blocks\n" +
			"exits with status 2.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.file, "file", "f", "", "Candidate file (required)")
	f.Float64Var(&flags.acreage, "acreage", 0, "Acreage override")
	f.Float64Var(&flags.landCostPerAcre, "land-cost-per-acre", 0, "Land cost per acre override")
	f.BoolVar(&flags.skipValidation, "skip-validation", false, "Run the spokes even when the gate reports blockers")
	f.StringVar(&flags.format, "format", "table", "Output format: table, markdown or json")
	f.BoolVar(&flags.persist, "persist", false, "Record the run in the vault")
	f.StringVar(&flags.runID, "run-id", "", "Run id to use instead of a generated one")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runEvaluate(cmd *cobra.Command, root *rootFlags, flags *evaluateFlags) error {
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
	if len(decoded.Items) != 1 {
		return fmt.Errorf("%s holds %d candidates; use the batch command", flags.file, len(decoded.Items))
	}

	item := decoded.Items[0]
	opts := item.Options
	if flags.acreage > 0 {
		opts.Acreage = flags.acreage
	}
	if flags.landCostPerAcre > 0 {
		opts.LandCostPerAcre = flags.landCostPerAcre
	}
	if flags.skipValidation {
		opts.SkipValidation = true
	}
	if flags.runID != "" {
		opts.RunID = flags.runID
	}

	res := a.orchestrator.Evaluate(ctx, item.Candidate, opts)
	if err := report.Evaluation(cmd.OutOrStdout(), mode, res); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := res.Err(); err != nil {
		return err
	}

	if flags.persist {
		store, err := a.openVault()
		if err != nil {
			return err
		}
		defer store.Close()
		if err := pipeline.Persist(ctx, store, res); err != nil {
			return err
		}
		a.logger.Info("run recorded", zap.String("run_id", res.RunID), zap.String("vault", a.cfg.Vault.Path))
	}
	return nil
}
