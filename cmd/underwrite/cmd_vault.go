// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storagegate/underwrite/internal/report"
	"github.com/storagegate/underwrite/internal/vault"
)

type vaultQueryFlags struct {
	opportunityID string
	state         string
	decision      string
	limit         int
	format        string
}

func newVaultCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Inspect recorded runs",
	}
	cmd.AddCommand(newVaultQueryCmd(root))
	return cmd
}

func newVaultQueryCmd(root *rootFlags) *cobra.Command {
	flags := &vaultQueryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVaultQuery(cmd, root, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.opportunityID, "opportunity", "", "Only runs for this opportunity id")
	f.StringVar(&flags.state, "state", "", "Only runs in this state")
	f.StringVar(&flags.decision, "decision", "", "Only runs with this decision (PROCEED, EVALUATE, WALK)")
	f.IntVar(&flags.limit, "limit", 20, "Maximum runs listed (0 for all)")
	f.StringVar(&flags.format, "format", "table", "Output format: table, markdown or json")
	return cmd
}

func runVaultQuery(cmd *cobra.Command, root *rootFlags, flags *vaultQueryFlags) error {
	mode, err := report.ParseMode(flags.format)
	if err != nil {
		return err
	}
	if flags.limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	a, err := newApp(cmd, root)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openVault()
	if err != nil {
		return err
	}
	defer store.Close()

	payloads, err := store.Query(cmd.Context(), vault.Filter{
		OpportunityID: flags.opportunityID,
		State:         flags.state,
		Decision:      flags.decision,
		Limit:         flags.limit,
	})
	if err != nil {
		return err
	}
	return report.Payloads(cmd.OutOrStdout(), mode, payloads)
}
