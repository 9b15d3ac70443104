// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/storagegate/underwrite/internal/pipeline"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "underwrite",
		Short: "Underwrite candidate self-storage sites",
		Long: "underwrite runs candidate sites through a validation gate and a set of analysis\n" +
			"spokes (zoning, permits, civil, pricing, momentum, demand, competition,\n" +
			"feasibility) and issues a PROCEED, EVALUATE or WALK verdict.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to a YAML config file (defaults apply when omitted)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format override: json or console")

	cmd.AddCommand(
		newEvaluateCmd(flags),
		newBatchCmd(flags),
		newVaultCmd(flags),
		newServeCmd(flags),
	)
	return cmd
}

// exitCode maps command errors to process exit codes: 2 for a run the
// validation gate blocked, 1 for everything else.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, pipeline.ErrBlocked):
		return 2
	default:
		return 1
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitCode(err))
}
