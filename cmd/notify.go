package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCmdNotify creates the notify command.
func NewCmdNotify(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Advance notification tickets for the current dormant set",
		Long: `Classifies accounts from the activity database, then drives each dormant
account's notification ticket through the grace-period state machine:
creating tickets for newly-dormant accounts, closing tickets for accounts
that came back, and removing accounts whose grace period expired.

Exits non-zero when any account errored; errors are reported alongside
the partial results and do not abort the pass.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx, opts, true)
			if err != nil {
				return err
			}

			lifecycle, err := rt.newLifecycle()
			if err != nil {
				return err
			}

			dormant, err := rt.engine.ListDormantAccounts()
			if err != nil {
				return err
			}

			report, err := lifecycle.ProcessDormant(ctx, dormant)
			if err != nil {
				return err
			}

			if err := rt.formatter().FormatReport(report, os.Stdout); err != nil {
				return err
			}
			if report.HasErrors() {
				return fmt.Errorf("%d accounts failed during notification processing", len(report.Errors))
			}
			return nil
		},
	}

	addCommonFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.Grace, "grace", "", "Grace period between notification and removal (e.g., 7d)")
	return cmd
}
