package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spiffcs/dormant/internal/log"
)

// NewCmdFetch creates the fetch command.
func NewCmdFetch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one fetch cycle without reporting",
		Long: `Fetches fresh activity from the configured source and merges it into
the activity database. Use this from cron or CI when classification and
notification run separately.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rt, err := newRuntime(ctx, opts, true)
			if err != nil {
				return err
			}

			since, err := sinceOverride(opts)
			if err != nil {
				return err
			}

			log.Progress("Fetching activity...")
			if err := rt.engine.FetchActivity(ctx, since); err != nil {
				return describeFetchError(err)
			}
			log.ProgressDone()
			return nil
		},
	}

	addCheckFlags(cmd, opts)
	return cmd
}
