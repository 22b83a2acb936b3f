package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/dormant/internal/duration"
	"github.com/spiffcs/dormant/internal/log"
)

// NewCmdCheck creates the check command.
func NewCmdCheck(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Fetch activity and report dormant accounts (same as root dormant)",
		Long: `Runs one fetch cycle against the configured activity source, merges the
results into the activity database, and prints the classification summary
with the dormant account list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	addCheckFlags(cmd, opts)
	return cmd
}

// sinceOverride resolves the --since flag into a window lower bound.
func sinceOverride(opts *Options) (*time.Time, error) {
	if opts.Since == "" {
		return nil, nil
	}
	d, err := duration.Parse(opts.Since)
	if err != nil {
		return nil, fmt.Errorf("invalid --since: %w", err)
	}
	t := time.Now().UTC().Add(-d)
	return &t, nil
}

func runCheck(cmd *cobra.Command, opts *Options) error {
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

	summary, err := rt.engine.Summarize()
	if err != nil {
		return err
	}

	dormant, err := rt.engine.ListDormantAccounts()
	if err != nil {
		return err
	}

	f := rt.formatter()
	if err := f.FormatSummary(summary, os.Stdout); err != nil {
		return err
	}
	if len(dormant) == 0 {
		return nil
	}
	fmt.Println()
	return f.FormatAccounts(dormant, os.Stdout)
}
