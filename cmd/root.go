package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "dormant",
		Short: "GitHub dormant account checker",
		Long: `A CLI tool that tracks per-account activity for a GitHub organization,
classifies accounts as active or dormant against an inactivity threshold,
and optionally notifies and removes dormant accounts via issues.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Add check flags to root command so `dormant` and `dormant check`
	// work identically
	addCheckFlags(rootCmd, opts)

	// Register subcommands
	rootCmd.AddCommand(NewCmdCheck(opts))
	rootCmd.AddCommand(NewCmdFetch(opts))
	rootCmd.AddCommand(NewCmdList(opts))
	rootCmd.AddCommand(NewCmdNotify(opts))
	rootCmd.AddCommand(NewCmdExport(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}

// addCommonFlags adds the flags shared by every data command.
func addCommonFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().StringVar(&opts.Org, "org", "", "GitHub organization to check")
	cmd.Flags().StringVar(&opts.Check, "check", "", "Check type stamping the activity database")
	cmd.Flags().StringVar(&opts.Database, "database", "", "Activity database path")
	cmd.Flags().StringVarP(&opts.Duration, "duration", "d", "", "Inactivity threshold (e.g., 90d, 12w)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Suppress all side effects")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
}

// addCheckFlags adds the check/fetch-specific flags to a command.
func addCheckFlags(cmd *cobra.Command, opts *Options) {
	addCommonFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "Snapshot mode (partial, complete)")
	cmd.Flags().StringVar(&opts.Fetcher, "fetcher", "", "Activity source (copilot, audit-log)")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Override the activity window lower bound (e.g., 30d)")
}
