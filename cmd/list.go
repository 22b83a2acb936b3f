package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spiffcs/dormant/internal/model"
)

// NewCmdList creates the list command.
func NewCmdList(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked accounts from the activity database",
		Long: `Classifies the accounts already in the activity database without
fetching. No GitHub token is required.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	addCommonFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.Filter, "filter", "f", "all", "Which accounts to list (all, active, dormant)")
	return cmd
}

func runList(cmd *cobra.Command, opts *Options) error {
	rt, err := newRuntime(cmd.Context(), opts, false)
	if err != nil {
		return err
	}

	var accounts []model.Account
	switch opts.Filter {
	case "", "all":
		accounts, err = rt.engine.ListAccounts()
	case "active":
		accounts, err = rt.engine.ListActiveAccounts()
	case "dormant":
		accounts, err = rt.engine.ListDormantAccounts()
	default:
		return fmt.Errorf("unknown filter %q (use all, active, or dormant)", opts.Filter)
	}
	if err != nil {
		return err
	}

	return rt.formatter().FormatAccounts(accounts, os.Stdout)
}
