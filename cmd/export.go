package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

// NewCmdExport creates the export command.
func NewCmdExport(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the raw activity database as JSON",
		Long: `Prints the full activity document, including the metadata entry, after
the identity check. Useful for audit and backup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(cmd.Context(), opts, false)
			if err != nil {
				return err
			}

			doc, err := rt.store.RawDocument()
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(doc)
		},
	}

	addCommonFlags(cmd, opts)
	return cmd
}
