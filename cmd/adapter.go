package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAdapterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adapter [name]",
		Short: "Run one adapter and print its raw candidates",
		Long: `Runs a single adapter and prints the candidate records it extracted as
JSON, before normalization or deduplication. Nothing is written. Without a
name, lists the registered adapters.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			defer appInstance.Close()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range appInstance.AdapterNames() {
					if _, err := fmt.Fprintln(out, name); err != nil {
						return err
					}
				}
				return nil
			}

			records, err := appInstance.RunAdapter(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}
}
