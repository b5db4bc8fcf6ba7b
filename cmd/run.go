package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every adapter and write the snapshot",
		Long: `Runs every registered adapter concurrently, merges and deduplicates their
shows, and writes the snapshot to the configured output. Adapter failures are
listed in the snapshot; a failed write exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			defer appInstance.Close()
			report, err := appInstance.Run(cmd.Context())
			if err != nil {
				return err
			}
			appInstance.Logger().Info("run finished",
				zap.String("run_id", report.Snapshot.RunID),
				zap.String("uri", report.URI),
				zap.Int("shows", len(report.Snapshot.Shows)),
				zap.Int("errors", len(report.Snapshot.Errors)),
			)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d shows (%d source errors) to %s\n",
				len(report.Snapshot.Shows), len(report.Snapshot.Errors), report.URI)
			return err
		},
	}
}
