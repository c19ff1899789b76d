package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/export"
)

func newExportCommand(configPath *string) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full transaction journal as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject(*configPath)
			if err != nil {
				return err
			}
			defer proj.Close()

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			return export.WriteJournal(out, proj.store.Snapshot().Transactions())
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "write CSV to a file instead of stdout")
	return cmd
}
