package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/importer"
)

func newImportCommand(configPath *string) *cobra.Command {
	var (
		format     string
		bankAcct   int
		inflowAcct int
		outflow    int
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a bank CSV export as ledger transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := importer.DefaultRegistry()
			parser, err := registry.Get(format)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			rows, err := parser.Parse(f)
			if err != nil {
				return err
			}

			proj, err := openProject(*configPath)
			if err != nil {
				return err
			}
			defer proj.Close()

			// Skip rows whose reference is already on a posted transaction,
			// so re-running an import is safe.
			seen := make(map[string]bool)
			for _, tx := range proj.store.Snapshot().Transactions() {
				if tx.Reference != "" {
					seen[tx.Reference] = true
				}
			}

			txs := importer.Convert(rows, importer.Mapping{
				BankAccountID:    bankAcct,
				InflowAccountID:  inflowAcct,
				OutflowAccountID: outflow,
			})

			posted, skipped := 0, 0
			for _, tx := range txs {
				if seen[tx.Reference] {
					skipped++
					continue
				}
				if _, err := proj.store.AppendTransaction(tx); err != nil {
					return fmt.Errorf("posting %q: %w", tx.Description, err)
				}
				posted++
			}

			cmd.Printf("Imported %d transactions (%d duplicates skipped)\n", posted, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "generic", "bank CSV format")
	cmd.Flags().IntVar(&bankAcct, "bank-account", 1010, "asset account the file belongs to")
	cmd.Flags().IntVar(&inflowAcct, "inflow-account", 4010, "account credited for deposits")
	cmd.Flags().IntVar(&outflow, "outflow-account", 5060, "account debited for withdrawals")

	return cmd
}
