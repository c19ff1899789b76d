package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fincore/internal/export"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/report"
)

func newReportCommand(configPath *string) *cobra.Command {
	var (
		statementType string
		month         string
		start         string
		end           string
		groupBy       string
		filterAxis    string
		filterTag     string
		outPath       string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a financial statement as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := flagPeriod(month, start, end)
			if err != nil {
				return err
			}

			proj, err := openProject(*configPath)
			if err != nil {
				return err
			}
			defer proj.Close()

			req := report.Request{
				Statement: model.StatementType(statementType),
				Period:    period,
				GroupBy:   model.GroupAxis(groupBy),
			}
			if filterTag != "" {
				req.Filter = &model.DimensionFilter{
					Axis:  model.GroupAxis(filterAxis),
					TagID: filterTag,
				}
			}

			snap, err := proj.reports.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("creating %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			return export.WriteSnapshot(out, snap)
		},
	}

	cmd.Flags().StringVar(&statementType, "type", "profit-loss", "statement type: balance-sheet, profit-loss, or cash-flow")
	cmd.Flags().StringVar(&month, "month", "", "report month as YYYY-MM")
	cmd.Flags().StringVar(&start, "start", "", "period start as YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "period end as YYYY-MM-DD")
	cmd.Flags().StringVar(&groupBy, "group-by", "", "group columns by axis: class or category")
	cmd.Flags().StringVar(&filterAxis, "filter-axis", "", "filter axis: class or category")
	cmd.Flags().StringVar(&filterTag, "filter-tag", "", "tag ID to filter by")
	cmd.Flags().StringVar(&outPath, "out", "", "write CSV to a file instead of stdout")

	return cmd
}

// flagPeriod builds the report period from either --month or --start/--end.
func flagPeriod(month, start, end string) (model.Period, error) {
	if month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return model.Period{}, fmt.Errorf("parsing --month: %w", err)
		}
		return model.MonthPeriod(parsed.Year(), parsed.Month()), nil
	}
	if start == "" || end == "" {
		return model.Period{}, fmt.Errorf("either --month or both --start and --end are required")
	}
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return model.Period{}, fmt.Errorf("parsing --start: %w", err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return model.Period{}, fmt.Errorf("parsing --end: %w", err)
	}
	return model.NewPeriod(s, e)
}
