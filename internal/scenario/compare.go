package scenario

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/statement"
)

// DiffLine is one field-by-field difference between a base and a scenario
// snapshot. Delta is scenario minus base.
type DiffLine struct {
	Section  string          `json:"section"`
	Label    string          `json:"label"`
	Base     decimal.Decimal `json:"base"`
	Scenario decimal.Decimal `json:"scenario"`
	Delta    decimal.Decimal `json:"delta"`
}

// Result pairs one scenario's snapshot with its diff against the base.
type Result struct {
	Scenario model.Scenario       `json:"scenario"`
	Snapshot model.ReportSnapshot `json:"snapshot"`
	Diff     []DiffLine           `json:"diff"`
}

// Comparison is the output of evaluating N scenarios against the current
// ledger: the base snapshot plus one result per scenario, in input order.
type Comparison struct {
	Base    model.ReportSnapshot `json:"base"`
	Results []Result             `json:"results"`
}

// Compare evaluates the statement for the base snapshot and for each scenario
// overlay concurrently. All evaluations bind to the same base view, so the
// store version is identical across results and nothing mutates shared state.
func Compare(ctx context.Context, base statement.LedgerView, st model.StatementType, p statement.Params, scenarios ...model.Scenario) (*Comparison, error) {
	seen := make(map[string]bool, len(scenarios))
	for _, sc := range scenarios {
		if sc.ID == "" {
			return nil, ErrMissingScenarioID
		}
		if seen[sc.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateScenario, sc.ID)
		}
		seen[sc.ID] = true
	}

	cmp := &Comparison{Results: make([]Result, len(scenarios))}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := statement.Generate(ctx, base, st, p)
		if err != nil {
			return fmt.Errorf("base statement: %w", err)
		}
		cmp.Base = snap
		return nil
	})

	for i, sc := range scenarios {
		g.Go(func() error {
			view, err := NewView(base, sc, p.Period.End)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.ID, err)
			}
			snap, err := statement.Generate(ctx, view, st, p)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.ID, err)
			}
			cmp.Results[i] = Result{Scenario: sc, Snapshot: snap}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range cmp.Results {
		cmp.Results[i].Diff = Diff(cmp.Base, cmp.Results[i].Snapshot)
	}
	return cmp, nil
}

// Diff compares two snapshots line by line. Lines are matched by section and
// label; a line present on only one side diffs against zero. Only changed
// lines and section totals are reported.
func Diff(base, other model.ReportSnapshot) []DiffLine {
	var out []DiffLine

	labels := make(map[string][]string)
	seen := make(map[string]map[string]bool)
	collect := func(snap model.ReportSnapshot) {
		for _, sec := range snap.Sections {
			if seen[sec.Label] == nil {
				seen[sec.Label] = make(map[string]bool)
			}
			for _, l := range sec.Lines {
				if !seen[sec.Label][l.Label] {
					seen[sec.Label][l.Label] = true
					labels[sec.Label] = append(labels[sec.Label], l.Label)
				}
			}
		}
	}
	collect(base)
	collect(other)

	sectionOrder := make([]string, 0, len(base.Sections))
	inOrder := make(map[string]bool)
	for _, sec := range base.Sections {
		sectionOrder = append(sectionOrder, sec.Label)
		inOrder[sec.Label] = true
	}
	for _, sec := range other.Sections {
		if !inOrder[sec.Label] {
			sectionOrder = append(sectionOrder, sec.Label)
		}
	}

	for _, secLabel := range sectionOrder {
		for _, lineLabel := range labels[secLabel] {
			b := lineTotal(base, secLabel, lineLabel)
			o := lineTotal(other, secLabel, lineLabel)
			if b.Equal(o) {
				continue
			}
			out = append(out, DiffLine{
				Section:  secLabel,
				Label:    lineLabel,
				Base:     b,
				Scenario: o,
				Delta:    o.Sub(b),
			})
		}

		bt := sectionTotal(base, secLabel)
		ot := sectionTotal(other, secLabel)
		if !bt.Equal(ot) {
			out = append(out, DiffLine{
				Section:  secLabel,
				Label:    "Total",
				Base:     bt,
				Scenario: ot,
				Delta:    ot.Sub(bt),
			})
		}
	}
	return out
}

func lineTotal(snap model.ReportSnapshot, section, label string) decimal.Decimal {
	sec := snap.Section(section)
	if sec == nil {
		return decimal.Zero
	}
	for _, l := range sec.Lines {
		if l.Label == label && len(l.Amounts) > 0 {
			return l.Amounts[len(l.Amounts)-1]
		}
	}
	return decimal.Zero
}

func sectionTotal(snap model.ReportSnapshot, section string) decimal.Decimal {
	sec := snap.Section(section)
	if sec == nil || len(sec.Totals) == 0 {
		return decimal.Zero
	}
	return sec.Totals[len(sec.Totals)-1]
}
