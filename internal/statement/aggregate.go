package statement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

// ctxCheckInterval is how many transactions are aggregated between context
// polls. Large ledgers stay cancelable without a per-line branch.
const ctxCheckInterval = 1024

// tally accumulates signed (debit-positive) line amounts per account and
// group column. The empty group key holds the ungrouped total, which is
// accumulated in the same pass so the grouped columns and the total come from
// identical arithmetic.
type tally struct {
	byAccount map[int]map[string]decimal.Decimal
	groups    map[string]bool
}

func newTally() *tally {
	return &tally{
		byAccount: make(map[int]map[string]decimal.Decimal),
		groups:    make(map[string]bool),
	}
}

func (t *tally) add(accountID int, group string, amt decimal.Decimal) {
	cols := t.byAccount[accountID]
	if cols == nil {
		cols = make(map[string]decimal.Decimal)
		t.byAccount[accountID] = cols
	}
	cols[group] = cols[group].Add(amt)
	if group != "" {
		t.groups[group] = true
	}
}

func (t *tally) amount(accountID int, group string) decimal.Decimal {
	return t.byAccount[accountID][group]
}

// aggregate sums filtered line amounts over [from, to]. A nil from means
// inception. When groupBy is set, amounts land in both their group column and
// the total column.
func aggregate(ctx context.Context, view LedgerView, from *time.Time, to time.Time, include func(model.Account) bool, filter *Filter, groupBy *Grouping) (*tally, error) {
	t := newTally()

	for i, tx := range view.Transactions() {
		if i%ctxCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrComputationTimeout, ctx.Err())
			default:
			}
		}

		if tx.Date.After(to) {
			continue
		}
		if from != nil && tx.Date.Before(*from) {
			continue
		}

		for _, l := range tx.Lines {
			acct, ok := view.Account(l.AccountID)
			if !ok || !include(acct) {
				continue
			}
			if !filter.matches(l) {
				continue
			}
			t.add(l.AccountID, "", l.Amount)
			if groupBy != nil {
				t.add(l.AccountID, groupKey(groupBy, l), l.Amount)
			}
		}
	}
	return t, nil
}

// groupKey returns the column key for a line under the grouping axis. Lines
// without a tag on the axis report under the untagged column.
func groupKey(g *Grouping, l model.Line) string {
	key := g.keyOf(l)
	if key == "" {
		return untaggedColumn
	}
	return key
}

// column pairs a tally group key with its display label.
type column struct {
	key   string
	label string
}

// columnsFor returns the report columns in deterministic order: group columns
// sorted by label, then the Total column. Ungrouped reports have only Total.
func columnsFor(groupBy *Grouping, tallies ...*tally) []column {
	if groupBy == nil {
		return []column{{key: "", label: totalColumn}}
	}

	seen := make(map[string]bool)
	var cols []column
	for _, t := range tallies {
		for key := range t.groups {
			if seen[key] {
				continue
			}
			seen[key] = true
			label := key
			if name, ok := groupBy.Labels[key]; ok {
				label = name
			}
			cols = append(cols, column{key: key, label: label})
		}
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].label != cols[j].label {
			return cols[i].label < cols[j].label
		}
		return cols[i].key < cols[j].key
	})
	return append(cols, column{key: "", label: totalColumn})
}

func columnLabels(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.label
	}
	return out
}

// columnTagIDs returns the tag ID behind each column. The untagged and Total
// columns report an empty ID; labels alone are ambiguous when a tag is named
// like one of the synthetic columns.
func columnTagIDs(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		if c.key != untaggedColumn {
			out[i] = c.key
		}
	}
	return out
}

// buildSection assembles a report section from a tally. Accounts appear in
// chart order; zero rows are dropped. sign converts stored debit-positive
// amounts to the statement's presentation sign.
func buildSection(label string, accounts []model.Account, include func(model.Account) bool, t *tally, cols []column, sign int) model.ReportSection {
	sec := model.ReportSection{
		Label:  label,
		Totals: zeroAmounts(len(cols)),
	}

	for _, acct := range accounts {
		if !include(acct) {
			continue
		}
		amounts := make([]decimal.Decimal, len(cols))
		nonZero := false
		for i, c := range cols {
			v := t.amount(acct.ID, c.key)
			if sign < 0 {
				v = v.Neg()
			}
			amounts[i] = v
			if !v.IsZero() {
				nonZero = true
			}
		}
		if !nonZero {
			continue
		}
		sec.Lines = append(sec.Lines, model.ReportLine{AccountID: acct.ID, Label: acct.Name, Amounts: amounts})
		for i := range cols {
			sec.Totals[i] = sec.Totals[i].Add(amounts[i])
		}
	}
	return sec
}

func zeroAmounts(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}

func addAmounts(a, b []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(a))
	for i := range a {
		out[i] = a[i].Add(b[i])
	}
	return out
}

func subAmounts(a, b []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(a))
	for i := range a {
		out[i] = a[i].Sub(b[i])
	}
	return out
}
