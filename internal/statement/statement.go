// Package statement computes Balance Sheet, P&L, and indirect-method Cash
// Flow statements from an immutable ledger view. Computation is pure: given
// the same view version, period, filter, and classification, the output is
// identical byte for byte. No wall clock or randomness enters; the report
// service stamps GeneratedAt after the fact.
package statement

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

var (
	// ErrReconciliation is returned when the cash-flow ending balance does not
	// equal the balance-sheet cash total. Generation fails closed rather than
	// emitting an unreconciled statement; the usual cause is a cash or
	// working-capital account missing from the classification.
	ErrReconciliation = errors.New("cash flow does not reconcile with balance sheet cash")

	// ErrComputationTimeout is returned when the request context expires
	// mid-aggregation. No partial statement is returned.
	ErrComputationTimeout = errors.New("statement computation canceled")

	// ErrUnsupportedDimension is returned when a cash-flow statement is
	// requested with a dimension filter or grouping. Line-level filtering
	// breaks double-entry balance, which would make the reconciliation
	// invariant unsatisfiable.
	ErrUnsupportedDimension = errors.New("cash flow does not support dimension filters or grouping")

	// ErrUnknownStatement is returned for an unrecognized statement type.
	ErrUnknownStatement = errors.New("unknown statement type")
)

// ReconciliationError reports the two sides of a failed cash reconciliation.
// It unwraps to ErrReconciliation.
type ReconciliationError struct {
	Period     model.Period
	Computed   decimal.Decimal // operating + investing + financing
	CashChange decimal.Decimal // ending minus beginning cash balances
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%v: period %s computed %s, cash accounts moved %s",
		ErrReconciliation, e.Period, e.Computed.StringFixed(2), e.CashChange.StringFixed(2))
}

func (e *ReconciliationError) Unwrap() error { return ErrReconciliation }

// LedgerView is the read contract the engine computes from. Both base ledger
// snapshots and scenario overlays satisfy it.
type LedgerView interface {
	// Version is the store version the view was bound to.
	Version() uint64
	// ScenarioID is empty for a base snapshot, unique per overlay otherwise.
	ScenarioID() string
	// Account resolves an account by ID.
	Account(accountID int) (model.Account, bool)
	// Accounts lists all accounts in chart order.
	Accounts() []model.Account
	// Transactions lists posted (and, for overlays, virtual) transactions.
	Transactions() []model.Transaction
}

// Filter is a resolved dimension filter: the set of tag IDs a line may carry
// on the axis to be included. For category filters the caller resolves the
// roll-up (node plus descendants) before invoking the engine, which keeps the
// engine independent of the dimension index.
type Filter struct {
	Axis   model.GroupAxis
	TagIDs map[string]bool

	// Source is the unresolved filter as requested, recorded on the snapshot
	// so cache keys stay stable across index growth within a version.
	Source *model.DimensionFilter
}

func (f *Filter) matches(l model.Line) bool {
	if f == nil {
		return true
	}
	switch f.Axis {
	case model.AxisClass:
		return f.TagIDs[l.ClassTagID]
	case model.AxisCategory:
		return f.TagIDs[l.CategoryTagID]
	}
	return false
}

// Grouping partitions lines by tag on one axis, one report column per tag
// value plus a Total column. Labels map tag IDs to display names, resolved by
// the caller for the same reason filters arrive pre-resolved.
type Grouping struct {
	Axis   model.GroupAxis
	Labels map[string]string
}

// untaggedColumn labels the column for lines with no tag on the grouping
// axis. A tag may carry the same display name; snapshot ColumnTags tells the
// synthetic columns apart from real ones.
const untaggedColumn = "(none)"

// totalColumn is the last column of every grouped report.
const totalColumn = "Total"

func (g *Grouping) keyOf(l model.Line) string {
	switch g.Axis {
	case model.AxisCategory:
		return l.CategoryTagID
	default:
		return l.ClassTagID
	}
}

// Classification assigns balance-sheet accounts to cash-flow roles. It is
// explicit per-call configuration, never ambient state. NonCashAccounts lists
// the expense-side accounts added back to net income (e.g. depreciation
// expense); every balance-sheet account with period activity must be covered
// by exactly one of Cash, WorkingCapital, Investing, or Financing (equity
// movements belong in Financing) or the reconciliation check fails.
type Classification struct {
	CashAccounts           []int
	NonCashAccounts        []int
	WorkingCapitalAccounts []int
	InvestingAccounts      []int
	FinancingAccounts      []int
}

func toSet(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, accountID := range ids {
		m[accountID] = true
	}
	return m
}

// Params carries everything one statement computation depends on.
type Params struct {
	Period         model.Period
	Filter         *Filter
	GroupBy        *Grouping
	Classification Classification
}

// Generate dispatches to the statement implementation for the given type.
// Statement types are a closed set; each is handled explicitly.
func Generate(ctx context.Context, view LedgerView, st model.StatementType, p Params) (model.ReportSnapshot, error) {
	switch st {
	case model.StatementBalanceSheet:
		return BalanceSheet(ctx, view, p)
	case model.StatementProfitLoss:
		return ProfitAndLoss(ctx, view, p)
	case model.StatementCashFlow:
		return CashFlow(ctx, view, p)
	}
	return model.ReportSnapshot{}, ErrUnknownStatement
}
