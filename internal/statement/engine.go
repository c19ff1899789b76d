package statement

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
)

// Section and line labels are part of the stable report schema consumed by
// derived metrics and export layers.
const (
	SectionAssets      = "Assets"
	SectionLiabilities = "Liabilities"
	SectionEquity      = "Equity"
	SectionRevenue     = "Revenue"
	SectionExpenses    = "Expenses"
	SectionNetIncome   = "Net Income"
	SectionOperating   = "Operating Activities"
	SectionInvesting   = "Investing Activities"
	SectionFinancing   = "Financing Activities"
	SectionCash        = "Cash"

	LineRetainedEarnings = "Retained Earnings"
	LineNetIncome        = "Net Income"
	LineBeginningCash    = "Beginning Cash"
	LineNetChangeInCash  = "Net Change in Cash"
	LineEndingCash       = "Ending Cash"
)

// ProfitAndLoss aggregates revenue and expense activity within the period.
// Revenue is presented credit-positive, expenses debit-positive; the Net
// Income section carries revenue minus expenses per column.
func ProfitAndLoss(ctx context.Context, view LedgerView, p Params) (model.ReportSnapshot, error) {
	from := p.Period.Start
	t, err := aggregate(ctx, view, &from, p.Period.End,
		func(a model.Account) bool { return a.Type.IsIncomeStatement() },
		p.Filter, p.GroupBy)
	if err != nil {
		return model.ReportSnapshot{}, err
	}

	cols := columnsFor(p.GroupBy, t)
	accounts := view.Accounts()

	revenue := buildSection(SectionRevenue, accounts,
		func(a model.Account) bool { return a.Type == model.AccountTypeRevenue }, t, cols, -1)
	expenses := buildSection(SectionExpenses, accounts,
		func(a model.Account) bool { return a.Type == model.AccountTypeExpense }, t, cols, 1)

	net := model.ReportSection{
		Label:  SectionNetIncome,
		Totals: subAmounts(revenue.Totals, expenses.Totals),
	}

	return snapshot(view, model.StatementProfitLoss, p, cols,
		[]model.ReportSection{revenue, expenses, net}), nil
}

// BalanceSheet reports asset, liability, and equity balances as of period
// end. Cumulative net income is folded into equity as a computed Retained
// Earnings line so that assets always equal liabilities plus equity.
func BalanceSheet(ctx context.Context, view LedgerView, p Params) (model.ReportSnapshot, error) {
	t, err := aggregate(ctx, view, nil, p.Period.End,
		func(a model.Account) bool { return true },
		p.Filter, p.GroupBy)
	if err != nil {
		return model.ReportSnapshot{}, err
	}

	cols := columnsFor(p.GroupBy, t)
	accounts := view.Accounts()

	assets := buildSection(SectionAssets, accounts,
		func(a model.Account) bool { return a.Type == model.AccountTypeAsset }, t, cols, 1)
	liabilities := buildSection(SectionLiabilities, accounts,
		func(a model.Account) bool { return a.Type == model.AccountTypeLiability }, t, cols, -1)
	equity := buildSection(SectionEquity, accounts,
		func(a model.Account) bool { return a.Type == model.AccountTypeEquity }, t, cols, -1)

	// Close cumulative income into equity per column.
	retained := zeroAmounts(len(cols))
	hasRetained := false
	for _, acct := range accounts {
		if !acct.Type.IsIncomeStatement() {
			continue
		}
		for i, c := range cols {
			v := t.amount(acct.ID, c.key)
			if v.IsZero() {
				continue
			}
			retained[i] = retained[i].Sub(v) // credit-normal presentation
			hasRetained = true
		}
	}
	if hasRetained {
		equity.Lines = append(equity.Lines, model.ReportLine{Label: LineRetainedEarnings, Amounts: retained})
		equity.Totals = addAmounts(equity.Totals, retained)
	}

	return snapshot(view, model.StatementBalanceSheet, p, cols,
		[]model.ReportSection{assets, liabilities, equity}), nil
}

// CashFlow computes the indirect-method cash flow statement: net income, plus
// non-cash addbacks, plus working-capital changes, form operating cash;
// investing and financing accounts contribute their net period activity. The
// resulting net change must equal the independently computed movement of the
// cash accounts or generation fails with ErrReconciliation.
func CashFlow(ctx context.Context, view LedgerView, p Params) (model.ReportSnapshot, error) {
	if p.Filter != nil || p.GroupBy != nil {
		return model.ReportSnapshot{}, ErrUnsupportedDimension
	}

	from := p.Period.Start
	activity, err := aggregate(ctx, view, &from, p.Period.End,
		func(a model.Account) bool { return true }, nil, nil)
	if err != nil {
		return model.ReportSnapshot{}, err
	}
	opening, err := aggregate(ctx, view, nil, p.Period.Start.AddDate(0, 0, -1),
		func(a model.Account) bool { return a.Type.IsBalanceSheet() }, nil, nil)
	if err != nil {
		return model.ReportSnapshot{}, err
	}

	cls := p.Classification
	nonCash := toSet(cls.NonCashAccounts)
	workingCapital := toSet(cls.WorkingCapitalAccounts)
	investing := toSet(cls.InvestingAccounts)
	financing := toSet(cls.FinancingAccounts)
	cash := toSet(cls.CashAccounts)

	accounts := view.Accounts()

	// Net income for the period, computed from the same activity tally.
	netIncome := decimal.Zero
	for _, acct := range accounts {
		if !acct.Type.IsIncomeStatement() {
			continue
		}
		netIncome = netIncome.Sub(activity.amount(acct.ID, ""))
	}

	operating := model.ReportSection{Label: SectionOperating}
	operating.Lines = append(operating.Lines, model.ReportLine{Label: LineNetIncome, Amounts: amounts(netIncome)})
	opTotal := netIncome

	for _, acct := range accounts {
		if !nonCash[acct.ID] {
			continue
		}
		addback := activity.amount(acct.ID, "")
		if acct.Type.NormalSign() < 0 {
			addback = addback.Neg()
		}
		if addback.IsZero() {
			continue
		}
		operating.Lines = append(operating.Lines, model.ReportLine{
			AccountID: acct.ID,
			Label:     acct.Name + " (non-cash)",
			Amounts:   amounts(addback),
		})
		opTotal = opTotal.Add(addback)
	}

	for _, acct := range accounts {
		if !workingCapital[acct.ID] {
			continue
		}
		delta := activity.amount(acct.ID, "")
		if delta.IsZero() {
			continue
		}
		// A debit increase (asset builds up) consumes cash; a credit increase
		// (liability builds up) frees it.
		effect := delta.Neg()
		operating.Lines = append(operating.Lines, model.ReportLine{
			AccountID: acct.ID,
			Label:     "Change in " + acct.Name,
			Amounts:   amounts(effect),
		})
		opTotal = opTotal.Add(effect)
	}
	operating.Totals = amounts(opTotal)

	investingSec, invTotal := activitySection(SectionInvesting, accounts, investing, activity)
	financingSec, finTotal := activitySection(SectionFinancing, accounts, financing, activity)

	netChange := opTotal.Add(invTotal).Add(finTotal)

	// Independent check: the movement of the cash accounts themselves.
	beginningCash := decimal.Zero
	cashChange := decimal.Zero
	for _, acct := range accounts {
		if !cash[acct.ID] {
			continue
		}
		beginningCash = beginningCash.Add(opening.amount(acct.ID, ""))
		cashChange = cashChange.Add(activity.amount(acct.ID, ""))
	}
	endingCash := beginningCash.Add(cashChange)

	if !netChange.Equal(cashChange) {
		return model.ReportSnapshot{}, &ReconciliationError{
			Period:     p.Period,
			Computed:   netChange,
			CashChange: cashChange,
		}
	}

	cashSec := model.ReportSection{
		Label: SectionCash,
		Lines: []model.ReportLine{
			{Label: LineBeginningCash, Amounts: amounts(beginningCash)},
			{Label: LineNetChangeInCash, Amounts: amounts(netChange)},
			{Label: LineEndingCash, Amounts: amounts(endingCash)},
		},
		Totals: amounts(endingCash),
	}

	return snapshot(view, model.StatementCashFlow, p, []column{{key: "", label: totalColumn}},
		[]model.ReportSection{operating, investingSec, financingSec, cashSec}), nil
}

// activitySection builds the investing or financing section from net period
// activity. A debit (asset purchase) is a cash outflow, a credit (loan
// proceeds, owner contribution) an inflow.
func activitySection(label string, accounts []model.Account, ids map[int]bool, activity *tally) (model.ReportSection, decimal.Decimal) {
	sec := model.ReportSection{Label: label}
	total := decimal.Zero
	for _, acct := range accounts {
		if !ids[acct.ID] {
			continue
		}
		v := activity.amount(acct.ID, "").Neg()
		if v.IsZero() {
			continue
		}
		sec.Lines = append(sec.Lines, model.ReportLine{AccountID: acct.ID, Label: acct.Name, Amounts: amounts(v)})
		total = total.Add(v)
	}
	sec.Totals = amounts(total)
	return sec, total
}

func amounts(v decimal.Decimal) []decimal.Decimal {
	return []decimal.Decimal{v}
}

func snapshot(view LedgerView, st model.StatementType, p Params, cols []column, sections []model.ReportSection) model.ReportSnapshot {
	snap := model.ReportSnapshot{
		Statement:    st,
		Period:       p.Period,
		ScenarioID:   view.ScenarioID(),
		StoreVersion: view.Version(),
		Columns:      columnLabels(cols),
		Sections:     sections,
	}
	if p.Filter != nil {
		// Preserve the caller's original filter coordinates for the cache key.
		snap.Filter = p.Filter.Source
	}
	if p.GroupBy != nil {
		snap.GroupBy = p.GroupBy.Axis
		snap.ColumnTags = columnTagIDs(cols)
	}
	return snap
}
