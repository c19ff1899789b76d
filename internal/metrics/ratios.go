package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/statement"
)

// AccountSets names the balance-sheet and P&L accounts each ratio draws on.
// Like the cash-flow classification, it is explicit configuration.
type AccountSets struct {
	Cash               []int `yaml:"cash" json:"cash"`
	Receivables        []int `yaml:"receivables" json:"receivables"`
	Payables           []int `yaml:"payables" json:"payables"`
	Inventory          []int `yaml:"inventory" json:"inventory"`
	CurrentAssets      []int `yaml:"current_assets" json:"current_assets"`
	CurrentLiabilities []int `yaml:"current_liabilities" json:"current_liabilities"`
	// DebtService lists the P&L interest-expense accounts used by the
	// coverage ratio.
	DebtService []int `yaml:"debt_service" json:"debt_service"`
}

// CustomerCounts arrives from outside the ledger (CRM, billing system); the
// core never derives it. Nil means the customer-growth ratio is not
// computable and scores the sentinel.
type CustomerCounts struct {
	Current int `json:"current"`
	Prior   int `json:"prior"`
}

// BuildRatios derives the health-score ratio set from a balance sheet, the
// current and prior P&L, and the account sets. Every inner division guards
// its denominator: a zero yields Ratio{OK: false}, never an error and never
// a silent zero.
func BuildRatios(bs, pl, priorPL *model.ReportSnapshot, sets AccountSets, customers *CustomerCounts) RatioSet {
	ratios := make(RatioSet, len(ratioOrder))

	currentAssets := sectionAmount(bs, statement.SectionAssets, sets.CurrentAssets)
	currentLiabilities := sectionAmount(bs, statement.SectionLiabilities, sets.CurrentLiabilities)
	cash := sectionAmount(bs, statement.SectionAssets, sets.Cash)
	inventory := sectionAmount(bs, statement.SectionAssets, sets.Inventory)
	receivables := sectionAmount(bs, statement.SectionAssets, sets.Receivables)
	payables := sectionAmount(bs, statement.SectionLiabilities, sets.Payables)
	totalLiabilities := bs.Total(statement.SectionLiabilities)
	equity := bs.Total(statement.SectionEquity)

	revenue := pl.Total(statement.SectionRevenue)
	expenses := pl.Total(statement.SectionExpenses)
	netIncome := pl.Total(statement.SectionNetIncome)
	interest := sectionAmount(pl, statement.SectionExpenses, sets.DebtService)

	days := periodDays(pl.Period)
	months := decimal.NewFromInt(int64(periodMonths(pl.Period)))

	ratios[RatioCurrent] = divide(currentAssets, currentLiabilities)
	ratios[RatioQuick] = divide(currentAssets.Sub(inventory), currentLiabilities)

	monthlyExpenses := safeDiv(expenses, months)
	ratios[RatioCashOnHand] = divide(cash, monthlyExpenses)

	ratios[RatioProfitMargin] = divide(netIncome, revenue)

	if priorPL != nil {
		priorRevenue := priorPL.Total(statement.SectionRevenue)
		ratios[RatioRevenueGrowth] = divide(revenue.Sub(priorRevenue), priorRevenue)
	} else {
		ratios[RatioRevenueGrowth] = Ratio{}
	}

	ratios[RatioDebtToEquity] = divide(totalLiabilities, equity)
	ratios[RatioDebtServiceCoverage] = divide(netIncome.Add(interest), interest)

	ratios[RatioReceivableDays] = scale(divide(receivables, revenue), days)
	ratios[RatioPayableDays] = scale(divide(payables, expenses), days)
	ratios[RatioInventoryTurnover] = divide(expenses, inventory)

	if customers != nil && customers.Prior > 0 {
		cur := decimal.NewFromInt(int64(customers.Current))
		prior := decimal.NewFromInt(int64(customers.Prior))
		ratios[RatioCustomerGrowth] = Ratio{Value: cur.Sub(prior).Div(prior), OK: true}
	} else {
		ratios[RatioCustomerGrowth] = Ratio{}
	}

	return ratios
}

// sectionAmount sums the named accounts' last-column amounts in a section.
func sectionAmount(snap *model.ReportSnapshot, section string, ids []int) decimal.Decimal {
	sec := snap.Section(section)
	if sec == nil {
		return decimal.Zero
	}
	wanted := make(map[int]bool, len(ids))
	for _, accountID := range ids {
		wanted[accountID] = true
	}
	total := decimal.Zero
	for _, l := range sec.Lines {
		if !wanted[l.AccountID] || len(l.Amounts) == 0 {
			continue
		}
		total = total.Add(l.Amounts[len(l.Amounts)-1])
	}
	return total
}

func divide(num, den decimal.Decimal) Ratio {
	if den.IsZero() {
		return Ratio{}
	}
	return Ratio{Value: num.Div(den), OK: true}
}

func scale(r Ratio, factor decimal.Decimal) Ratio {
	if !r.OK {
		return r
	}
	return Ratio{Value: r.Value.Mul(factor), OK: true}
}

func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}

func periodDays(p model.Period) decimal.Decimal {
	return decimal.NewFromInt(int64(p.End.Sub(p.Start).Hours()/24) + 1)
}

func periodMonths(p model.Period) int {
	months := (p.End.Year()-p.Start.Year())*12 + int(p.End.Month()) - int(p.Start.Month()) + 1
	if months < 1 {
		months = 1
	}
	return months
}
