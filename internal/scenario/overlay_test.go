package scenario_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/scenario"
	"github.com/cleared-dev/fincore/internal/statement"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func classification() statement.Classification {
	return statement.Classification{
		CashAccounts:           []int{1010, 1020},
		NonCashAccounts:        []int{5900},
		WorkingCapitalAccounts: []int{1100, 1200, 1300, 2010, 2100},
		InvestingAccounts:      []int{1500},
		FinancingAccounts:      []int{2500, 3010},
	}
}

// seedBase funds the business and books steady revenue through June.
func seedBase(t *testing.T) *ledger.Store {
	t.Helper()
	s, err := ledger.NewStoreWithChart(nil, ledger.DefaultChart())
	require.NoError(t, err)

	_, err = s.AppendTransaction(model.Transaction{
		Date: date(2025, time.January, 2), Description: "owner contribution",
		Lines: []model.Line{
			{AccountID: 1010, Amount: dec("50000.00")},
			{AccountID: 3010, Amount: dec("-50000.00")},
		},
	})
	require.NoError(t, err)

	for m := time.January; m <= time.June; m++ {
		_, err = s.AppendTransaction(model.Transaction{
			Date: date(2025, m, 15), Description: "monthly revenue",
			Lines: []model.Line{
				{AccountID: 1010, Amount: dec("8000.00")},
				{AccountID: 4010, Amount: dec("-8000.00")},
			},
		})
		require.NoError(t, err)
	}
	return s
}

func hireScenario() model.Scenario {
	return model.Scenario{
		ID:         "hire-one-employee",
		Name:       "Hire one employee",
		BasePeriod: model.QuarterPeriod(2025, 2),
		Adjustments: []model.Adjustment{{
			AccountID:       5050,
			OffsetAccountID: 1010,
			Amount:          dec("5000.00"),
			Type:            model.AdjustmentRecurring,
			EffectiveDate:   date(2025, time.March, 1),
			Description:     "new hire salary",
		}},
	}
}

func TestRecurringAdjustment_ExpandsPerMonth(t *testing.T) {
	s := seedBase(t)
	base := s.Snapshot()

	view, err := scenario.NewView(base, hireScenario(), date(2025, time.June, 30))
	require.NoError(t, err)

	// March through June inclusive: four virtual transactions.
	virtual := len(view.Transactions()) - len(base.Transactions())
	assert.Equal(t, 4, virtual)
	assert.Equal(t, "hire-one-employee", view.ScenarioID())
	assert.Equal(t, base.Version(), view.Version())
}

func TestHireScenario_Q2OperatingCashDelta(t *testing.T) {
	s := seedBase(t)
	base := s.Snapshot()
	versionBefore := s.Version()

	cmp, err := scenario.Compare(context.Background(), base, model.StatementCashFlow,
		statement.Params{
			Period:         model.QuarterPeriod(2025, 2),
			Classification: classification(),
		}, hireScenario())
	require.NoError(t, err)
	require.Len(t, cmp.Results, 1)

	baseOp := cmp.Base.Total(statement.SectionOperating)
	scOp := cmp.Results[0].Snapshot.Total(statement.SectionOperating)
	assert.True(t, scOp.Equal(baseOp.Sub(dec("15000.00"))),
		"scenario operating cash %s, base %s", scOp, baseOp)

	// Evaluating scenarios never touches the system of record.
	assert.Equal(t, versionBefore, s.Version())

	var opDiff *scenario.DiffLine
	for i := range cmp.Results[0].Diff {
		d := &cmp.Results[0].Diff[i]
		if d.Section == statement.SectionOperating && d.Label == "Total" {
			opDiff = d
		}
	}
	require.NotNil(t, opDiff)
	assert.True(t, opDiff.Delta.Equal(dec("-15000.00")))
}

func TestScenario_Deterministic(t *testing.T) {
	s := seedBase(t)
	base := s.Snapshot()
	params := statement.Params{
		Period:         model.QuarterPeriod(2025, 2),
		Classification: classification(),
	}

	run := func() model.ReportSnapshot {
		view, err := scenario.NewView(base, hireScenario(), params.Period.End)
		require.NoError(t, err)
		snap, err := statement.CashFlow(context.Background(), view, params)
		require.NoError(t, err)
		return snap
	}

	assert.True(t, reflect.DeepEqual(run(), run()))
}

func TestOneTimeAdjustment(t *testing.T) {
	s := seedBase(t)
	sc := model.Scenario{
		ID: "equipment-refresh",
		Adjustments: []model.Adjustment{{
			AccountID:       5020,
			OffsetAccountID: 1010,
			Amount:          dec("1200.00"),
			Type:            model.AdjustmentOneTime,
			EffectiveDate:   date(2025, time.April, 10),
		}},
	}

	view, err := scenario.NewView(s.Snapshot(), sc, date(2025, time.June, 30))
	require.NoError(t, err)

	snap, err := statement.ProfitAndLoss(context.Background(), view, statement.Params{
		Period: model.QuarterPeriod(2025, 2),
	})
	require.NoError(t, err)

	baseSnap, err := statement.ProfitAndLoss(context.Background(), s.Snapshot(), statement.Params{
		Period: model.QuarterPeriod(2025, 2),
	})
	require.NoError(t, err)

	delta := snap.Total(statement.SectionExpenses).Sub(baseSnap.Total(statement.SectionExpenses))
	assert.True(t, delta.Equal(dec("1200.00")))
}

func TestRevenueAdjustment_PostsAsCredit(t *testing.T) {
	s := seedBase(t)
	sc := model.Scenario{
		ID: "new-contract",
		Adjustments: []model.Adjustment{{
			AccountID:       4010,
			OffsetAccountID: 1100,
			Amount:          dec("3000.00"),
			Type:            model.AdjustmentRecurring,
			EffectiveDate:   date(2025, time.April, 1),
		}},
	}

	view, err := scenario.NewView(s.Snapshot(), sc, date(2025, time.June, 30))
	require.NoError(t, err)

	snap, err := statement.ProfitAndLoss(context.Background(), view, statement.Params{
		Period: model.QuarterPeriod(2025, 2),
	})
	require.NoError(t, err)

	// 3 months of 8000 base revenue plus 3 months of the new contract.
	assert.True(t, snap.Total(statement.SectionRevenue).Equal(dec("33000.00")))
}

func TestLoanAdjustment_ProceedsAndPayments(t *testing.T) {
	s := seedBase(t)
	sc := model.Scenario{
		ID: "equipment-loan",
		Adjustments: []model.Adjustment{{
			AccountID:          1500,
			OffsetAccountID:    1010,
			Amount:             dec("12000.00"),
			Type:               model.AdjustmentLoan,
			EffectiveDate:      date(2025, time.March, 1),
			TermMonths:         12,
			AnnualRate:         dec("0.06"),
			LiabilityAccountID: 2500,
			InterestAccountID:  5950,
			Description:        "equipment loan",
		}},
	}

	view, err := scenario.NewView(s.Snapshot(), sc, date(2025, time.June, 30))
	require.NoError(t, err)

	// Proceeds plus March->June payments... effective March, payments start April.
	virtual := len(view.Transactions()) - len(s.Snapshot().Transactions())
	assert.Equal(t, 4, virtual, "proceeds + 3 monthly payments")

	// Every virtual transaction is balanced.
	for _, tx := range view.Transactions() {
		assert.True(t, tx.Balance().IsZero(), "transaction %s is imbalanced", tx.ID)
	}

	snap, err := statement.CashFlow(context.Background(), view, statement.Params{
		Period:         model.QuarterPeriod(2025, 2),
		Classification: classification(),
	})
	require.NoError(t, err)

	// Interest shows up as an operating expense; principal repayment under
	// financing, net of nothing else happening to the loan account.
	assert.True(t, snap.Total(statement.SectionFinancing).IsNegative())
}

func TestScenario_Validation(t *testing.T) {
	s := seedBase(t)
	base := s.Snapshot()

	_, err := scenario.NewView(base, model.Scenario{}, date(2025, time.June, 30))
	assert.ErrorIs(t, err, scenario.ErrMissingScenarioID)

	_, err = scenario.NewView(base, model.Scenario{
		ID: "bad",
		Adjustments: []model.Adjustment{{
			AccountID: 9999, OffsetAccountID: 1010,
			Amount: dec("1.00"), Type: model.AdjustmentOneTime,
			EffectiveDate: date(2025, time.April, 1),
		}},
	}, date(2025, time.June, 30))
	assert.ErrorIs(t, err, scenario.ErrBadAdjustment)

	a := hireScenario()
	b := hireScenario()
	_, err = scenario.Compare(context.Background(), base, model.StatementCashFlow,
		statement.Params{Period: model.QuarterPeriod(2025, 2), Classification: classification()}, a, b)
	assert.ErrorIs(t, err, scenario.ErrDuplicateScenario)
}
