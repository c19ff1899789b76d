package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fincore/internal/dimension"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/metrics"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/report"
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

func serviceConfig() report.Config {
	return report.Config{
		Classification: statement.Classification{
			CashAccounts:           []int{1010, 1020},
			NonCashAccounts:        []int{5900},
			WorkingCapitalAccounts: []int{1100, 1200, 1300, 2010, 2020, 2100},
			InvestingAccounts:      []int{1500},
			FinancingAccounts:      []int{2500, 3010},
		},
		AccountSets: metrics.AccountSets{
			Cash:               []int{1010, 1020},
			Receivables:        []int{1100},
			Payables:           []int{2010},
			Inventory:          []int{1200},
			CurrentAssets:      []int{1010, 1020, 1100, 1200, 1300},
			CurrentLiabilities: []int{2010, 2020, 2100},
			DebtService:        []int{5950},
		},
		Health:           metrics.DefaultHealthConfig(),
		RunwayThresholds: metrics.DefaultRunwayThresholds(),
		RunwayWindow:     3,
		Timeout:          10 * time.Second,
	}
}

func post(t *testing.T, s *ledger.Store, d time.Time, desc string, lines ...model.Line) {
	t.Helper()
	_, err := s.AppendTransaction(model.Transaction{Date: d, Description: desc, Lines: lines})
	require.NoError(t, err)
}

func line(accountID int, amount string) model.Line {
	return model.Line{AccountID: accountID, Amount: dec(amount)}
}

// seedJanuary posts a December owner contribution and January revenue and
// rent, leaving $13,000 of cash and $3,000 of January net income.
func seedJanuary(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.NewStoreWithChart(nil, ledger.DefaultChart())
	require.NoError(t, err)
	post(t, store, date(2024, time.December, 1), "owner contribution",
		line(1010, "10000.00"), line(3010, "-10000.00"))
	post(t, store, date(2025, time.January, 10), "consulting revenue",
		line(1010, "15000.00"), line(4010, "-15000.00"))
	post(t, store, date(2025, time.January, 20), "office rent",
		line(5010, "12000.00"), line(1010, "-12000.00"))
	return store
}

func newService(t *testing.T, store *ledger.Store, index *dimension.Index) *report.Service {
	t.Helper()
	if index == nil {
		index = dimension.NewIndex(nil)
	}
	svc, err := report.NewService(store, index, report.NewCache(64, time.Minute), serviceConfig(), nil)
	require.NoError(t, err)
	return svc
}

func TestService_GenerateServesFromCache(t *testing.T) {
	store := seedJanuary(t)
	svc := newService(t, store, nil)
	req := report.Request{
		Statement: model.StatementProfitLoss,
		Period:    model.MonthPeriod(2025, time.January),
	}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, first.Total(statement.SectionNetIncome).Equal(dec("3000.00")))
	assert.False(t, first.GeneratedAt.IsZero())

	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)
}

func TestService_MutationInvalidatesLazily(t *testing.T) {
	store := seedJanuary(t)
	svc := newService(t, store, nil)
	req := report.Request{
		Statement: model.StatementProfitLoss,
		Period:    model.MonthPeriod(2025, time.January),
	}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, first.Total(statement.SectionNetIncome).Equal(dec("3000.00")))

	post(t, store, date(2025, time.January, 25), "late invoice",
		line(1100, "2000.00"), line(4010, "-2000.00"))

	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Total(statement.SectionNetIncome).Equal(dec("5000.00")))
	assert.Greater(t, second.StoreVersion, first.StoreVersion)
}

func TestService_CacheKeyMatchesSnapshotVersions(t *testing.T) {
	store := seedJanuary(t)
	index := dimension.NewIndex(nil)
	cache := report.NewCache(64, time.Minute)
	svc, err := report.NewService(store, index, cache, serviceConfig(), nil)
	require.NoError(t, err)

	req := report.Request{
		Statement: model.StatementProfitLoss,
		Period:    model.MonthPeriod(2025, time.January),
	}

	// Mutate both the store and the tag hierarchy between generations. Each
	// snapshot must report the versions it was computed against and sit in
	// the cache under that exact key, so a reader at those versions finds it.
	for i, name := range []string{"ops", "sales", "admin"} {
		snap, err := svc.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, store.Version(), snap.StoreVersion)
		assert.Equal(t, index.Version(), snap.IndexVersion)

		key := model.CacheKey(req.Statement, req.Period, nil, "", "", snap.StoreVersion, snap.IndexVersion)
		cached, ok := cache.Get(key)
		require.True(t, ok)
		assert.Equal(t, snap.GeneratedAt, cached.GeneratedAt)

		post(t, store, date(2025, time.January, 26+i), "adjustment",
			line(1100, "100.00"), line(4010, "-100.00"))
		_, err = index.CreateClassTag(name, "")
		require.NoError(t, err)
	}
}

func TestService_ScenarioOverlayLeavesBaseAlone(t *testing.T) {
	store := seedJanuary(t)
	svc := newService(t, store, nil)
	period := model.MonthPeriod(2025, time.January)
	before := store.Version()

	sc := model.Scenario{
		ID:   "extra-rent",
		Name: "Extra rent",
		Adjustments: []model.Adjustment{{
			Type:            model.AdjustmentOneTime,
			AccountID:       5010,
			OffsetAccountID: 1010,
			Amount:          dec("1000.00"),
			EffectiveDate:   date(2025, time.January, 15),
			Description:     "extra rent",
		}},
	}

	overlaid, err := svc.Generate(context.Background(), report.Request{
		Statement: model.StatementProfitLoss,
		Period:    period,
		Scenario:  &sc,
	})
	require.NoError(t, err)
	assert.Equal(t, "extra-rent", overlaid.ScenarioID)
	assert.True(t, overlaid.Total(statement.SectionNetIncome).Equal(dec("2000.00")))

	base, err := svc.Generate(context.Background(), report.Request{
		Statement: model.StatementProfitLoss,
		Period:    period,
	})
	require.NoError(t, err)
	assert.Empty(t, base.ScenarioID)
	assert.True(t, base.Total(statement.SectionNetIncome).Equal(dec("3000.00")))
	assert.Equal(t, before, store.Version())
}

func TestService_CategoryFilterRollsUp(t *testing.T) {
	store, err := ledger.NewStoreWithChart(nil, ledger.DefaultChart())
	require.NoError(t, err)
	index := dimension.NewIndex(nil)
	parent, err := index.CreateCategoryTag("Marketing", "")
	require.NoError(t, err)
	child, err := index.CreateCategoryTag("Online Ads", parent.ID)
	require.NoError(t, err)

	post(t, store, date(2025, time.January, 5), "ad spend",
		model.Line{AccountID: 5030, Amount: dec("120.00"), CategoryTagID: child.ID},
		line(1010, "-120.00"))
	post(t, store, date(2025, time.January, 6), "untagged spend",
		line(5030, "80.00"), line(1010, "-80.00"))

	svc := newService(t, store, index)
	snap, err := svc.Generate(context.Background(), report.Request{
		Statement: model.StatementProfitLoss,
		Period:    model.MonthPeriod(2025, time.January),
		Filter:    &model.DimensionFilter{Axis: model.AxisCategory, TagID: parent.ID},
	})
	require.NoError(t, err)
	assert.True(t, snap.Total(statement.SectionExpenses).Equal(dec("120.00")))
}

func TestService_UnknownClassTagFilter(t *testing.T) {
	svc := newService(t, seedJanuary(t), nil)
	_, err := svc.Generate(context.Background(), report.Request{
		Statement: model.StatementProfitLoss,
		Period:    model.MonthPeriod(2025, time.January),
		Filter:    &model.DimensionFilter{Axis: model.AxisClass, TagID: "nope"},
	})
	assert.ErrorIs(t, err, dimension.ErrUnknownTag)
}

func TestService_Health(t *testing.T) {
	svc := newService(t, seedJanuary(t), nil)
	result, ratios, err := svc.Health(context.Background(), model.MonthPeriod(2025, time.January), nil)
	require.NoError(t, err)

	assert.True(t, result.Score.GreaterThanOrEqual(decimal.Zero))
	assert.True(t, result.Score.LessThanOrEqual(dec("100")))

	margin, ok := ratios[metrics.RatioProfitMargin]
	require.True(t, ok)
	require.True(t, margin.OK)
	assert.True(t, margin.Value.Equal(dec("0.2")))
}

func TestService_RunwayProfitableIsInfinite(t *testing.T) {
	svc := newService(t, seedJanuary(t), nil)
	result, err := svc.Runway(context.Background(), date(2025, time.January, 31))
	require.NoError(t, err)
	assert.True(t, result.IsInfinite)
	assert.Equal(t, metrics.RunwayHealthy, result.Band)
}

func TestService_RunwayBurningCash(t *testing.T) {
	store, err := ledger.NewStoreWithChart(nil, ledger.DefaultChart())
	require.NoError(t, err)
	post(t, store, date(2024, time.December, 1), "owner contribution",
		line(1010, "12000.00"), line(3010, "-12000.00"))
	for _, m := range []time.Month{time.January, time.February, time.March} {
		post(t, store, date(2025, m, 15), "payroll",
			line(5020, "2000.00"), line(1010, "-2000.00"))
	}

	svc := newService(t, store, nil)
	result, err := svc.Runway(context.Background(), date(2025, time.March, 31))
	require.NoError(t, err)
	assert.False(t, result.IsInfinite)
	assert.True(t, result.MonthlyBurn.Equal(dec("2000.00")))
	assert.True(t, result.Months.Equal(dec("3")))
	assert.Equal(t, metrics.RunwayCaution, result.Band)
}
