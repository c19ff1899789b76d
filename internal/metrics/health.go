// Package metrics derives composite indicators from report snapshots. It
// never reads the ledger directly: everything arrives through the stable
// report schema plus explicit configuration.
package metrics

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// RatioName identifies one health-score input ratio.
type RatioName string

const (
	RatioCurrent             RatioName = "current_ratio"
	RatioQuick               RatioName = "quick_ratio"
	RatioCashOnHand          RatioName = "cash_months"
	RatioProfitMargin        RatioName = "profit_margin"
	RatioRevenueGrowth       RatioName = "revenue_growth"
	RatioDebtToEquity        RatioName = "debt_to_equity"
	RatioDebtServiceCoverage RatioName = "debt_service_coverage"
	RatioReceivableDays      RatioName = "ar_days"
	RatioPayableDays         RatioName = "ap_days"
	RatioInventoryTurnover   RatioName = "inventory_turnover"
	RatioCustomerGrowth      RatioName = "customer_growth"
)

// Category groups ratios for weighting.
type Category string

const (
	CategoryLiquidity     Category = "liquidity"
	CategoryProfitability Category = "profitability"
	CategoryLeverage      Category = "leverage"
	CategoryEfficiency    Category = "efficiency"
	CategoryGrowth        Category = "growth"
)

// categoryOf is the fixed ratio-to-category assignment.
var categoryOf = map[RatioName]Category{
	RatioCurrent:             CategoryLiquidity,
	RatioQuick:               CategoryLiquidity,
	RatioCashOnHand:          CategoryLiquidity,
	RatioProfitMargin:        CategoryProfitability,
	RatioRevenueGrowth:       CategoryGrowth,
	RatioDebtToEquity:        CategoryLeverage,
	RatioDebtServiceCoverage: CategoryLeverage,
	RatioReceivableDays:      CategoryEfficiency,
	RatioPayableDays:         CategoryEfficiency,
	RatioInventoryTurnover:   CategoryEfficiency,
	RatioCustomerGrowth:      CategoryGrowth,
}

// categoryOrder fixes iteration order for deterministic output.
var categoryOrder = []Category{
	CategoryLiquidity, CategoryProfitability, CategoryLeverage, CategoryEfficiency, CategoryGrowth,
}

var ratioOrder = []RatioName{
	RatioCurrent, RatioQuick, RatioCashOnHand, RatioProfitMargin, RatioRevenueGrowth,
	RatioDebtToEquity, RatioDebtServiceCoverage, RatioReceivableDays, RatioPayableDays,
	RatioInventoryTurnover, RatioCustomerGrowth,
}

// ErrBadWeights is returned when category weights do not sum to 100.
var ErrBadWeights = errors.New("health score category weights must sum to 100")

// Curve maps a raw ratio to a 0-100 sub-score: 0 at Zero, 100 at Full, linear
// between, clamped outside. Setting Zero above Full inverts the curve for
// lower-is-better ratios such as debt-to-equity or A/R days. The mapping is
// monotonic by construction.
type Curve struct {
	Zero decimal.Decimal `yaml:"zero" json:"zero"`
	Full decimal.Decimal `yaml:"full" json:"full"`
}

// Score applies the curve.
func (c Curve) Score(v decimal.Decimal) decimal.Decimal {
	span := c.Full.Sub(c.Zero)
	if span.IsZero() {
		return hundred
	}
	s := v.Sub(c.Zero).Div(span).Mul(hundred)
	return clamp(s, decimal.Zero, hundred)
}

var hundred = decimal.NewFromInt(100)

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// HealthConfig is the explicit per-call configuration for a health score.
type HealthConfig struct {
	// Weights per category; must sum to 100.
	Weights map[Category]decimal.Decimal `yaml:"weights" json:"weights"`
	// Curves per ratio; a ratio without a curve scores the sentinel.
	Curves map[RatioName]Curve `yaml:"curves" json:"curves"`
	// SentinelScore is used when a ratio cannot be computed (divide by zero,
	// missing input). The default treats an absent denominator obligation as
	// the healthy case and scores maximum.
	SentinelScore decimal.Decimal `yaml:"sentinel_score" json:"sentinel_score"`
}

// DefaultHealthConfig returns the documented default weighting and curves.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		Weights: map[Category]decimal.Decimal{
			CategoryLiquidity:     decimal.NewFromInt(30),
			CategoryProfitability: decimal.NewFromInt(25),
			CategoryLeverage:      decimal.NewFromInt(20),
			CategoryEfficiency:    decimal.NewFromInt(15),
			CategoryGrowth:        decimal.NewFromInt(10),
		},
		Curves: map[RatioName]Curve{
			RatioCurrent:             {Zero: decimal.Zero, Full: decimal.NewFromInt(2)},
			RatioQuick:               {Zero: decimal.Zero, Full: decimal.NewFromInt(1)},
			RatioCashOnHand:          {Zero: decimal.Zero, Full: decimal.NewFromInt(6)},
			RatioProfitMargin:        {Zero: decimal.Zero, Full: decimal.NewFromFloat(0.20)},
			RatioRevenueGrowth:       {Zero: decimal.NewFromFloat(-0.10), Full: decimal.NewFromFloat(0.25)},
			RatioDebtToEquity:        {Zero: decimal.NewFromInt(3), Full: decimal.Zero},
			RatioDebtServiceCoverage: {Zero: decimal.Zero, Full: decimal.NewFromInt(2)},
			RatioReceivableDays:      {Zero: decimal.NewFromInt(90), Full: decimal.NewFromInt(30)},
			RatioPayableDays:         {Zero: decimal.NewFromInt(90), Full: decimal.NewFromInt(30)},
			RatioInventoryTurnover:   {Zero: decimal.Zero, Full: decimal.NewFromInt(12)},
			RatioCustomerGrowth:      {Zero: decimal.NewFromFloat(-0.10), Full: decimal.NewFromFloat(0.25)},
		},
		SentinelScore: hundred,
	}
}

// Validate checks that the category weights cover 100 points.
func (c HealthConfig) Validate() error {
	sum := decimal.Zero
	for _, w := range c.Weights {
		sum = sum.Add(w)
	}
	if !sum.Equal(hundred) {
		return fmt.Errorf("%w: got %s", ErrBadWeights, sum)
	}
	return nil
}

// Ratio is one computed input ratio. OK is false when the value could not be
// computed; the sub-score then falls back to the configured sentinel.
type Ratio struct {
	Value decimal.Decimal `json:"value"`
	OK    bool            `json:"ok"`
}

// RatioSet holds the raw ratios the score is built from.
type RatioSet map[RatioName]Ratio

// SubScore is the normalized 0-100 score of one ratio.
type SubScore struct {
	Name     RatioName       `json:"name"`
	Category Category        `json:"category"`
	Raw      decimal.Decimal `json:"raw"`
	OK       bool            `json:"ok"`
	Score    decimal.Decimal `json:"score"`
}

// HealthResult is the scored output.
type HealthResult struct {
	Score          decimal.Decimal              `json:"score"`
	CategoryScores map[Category]decimal.Decimal `json:"category_scores"`
	SubScores      []SubScore                   `json:"sub_scores"`
}

// HealthScore normalizes each ratio through its curve, averages sub-scores
// within each category, and combines categories by weight. The result is
// clamped to [0,100] for any input, including degenerate ratio sets.
func HealthScore(ratios RatioSet, cfg HealthConfig) (HealthResult, error) {
	if err := cfg.Validate(); err != nil {
		return HealthResult{}, err
	}

	res := HealthResult{CategoryScores: make(map[Category]decimal.Decimal)}

	catSum := make(map[Category]decimal.Decimal)
	catCount := make(map[Category]int)

	for _, name := range ratioOrder {
		cat := categoryOf[name]
		r, present := ratios[name]

		var score decimal.Decimal
		switch {
		case !present || !r.OK:
			score = cfg.SentinelScore
		default:
			curve, hasCurve := cfg.Curves[name]
			if !hasCurve {
				score = cfg.SentinelScore
			} else {
				score = curve.Score(r.Value)
			}
		}

		res.SubScores = append(res.SubScores, SubScore{
			Name: name, Category: cat, Raw: r.Value, OK: present && r.OK, Score: score,
		})
		catSum[cat] = catSum[cat].Add(score)
		catCount[cat]++
	}

	total := decimal.Zero
	for _, cat := range categoryOrder {
		if catCount[cat] == 0 {
			continue
		}
		avg := catSum[cat].Div(decimal.NewFromInt(int64(catCount[cat])))
		res.CategoryScores[cat] = avg
		total = total.Add(avg.Mul(cfg.Weights[cat]).Div(hundred))
	}

	res.Score = clamp(total, decimal.Zero, hundred)
	return res, nil
}
