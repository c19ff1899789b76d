package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/statement"
)

// RunwayBand classifies a runway figure.
type RunwayBand string

const (
	RunwayHealthy  RunwayBand = "healthy"
	RunwayCaution  RunwayBand = "caution"
	RunwayCritical RunwayBand = "critical"
)

// RunwayThresholds are the band boundaries in months.
type RunwayThresholds struct {
	Healthy decimal.Decimal `yaml:"healthy" json:"healthy"` // >= Healthy months
	Caution decimal.Decimal `yaml:"caution" json:"caution"` // >= Caution months
}

// DefaultRunwayThresholds returns the documented bands: >=6 healthy, 3-6
// caution, <3 critical.
func DefaultRunwayThresholds() RunwayThresholds {
	return RunwayThresholds{
		Healthy: decimal.NewFromInt(6),
		Caution: decimal.NewFromInt(3),
	}
}

// RunwayResult is a pure classification of cash against burn; it is
// recomputed whenever the underlying snapshots change.
type RunwayResult struct {
	Months      decimal.Decimal `json:"months"`
	IsInfinite  bool            `json:"is_infinite"`
	MonthlyBurn decimal.Decimal `json:"monthly_burn"`
	Band        RunwayBand      `json:"band"`
}

// Runway computes runwayMonths = currentCash / monthlyBurnRate, where the
// burn rate is the trailing average of (operating expenses - operating
// revenue) across the supplied months. A non-positive burn means the
// business funds itself: the result is infinite runway, not an error.
func Runway(currentCash decimal.Decimal, monthlyNetBurn []decimal.Decimal, t RunwayThresholds) RunwayResult {
	burn := decimal.Zero
	if n := len(monthlyNetBurn); n > 0 {
		sum := decimal.Zero
		for _, m := range monthlyNetBurn {
			sum = sum.Add(m)
		}
		burn = sum.Div(decimal.NewFromInt(int64(n)))
	}

	if !burn.IsPositive() {
		return RunwayResult{IsInfinite: true, MonthlyBurn: burn, Band: RunwayHealthy}
	}

	months := currentCash.Div(burn)
	res := RunwayResult{Months: months, MonthlyBurn: burn}
	switch {
	case months.GreaterThanOrEqual(t.Healthy):
		res.Band = RunwayHealthy
	case months.GreaterThanOrEqual(t.Caution):
		res.Band = RunwayCaution
	default:
		res.Band = RunwayCritical
	}
	return res
}

// BurnFromSnapshots extracts (expenses - revenue) per trailing monthly P&L
// snapshot, the input Runway averages.
func BurnFromSnapshots(monthlyPL []model.ReportSnapshot) []decimal.Decimal {
	out := make([]decimal.Decimal, len(monthlyPL))
	for i := range monthlyPL {
		out[i] = monthlyPL[i].Total(statement.SectionExpenses).
			Sub(monthlyPL[i].Total(statement.SectionRevenue))
	}
	return out
}
