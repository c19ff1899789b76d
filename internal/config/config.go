package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/fincore/internal/metrics"
	"github.com/cleared-dev/fincore/internal/statement"
)

// Config represents the top-level fincore.yaml configuration. Everything the
// engines need arrives through here as explicit objects; nothing is read from
// ambient state at computation time.
type Config struct {
	Business       BusinessConfig       `yaml:"business"`
	Storage        StorageConfig        `yaml:"storage"`
	Server         ServerConfig         `yaml:"server"`
	Reports        ReportsConfig        `yaml:"reports"`
	Classification ClassificationConfig `yaml:"classification"`
	Ratios         RatiosConfig         `yaml:"ratios"`
	Health         HealthConfig         `yaml:"health"`
	Runway         RunwayConfig         `yaml:"runway"`
	Suggestions    SuggestionsConfig    `yaml:"suggestions"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// StorageConfig locates the ledger database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls the report API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ReportsConfig controls snapshot caching and computation limits.
type ReportsConfig struct {
	CacheSize      int `yaml:"cache_size"`
	CacheTTLMins   int `yaml:"cache_ttl_minutes"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// CacheTTL returns the snapshot TTL as a duration.
func (r ReportsConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLMins) * time.Minute
}

// Timeout returns the per-report computation budget.
func (r ReportsConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// ClassificationConfig maps account IDs to cash-flow roles.
type ClassificationConfig struct {
	Cash           []int `yaml:"cash"`
	NonCash        []int `yaml:"non_cash"`
	WorkingCapital []int `yaml:"working_capital"`
	Investing      []int `yaml:"investing"`
	Financing      []int `yaml:"financing"`
}

// ToStatement converts to the engine's classification object.
func (c ClassificationConfig) ToStatement() statement.Classification {
	return statement.Classification{
		CashAccounts:           c.Cash,
		NonCashAccounts:        c.NonCash,
		WorkingCapitalAccounts: c.WorkingCapital,
		InvestingAccounts:      c.Investing,
		FinancingAccounts:      c.Financing,
	}
}

// RatiosConfig maps account IDs to health-score ratio inputs.
type RatiosConfig struct {
	Receivables        []int `yaml:"receivables"`
	Payables           []int `yaml:"payables"`
	Inventory          []int `yaml:"inventory"`
	CurrentAssets      []int `yaml:"current_assets"`
	CurrentLiabilities []int `yaml:"current_liabilities"`
	DebtService        []int `yaml:"debt_service"`
}

// ToAccountSets converts to the metrics account sets, sharing the cash list
// with the cash-flow classification.
func (r RatiosConfig) ToAccountSets(cash []int) metrics.AccountSets {
	return metrics.AccountSets{
		Cash:               cash,
		Receivables:        r.Receivables,
		Payables:           r.Payables,
		Inventory:          r.Inventory,
		CurrentAssets:      r.CurrentAssets,
		CurrentLiabilities: r.CurrentLiabilities,
		DebtService:        r.DebtService,
	}
}

// CurveConfig is the yaml form of a normalization curve.
type CurveConfig struct {
	Zero float64 `yaml:"zero"`
	Full float64 `yaml:"full"`
}

// HealthConfig is the yaml form of the health-score configuration.
type HealthConfig struct {
	Weights       map[string]float64     `yaml:"weights"`
	Curves        map[string]CurveConfig `yaml:"curves"`
	SentinelScore float64                `yaml:"sentinel_score"`
}

// ToMetrics converts to the metrics package's decimal-valued configuration.
// Unset sections fall back to the documented defaults.
func (h HealthConfig) ToMetrics() metrics.HealthConfig {
	out := metrics.DefaultHealthConfig()
	if len(h.Weights) > 0 {
		out.Weights = make(map[metrics.Category]decimal.Decimal, len(h.Weights))
		for cat, w := range h.Weights {
			out.Weights[metrics.Category(cat)] = decimal.NewFromFloat(w)
		}
	}
	if len(h.Curves) > 0 {
		out.Curves = make(map[metrics.RatioName]metrics.Curve, len(h.Curves))
		for name, c := range h.Curves {
			out.Curves[metrics.RatioName(name)] = metrics.Curve{
				Zero: decimal.NewFromFloat(c.Zero),
				Full: decimal.NewFromFloat(c.Full),
			}
		}
	}
	if h.SentinelScore > 0 {
		out.SentinelScore = decimal.NewFromFloat(h.SentinelScore)
	}
	return out
}

// RunwayConfig holds the runway thresholds and trailing window.
type RunwayConfig struct {
	HealthyMonths  float64 `yaml:"healthy_months"`
	CautionMonths  float64 `yaml:"caution_months"`
	TrailingMonths int     `yaml:"trailing_months"`
}

// Thresholds converts to the metrics thresholds.
func (r RunwayConfig) Thresholds() metrics.RunwayThresholds {
	return metrics.RunwayThresholds{
		Healthy: decimal.NewFromFloat(r.HealthyMonths),
		Caution: decimal.NewFromFloat(r.CautionMonths),
	}
}

// SuggestionsConfig controls acceptance of external categorization
// suggestions.
type SuggestionsConfig struct {
	MinConfidence float64 `yaml:"min_confidence"`
}

// Load reads a fincore.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config matching the default chart of accounts.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{Name: businessName, Currency: "USD"},
		Storage:  StorageConfig{Path: "fincore.db"},
		Server:   ServerConfig{Addr: ":8480"},
		Reports: ReportsConfig{
			CacheSize:      256,
			CacheTTLMins:   15,
			TimeoutSeconds: 30,
		},
		Classification: ClassificationConfig{
			Cash:           []int{1010, 1020},
			NonCash:        []int{5900},
			WorkingCapital: []int{1100, 1200, 1300, 2010, 2020, 2100},
			Investing:      []int{1500},
			Financing:      []int{2500, 3010},
		},
		Ratios: RatiosConfig{
			Receivables:        []int{1100},
			Payables:           []int{2010},
			Inventory:          []int{1200},
			CurrentAssets:      []int{1010, 1020, 1100, 1200, 1300},
			CurrentLiabilities: []int{2010, 2020, 2100},
			DebtService:        []int{5950},
		},
		Runway: RunwayConfig{
			HealthyMonths:  6,
			CautionMonths:  3,
			TrailingMonths: 3,
		},
		Suggestions: SuggestionsConfig{MinConfidence: 0.85},
	}
}
