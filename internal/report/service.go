package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fincore/internal/dimension"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/log"
	"github.com/cleared-dev/fincore/internal/metrics"
	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/scenario"
	"github.com/cleared-dev/fincore/internal/statement"
)

// Config carries everything a Service needs to run the engines. It is built
// once at startup from the loaded configuration file; nothing is read from
// ambient state per request.
type Config struct {
	Classification   statement.Classification
	AccountSets      metrics.AccountSets
	Health           metrics.HealthConfig
	RunwayThresholds metrics.RunwayThresholds
	RunwayWindow     int
	Timeout          time.Duration
}

// Request names one statement computation. Filter and Scenario are optional;
// GroupBy is empty for single-column reports.
type Request struct {
	Statement model.StatementType
	Period    model.Period
	Filter    *model.DimensionFilter
	GroupBy   model.GroupAxis
	Scenario  *model.Scenario
}

// Service generates report snapshots in front of the LRU cache. Snapshot keys
// embed the store and index versions, so a mutation invalidates lazily: stale
// entries are simply never asked for again and age out of the LRU.
type Service struct {
	store  *ledger.Store
	index  *dimension.Index
	cache  *Cache
	cfg    Config
	logger *log.Logger
}

// NewService wires a Service over the store and dimension index.
func NewService(store *ledger.Store, index *dimension.Index, cache *Cache, cfg Config, logger *log.Logger) (*Service, error) {
	if err := cfg.Health.Validate(); err != nil {
		return nil, fmt.Errorf("health config: %w", err)
	}
	if cfg.RunwayWindow <= 0 {
		cfg.RunwayWindow = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{
		store:  store,
		index:  index,
		cache:  cache,
		cfg:    cfg,
		logger: logger.WithComponent("report"),
	}, nil
}

// Generate computes one statement, serving from the cache when the same
// request was already computed against the current store and index versions.
func (s *Service) Generate(ctx context.Context, req Request) (model.ReportSnapshot, error) {
	scenarioID := ""
	if req.Scenario != nil {
		scenarioID = req.Scenario.ID
	}
	// Snapshot before keying, so the key's store version is the version the
	// statement is actually computed against. Tag lookups in params are not
	// covered by the snapshot; re-read the index version afterwards and
	// retry if a hierarchy mutation slipped in between.
	base := s.store.Snapshot()
	var (
		indexVersion uint64
		params       statement.Params
		err          error
	)
	for {
		indexVersion = s.index.Version()
		params, err = s.params(req)
		if err != nil {
			return model.ReportSnapshot{}, err
		}
		if s.index.Version() == indexVersion {
			break
		}
	}

	key := model.CacheKey(req.Statement, req.Period, req.Filter, req.GroupBy, scenarioID, base.Version(), indexVersion)
	if snap, ok := s.cache.Get(key); ok {
		s.logger.Debug("cache hit", "key", key)
		return snap, nil
	}

	var view statement.LedgerView = base
	if req.Scenario != nil {
		overlay, err := scenario.NewView(view, *req.Scenario, req.Period.End)
		if err != nil {
			return model.ReportSnapshot{}, err
		}
		view = overlay
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	started := time.Now()
	snap, err := statement.Generate(ctx, view, req.Statement, params)
	if err != nil {
		return model.ReportSnapshot{}, err
	}
	snap.IndexVersion = indexVersion
	snap.GeneratedAt = time.Now().UTC()

	s.cache.Set(key, snap)
	s.logger.Debug("generated",
		"statement", string(req.Statement),
		"period", req.Period.String(),
		"scenario", scenarioID,
		"elapsed", time.Since(started))
	return snap, nil
}

// Compare runs the base statement and each scenario overlay and diffs them.
// Comparison results bypass the snapshot cache; the per-scenario snapshots
// are fanned out concurrently instead.
func (s *Service) Compare(ctx context.Context, req Request, scenarios ...model.Scenario) (*scenario.Comparison, error) {
	params, err := s.params(req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return scenario.Compare(ctx, s.store.Snapshot(), req.Statement, params, scenarios...)
}

// Health scores the business for a period. The balance sheet, period P&L,
// and prior-period P&L all go through Generate, so repeated scoring against
// an unchanged ledger reuses cached snapshots.
func (s *Service) Health(ctx context.Context, p model.Period, customers *metrics.CustomerCounts) (metrics.HealthResult, metrics.RatioSet, error) {
	bs, err := s.Generate(ctx, Request{Statement: model.StatementBalanceSheet, Period: p})
	if err != nil {
		return metrics.HealthResult{}, nil, err
	}
	pl, err := s.Generate(ctx, Request{Statement: model.StatementProfitLoss, Period: p})
	if err != nil {
		return metrics.HealthResult{}, nil, err
	}
	priorPL, err := s.Generate(ctx, Request{Statement: model.StatementProfitLoss, Period: p.Prior()})
	if err != nil {
		return metrics.HealthResult{}, nil, err
	}
	ratios := metrics.BuildRatios(&bs, &pl, &priorPL, s.cfg.AccountSets, customers)
	result, err := metrics.HealthScore(ratios, s.cfg.Health)
	if err != nil {
		return metrics.HealthResult{}, nil, err
	}
	return result, ratios, nil
}

// Runway reports months of cash left as of the end of the month containing
// asOf, using the configured trailing window for the burn rate.
func (s *Service) Runway(ctx context.Context, asOf time.Time) (metrics.RunwayResult, error) {
	months := make([]model.Period, s.cfg.RunwayWindow)
	cursor := model.MonthPeriod(asOf.Year(), asOf.Month())
	for i := len(months) - 1; i >= 0; i-- {
		months[i] = cursor
		cursor = cursor.Prior()
	}

	pls := make([]model.ReportSnapshot, 0, len(months))
	for _, m := range months {
		pl, err := s.Generate(ctx, Request{Statement: model.StatementProfitLoss, Period: m})
		if err != nil {
			return metrics.RunwayResult{}, err
		}
		pls = append(pls, pl)
	}

	bs, err := s.Generate(ctx, Request{Statement: model.StatementBalanceSheet, Period: months[len(months)-1]})
	if err != nil {
		return metrics.RunwayResult{}, err
	}
	cash := cashBalance(bs, s.cfg.AccountSets.Cash)
	return metrics.Runway(cash, metrics.BurnFromSnapshots(pls), s.cfg.RunwayThresholds), nil
}

// params resolves the request's dimension filter and grouping against the
// index. A category filter rolls up: it matches the tag and every descendant.
func (s *Service) params(req Request) (statement.Params, error) {
	p := statement.Params{
		Period:         req.Period,
		Classification: s.cfg.Classification,
	}
	if req.Filter != nil {
		ids, err := s.resolveFilter(*req.Filter)
		if err != nil {
			return statement.Params{}, err
		}
		p.Filter = &statement.Filter{
			Axis:   req.Filter.Axis,
			TagIDs: ids,
			Source: req.Filter,
		}
	}
	if req.GroupBy != "" {
		p.GroupBy = &statement.Grouping{
			Axis:   req.GroupBy,
			Labels: s.index.Labels(req.GroupBy),
		}
	}
	return p, nil
}

func (s *Service) resolveFilter(f model.DimensionFilter) (map[string]bool, error) {
	switch f.Axis {
	case model.AxisClass:
		if _, ok := s.index.ClassTag(f.TagID); !ok {
			return nil, fmt.Errorf("%w: class tag %q", dimension.ErrUnknownTag, f.TagID)
		}
		return map[string]bool{f.TagID: true}, nil
	case model.AxisCategory:
		ids, err := s.index.DescendantsOf(f.TagID)
		if err != nil {
			return nil, err
		}
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		return set, nil
	default:
		return nil, fmt.Errorf("%w: axis %q", statement.ErrUnsupportedDimension, f.Axis)
	}
}

// cashBalance sums the last-column balances of the cash accounts on a
// balance sheet.
func cashBalance(bs model.ReportSnapshot, cashIDs []int) decimal.Decimal {
	want := make(map[int]bool, len(cashIDs))
	for _, id := range cashIDs {
		want[id] = true
	}
	total := decimal.Zero
	sec := bs.Section(statement.SectionAssets)
	if sec == nil {
		return total
	}
	for _, line := range sec.Lines {
		if want[line.AccountID] && len(line.Amounts) > 0 {
			total = total.Add(line.Amounts[len(line.Amounts)-1])
		}
	}
	return total
}
