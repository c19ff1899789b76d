package commands

import (
	"fmt"

	"github.com/cleared-dev/fincore/internal/config"
	"github.com/cleared-dev/fincore/internal/dimension"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/log"
	"github.com/cleared-dev/fincore/internal/report"
	"github.com/cleared-dev/fincore/internal/storage"
)

// project bundles the opened database, rebuilt stores, and wired services
// for one command invocation.
type project struct {
	cfg     *config.Config
	db      *storage.DB
	store   *ledger.Store
	index   *dimension.Index
	reports *report.Service
	logger  *log.Logger
}

// openProject loads the configuration, opens the database, and rebuilds the
// ledger store and dimension index. A fresh database is bootstrapped with the
// default chart of accounts.
func openProject(configPath string) (*project, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := log.New(log.Config{})

	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	store := ledger.NewStore(db)
	index := dimension.NewIndex(db)

	has, err := db.HasAccounts()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if has {
		if err := db.Load(store, index); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("rebuilding ledger: %w", err)
		}
	} else {
		store, err = ledger.NewStoreWithChart(db, ledger.DefaultChart())
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrapping chart: %w", err)
		}
	}

	svcCfg := report.Config{
		Classification:   cfg.Classification.ToStatement(),
		AccountSets:      cfg.Ratios.ToAccountSets(cfg.Classification.Cash),
		Health:           cfg.Health.ToMetrics(),
		RunwayThresholds: cfg.Runway.Thresholds(),
		RunwayWindow:     cfg.Runway.TrailingMonths,
		Timeout:          cfg.Reports.Timeout(),
	}
	cache := report.NewCache(cfg.Reports.CacheSize, cfg.Reports.CacheTTL())
	reports, err := report.NewService(store, index, cache, svcCfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &project{
		cfg:     cfg,
		db:      db,
		store:   store,
		index:   index,
		reports: reports,
		logger:  logger,
	}, nil
}

// Close releases the database handle.
func (p *project) Close() error {
	return p.db.Close()
}
