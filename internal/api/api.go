// Package api exposes the ledger, statements, and metrics over HTTP. All
// endpoints speak JSON; errors use a uniform envelope with a machine-readable
// code.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cleared-dev/fincore/internal/dimension"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/log"
	"github.com/cleared-dev/fincore/internal/report"
)

// Server holds the handlers' shared dependencies.
type Server struct {
	store   *ledger.Store
	index   *dimension.Index
	reports *report.Service
	logger  *log.Logger
}

// NewServer wires a Server over the store, index, and report service.
func NewServer(store *ledger.Store, index *dimension.Index, reports *report.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	return &Server{
		store:   store,
		index:   index,
		reports: reports,
		logger:  logger.WithComponent("api"),
	}
}

// Router builds the chi router for the API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", s.listAccounts)
			r.Post("/", s.createAccount)
			r.Post("/{id}/archive", s.archiveAccount)
		})
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", s.postTransaction)
			r.Get("/{id}", s.getTransaction)
			r.Post("/{id}/reverse", s.reverseTransaction)
		})
		r.Route("/tags/{axis}", func(r chi.Router) {
			r.Get("/", s.listTags)
			r.Post("/", s.createTag)
		})
		r.Get("/statements/{type}", s.getStatement)
		r.Post("/scenarios/compare", s.compareScenarios)
		r.Get("/metrics/health", s.getHealth)
		r.Get("/metrics/runway", s.getRunway)
	})
	return r
}
