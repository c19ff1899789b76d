package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cleared-dev/fincore/internal/model"
)

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": s.store.Snapshot().Accounts(),
		"version":  s.store.Version(),
	})
}

func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var a model.Account
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed account body")
		return
	}
	if err := s.store.AddAccount(a); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("account created", "id", a.ID, "name", a.Name)
	writeJSON(w, http.StatusCreated, map[string]any{"account": a})
}

func (s *Server) archiveAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseIntParam(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid account ID")
		return
	}
	if err := s.store.SetArchived(accountID, true); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postTransaction(w http.ResponseWriter, r *http.Request) {
	var tx model.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed transaction body")
		return
	}
	posted, err := s.store.AppendTransaction(tx)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("transaction posted", "id", posted.ID, "lines", len(posted.Lines))
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": posted})
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := s.store.Transaction(chi.URLParam(r, "id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

func (s *Server) reverseTransaction(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date time.Time `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed reversal body")
		return
	}
	if body.Date.IsZero() {
		body.Date = time.Now().UTC()
	}
	reversal, err := s.store.Reverse(chi.URLParam(r, "id"), body.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("transaction reversed", "original", chi.URLParam(r, "id"), "reversal", reversal.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": reversal})
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	switch model.GroupAxis(chi.URLParam(r, "axis")) {
	case model.AxisClass:
		writeJSON(w, http.StatusOK, map[string]any{"tags": s.index.ActiveClassTags()})
	case model.AxisCategory:
		writeJSON(w, http.StatusOK, map[string]any{"tags": s.index.ActiveCategoryTags()})
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "axis must be class or category")
	}
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		ParentID string `json:"parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed tag body")
		return
	}

	switch model.GroupAxis(chi.URLParam(r, "axis")) {
	case model.AxisClass:
		tag, err := s.index.CreateClassTag(body.Name, body.ParentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"tag": tag})
	case model.AxisCategory:
		tag, err := s.index.CreateCategoryTag(body.Name, body.ParentID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"tag": tag})
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "axis must be class or category")
	}
}
