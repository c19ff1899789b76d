package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cleared-dev/fincore/internal/model"
	"github.com/cleared-dev/fincore/internal/report"
)

const queryDateFormat = "2006-01-02"

func (s *Server) getStatement(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	req := report.Request{
		Statement: model.StatementType(chi.URLParam(r, "type")),
		Period:    period,
		GroupBy:   model.GroupAxis(r.URL.Query().Get("group_by")),
	}
	if tagID := r.URL.Query().Get("filter_tag"); tagID != "" {
		req.Filter = &model.DimensionFilter{
			Axis:  model.GroupAxis(r.URL.Query().Get("filter_axis")),
			TagID: tagID,
		}
	}

	snap, err := s.reports.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshot": snap})
}

func (s *Server) compareScenarios(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Statement model.StatementType `json:"statement"`
		Period    model.Period        `json:"period"`
		Scenarios []model.Scenario    `json:"scenarios"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "malformed compare body")
		return
	}

	comparison, err := s.reports.Compare(r.Context(), report.Request{
		Statement: body.Statement,
		Period:    body.Period,
	}, body.Scenarios...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, ratios, err := s.reports.Health(r.Context(), period, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period": period,
		"health": result,
		"ratios": ratios,
	})
}

func (s *Server) getRunway(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(queryDateFormat, raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "as_of must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	result, err := s.reports.Runway(r.Context(), asOf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runway": result})
}

// parsePeriod reads either month=YYYY-MM or start/end=YYYY-MM-DD from the
// query string.
func parsePeriod(r *http.Request) (model.Period, error) {
	q := r.URL.Query()
	if month := q.Get("month"); month != "" {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return model.Period{}, err
		}
		return model.MonthPeriod(parsed.Year(), parsed.Month()), nil
	}

	start, err := time.Parse(queryDateFormat, q.Get("start"))
	if err != nil {
		return model.Period{}, err
	}
	end, err := time.Parse(queryDateFormat, q.Get("end"))
	if err != nil {
		return model.Period{}, err
	}
	return model.NewPeriod(start, end)
}

func parseIntParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}
