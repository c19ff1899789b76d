package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cleared-dev/fincore/internal/dimension"
	"github.com/cleared-dev/fincore/internal/ledger"
	"github.com/cleared-dev/fincore/internal/scenario"
	"github.com/cleared-dev/fincore/internal/statement"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// writeError maps domain errors onto HTTP statuses. Validation failures are
// the caller's fault; reconciliation failures and timeouts get their own
// statuses so clients can tell them apart from crashes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrUnknownTransaction),
		errors.Is(err, dimension.ErrUnknownTag):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledger.ErrImbalancedTransaction),
		errors.Is(err, ledger.ErrUnknownAccount),
		errors.Is(err, ledger.ErrArchivedAccount),
		errors.Is(err, ledger.ErrDuplicateAccount),
		errors.Is(err, ledger.ErrAccountReferenced),
		errors.Is(err, ledger.ErrEmptyTransaction),
		errors.Is(err, ledger.ErrAmountPrecision),
		errors.Is(err, dimension.ErrCycle),
		errors.Is(err, dimension.ErrArchivedTag),
		errors.Is(err, statement.ErrUnsupportedDimension),
		errors.Is(err, statement.ErrUnknownStatement),
		errors.Is(err, scenario.ErrMissingScenarioID),
		errors.Is(err, scenario.ErrDuplicateScenario),
		errors.Is(err, scenario.ErrBadAdjustment):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, statement.ErrReconciliation):
		writeJSONError(w, http.StatusUnprocessableEntity, "reconciliation_failed", err.Error())
	case errors.Is(err, statement.ErrComputationTimeout):
		writeJSONError(w, http.StatusGatewayTimeout, "timeout", err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}
