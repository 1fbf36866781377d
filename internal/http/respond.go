package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/aggregate"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

func writeNotFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: msg})
}

// writeError maps domain errors onto status codes: validation problems
// are the caller's fault, an empty report scope is a 404, storage
// failures are 500s.
func (h *handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Problems: verr.Problems})
		return
	}
	if isEntryValidation(err) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var esc *core.EmptyScopeError
	if errors.As(err, &esc) {
		writeNotFound(w, err.Error())
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		log.FieldPath, r.URL.Path,
		log.FieldError, err.Error())
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func isEntryValidation(err error) bool {
	for _, sentinel := range []error{
		core.ErrEmptyID,
		core.ErrInvalidKind,
		core.ErrInvalidAmount,
		core.ErrInvalidCategory,
		core.ErrInvalidDate,
		core.ErrDescriptionTooLong,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// summaryBody is the wire shape of an aggregate summary; amounts are
// decimal numbers, averages plain floats.
type summaryBody struct {
	TotalInflows   core.Money `json:"totalInflows"`
	TotalOutflows  core.Money `json:"totalOutflows"`
	Balance        core.Money `json:"balance"`
	Count          int        `json:"count"`
	InflowCount    int        `json:"inflowCount"`
	OutflowCount   int        `json:"outflowCount"`
	AverageInflow  float64    `json:"averageInflow"`
	AverageOutflow float64    `json:"averageOutflow"`
}

func toSummaryBody(s aggregate.Summary) summaryBody {
	return summaryBody{
		TotalInflows:   s.TotalInflows,
		TotalOutflows:  s.TotalOutflows,
		Balance:        s.Balance,
		Count:          s.Count,
		InflowCount:    s.InflowCount,
		OutflowCount:   s.OutflowCount,
		AverageInflow:  s.AverageInflow(),
		AverageOutflow: s.AverageOutflow(),
	}
}
