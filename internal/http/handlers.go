package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/ledger"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/log"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/services"
)

const maxImportBytes = 32 << 20

type handlers struct {
	ledger  *services.LedgerService
	reports *services.ReportService
	logger  *log.Logger
}

// createEntryRequest accepts the amount either as a bare number or as a
// quoted decimal string, matching what clients actually send.
type createEntryRequest struct {
	Kind        core.Kind       `json:"kind"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Category    core.Category   `json:"category"`
	Date        core.Date       `json:"date"`
	Repeat      int             `json:"repeat"`
}

func parseAmount(raw json.RawMessage) (core.Money, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return core.Money{}, fmt.Errorf("amount is required")
	}
	s = strings.Trim(s, `"`)
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

func (h *handlers) createEntries(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid amount: " + err.Error()})
		return
	}

	repeat := req.Repeat
	if repeat == 0 {
		repeat = 1
	}

	in := services.EntryInput{
		Kind:        req.Kind,
		Amount:      amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
	}
	entries, err := h.ledger.CreateEntries(r.Context(), in, repeat)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// listEntries scopes by the year and month query parameters: both set
// lists one month, only year lists one year, neither lists everything.
func (h *handlers) listEntries(w http.ResponseWriter, r *http.Request) {
	year, yearSet, err := queryInt(r, "year")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	month, monthSet, err := queryInt(r, "month")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if monthSet && !yearSet {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "month requires year"})
		return
	}
	if monthSet && (month < 1 || month > 12) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "month must be between 1 and 12"})
		return
	}

	var entries []core.Entry
	switch {
	case monthSet:
		entries = h.ledger.MonthEntries(r.Context(), year, month)
	case yearSet:
		entries = h.ledger.YearEntries(r.Context(), year)
	default:
		entries = h.ledger.AllEntries(r.Context())
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

type updateEntryRequest struct {
	Kind        *core.Kind       `json:"kind"`
	Amount      *json.RawMessage `json:"amount"`
	Description *string          `json:"description"`
	Category    *core.Category   `json:"category"`
	Date        *core.Date       `json:"date"`
}

func (h *handlers) updateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}

	patch := ledger.Patch{
		Kind:        req.Kind,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid amount: " + err.Error()})
			return
		}
		patch.Amount = &amount
	}

	found, err := h.ledger.UpdateEntry(r.Context(), id, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true, "id": id})
}

func (h *handlers) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.ledger.DeleteEntry(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

func (h *handlers) summary(w http.ResponseWriter, r *http.Request) {
	year, yearSet, err := queryInt(r, "year")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	month, monthSet, err := queryInt(r, "month")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if monthSet && !yearSet {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "month requires year"})
		return
	}

	switch {
	case monthSet:
		writeJSON(w, http.StatusOK, toSummaryBody(h.ledger.MonthSummary(r.Context(), year, month)))
	case yearSet:
		writeJSON(w, http.StatusOK, toSummaryBody(h.ledger.YearSummary(r.Context(), year)))
	default:
		writeJSON(w, http.StatusOK, toSummaryBody(h.ledger.OverallSummary(r.Context())))
	}
}

func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	data, err := h.ledger.Export(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *handlers) importSnapshot(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "unable to read body"})
		return
	}
	count, err := h.ledger.Import(r.Context(), raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": true, "count": count})
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Reset(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

func (h *handlers) integrity(w http.ResponseWriter, r *http.Request) {
	problems := h.ledger.Integrity(r.Context())
	if problems == nil {
		problems = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    len(problems) == 0,
		"problems": problems,
	})
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Stats(r.Context()))
}

func (h *handlers) allTimeReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.AllTimeReport(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeReport(w, rep)
}

func (h *handlers) annualReport(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	rep, err := h.reports.AnnualReport(r.Context(), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeReport(w, rep)
}

func (h *handlers) monthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	month, err := pathInt(r, "month")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if month < 1 || month > 12 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "month must be between 1 and 12"})
		return
	}
	rep, err := h.reports.MonthlyReport(r.Context(), year, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeReport(w, rep)
}

func writeReport(w http.ResponseWriter, rep services.RenderedReport) {
	w.Header().Set("Content-Type", rep.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.Content)
}

func queryInt(r *http.Request, name string) (int, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a number", name)
	}
	return v, true, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}
