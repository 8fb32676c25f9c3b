/*
handlers.go - HTTP handler implementations

PURPOSE:
  Thin adapters between the HTTP surface and the store/pipeline. Handlers do
  no reconciliation logic of their own.

RUN SERIALIZATION:
  A pipeline run is not reentrant-safe against a concurrent run on the same
  store, so RunPipeline holds a mutex: a second POST while one is in flight
  gets 409.

SEE ALSO:
  - server.go: route wiring
  - calc/pipeline.go: what a run does
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/metas/incentive-engine/calc"
	"github.com/metas/incentive-engine/table"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    table.Store
	Pipeline *calc.Pipeline
	Log      *slog.Logger

	runMu sync.Mutex
}

// NewHandler creates a handler around the given store and pipeline.
func NewHandler(store table.Store, pipeline *calc.Pipeline, log *slog.Logger) *Handler {
	return &Handler{Store: store, Pipeline: pipeline, Log: log}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSheet returns any sheet by name. Absent sheets read as empty tables.
func (h *Handler) GetSheet(w http.ResponseWriter, r *http.Request) {
	h.readSheet(w, r, chi.URLParam(r, "name"))
}

// PutSheet overwrites a sheet with the uploaded table. This is the boundary
// where the report processors hand their flat tables in.
func (h *Handler) PutSheet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var dto TableDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid table payload: "+err.Error())
		return
	}
	if len(dto.Columns) == 0 {
		writeError(w, http.StatusBadRequest, "table has no columns")
		return
	}

	t := table.New(dto.Columns...)
	for _, row := range dto.Rows {
		t.Append(row...)
	}

	if err := h.Store.WriteTable(r.Context(), name, t); err != nil {
		h.Log.Error("sheet write failed", "sheet", name, "error", err)
		writeError(w, http.StatusInternalServerError, "write failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rows": t.Len()})
}

// RunPipeline executes one full reconciliation run.
func (h *Handler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	if !h.runMu.TryLock() {
		writeError(w, http.StatusConflict, "a run is already in progress")
		return
	}
	defer h.runMu.Unlock()

	start := time.Now()
	res, err := h.Pipeline.Run(r.Context())
	if err != nil {
		if errors.Is(err, calc.ErrMissingRosterSource) || errors.Is(err, calc.ErrEmptyRoster) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.Log.Error("pipeline run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "run failed")
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Records:    res.Records,
		Locations:  res.Locations,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

// GetCalc returns the calc output table.
func (h *Handler) GetCalc(w http.ResponseWriter, r *http.Request) {
	h.readSheet(w, r, calc.SheetCalc)
}

// GetRollup returns the location rollup output table.
func (h *Handler) GetRollup(w http.ResponseWriter, r *http.Request) {
	h.readSheet(w, r, calc.SheetRollup)
}

func (h *Handler) readSheet(w http.ResponseWriter, r *http.Request, name string) {
	t, err := h.Store.ReadTable(r.Context(), name)
	if err != nil {
		h.Log.Error("sheet read failed", "sheet", name, "error", err)
		writeError(w, http.StatusInternalServerError, "read failed")
		return
	}
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	cols := t.Columns
	if cols == nil {
		cols = []string{}
	}
	writeJSON(w, http.StatusOK, TableDTO{Columns: cols, Rows: rows})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
