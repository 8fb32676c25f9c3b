/*
sheets.go - Sheet names, column names, and typed readers

PURPOSE:
  Maps the raw tables in the backing store onto the typed inputs the pipeline
  stages consume. Every reader returns its rows plus an availability flag:
  an absent sheet or a sheet missing a required column means "this enrichment
  is not present this run": the stage is skipped with a warning, never fatal.

ROW-LEVEL DEGRADATION:
  Rows whose keys don't normalize (non-numeric location or role code) are
  skipped individually; the rest of the sheet is still used.

SEE ALSO:
  - table/table.go: Columns resolution
  - pipeline.go: where these readers are wired
*/
package calc

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/metas/incentive-engine/table"
)

// Sheet names in the backing store.
const (
	SheetRosterTrier = "users_trier"
	SheetRosterSCI   = "users_sci"
	SheetOverrides   = "2_META"
	SheetExclusions  = "AFASTAMENTOS"
	SheetSales       = "VENDAS_VENDEDOR"
	SheetCommissions = "COMISSOES"
	SheetMetrics     = "VENDAS_FILIAL"
	SheetTrainees    = "TRAINEES"
	SheetCalc        = "calc"
	SheetRollup      = "calc_filial"
)

// Column names shared across sheets.
const (
	colID       = "ID"
	colLocation = "Filial"
	colRole     = "Código"
	colPerson   = "Colaborador"
)

// =============================================================================
// NORMALIZATION HELPERS
// =============================================================================

// NormalizeName trims and uppercases a person name for matching.
func NormalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// parseLocation turns a location label into its integer code, tolerating the
// letter prefix some sources use ("F01" -> 1).
func parseLocation(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseRole turns a role code into an integer, tolerating the trailing ".0"
// spreadsheet serialization artifact ("342.0" -> 342).
func parseRole(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// =============================================================================
// TYPED READERS
// =============================================================================

func readOverrides(t table.Table, log *slog.Logger) ([]OverrideDirective, bool) {
	cols := t.Require(colID, colLocation, colRole, colPerson)
	if !cols.Available {
		warnUnavailable(log, SheetOverrides, cols)
		return nil, false
	}

	var dirs []OverrideDirective
	for i := 0; i < cols.Len(); i++ {
		loc, okLoc := parseLocation(cols.Get(i, colLocation))
		role, okRole := parseRole(cols.Get(i, colRole))
		if !okLoc || !okRole {
			log.Warn("skipping override row with bad keys",
				"sheet", SheetOverrides, "row", i+1)
			continue
		}
		d := OverrideDirective{
			Location: loc,
			RoleCode: role,
			Name:     NormalizeName(cols.Get(i, colPerson)),
		}
		if raw := cols.Get(i, colID); raw != "" && raw != d.ID() {
			log.Warn("override row ID differs from canonical identifier",
				"sheet", SheetOverrides, "row", i+1, "sheet_id", raw, "id", d.ID())
		}
		dirs = append(dirs, d)
	}
	return dirs, true
}

func readExclusions(t table.Table, log *slog.Logger) ([]ExclusionDirective, bool) {
	cols := t.Require(colLocation, colPerson)
	if !cols.Available {
		warnUnavailable(log, SheetExclusions, cols)
		return nil, false
	}

	var dirs []ExclusionDirective
	for i := 0; i < cols.Len(); i++ {
		loc, ok := parseLocation(cols.Get(i, colLocation))
		if !ok {
			log.Warn("skipping exclusion row with bad location",
				"sheet", SheetExclusions, "row", i+1)
			continue
		}
		dirs = append(dirs, ExclusionDirective{
			Location: loc,
			Name:     NormalizeName(cols.Get(i, colPerson)),
		})
	}
	return dirs, true
}

func readSales(t table.Table, log *slog.Logger) ([]SalesEntry, bool) {
	cols := t.Require(colLocation, colRole, "Valor Vendas")
	if !cols.Available {
		warnUnavailable(log, SheetSales, cols)
		return nil, false
	}
	// Seller name is informational; aggregation keys on (location, role).
	nameCol := t.Require("Vendedor")

	var entries []SalesEntry
	for i := 0; i < cols.Len(); i++ {
		loc, okLoc := parseLocation(cols.Get(i, colLocation))
		role, okRole := parseRole(cols.Get(i, colRole))
		if !okLoc || !okRole {
			log.Warn("skipping sales row with bad keys", "sheet", SheetSales, "row", i+1)
			continue
		}
		entries = append(entries, SalesEntry{
			Location: loc,
			RoleCode: role,
			Name:     NormalizeName(nameCol.Get(i, "Vendedor")),
			Amount:   cols.Get(i, "Valor Vendas"),
		})
	}
	return entries, true
}

func readCommissions(t table.Table, log *slog.Logger) ([]CommissionEntry, bool) {
	cols := t.Require(colLocation, colRole, "Valor Comissão")
	if !cols.Available {
		warnUnavailable(log, SheetCommissions, cols)
		return nil, false
	}

	var entries []CommissionEntry
	for i := 0; i < cols.Len(); i++ {
		loc, okLoc := parseLocation(cols.Get(i, colLocation))
		role, okRole := parseRole(cols.Get(i, colRole))
		if !okLoc || !okRole {
			log.Warn("skipping commission row with bad keys",
				"sheet", SheetCommissions, "row", i+1)
			continue
		}
		entries = append(entries, CommissionEntry{
			Location: loc,
			RoleCode: role,
			Amount:   cols.Get(i, "Valor Comissão"),
		})
	}
	return entries, true
}

func readMetrics(t table.Table, log *slog.Logger) ([]LocationMetrics, bool) {
	cols := t.Require(colLocation,
		"Faturamento Total", "Meta Faturamento",
		"Faturamento HB", "Meta HB",
		"Custo Total", "Meta Custo",
		"Ticket Médio", "Meta Ticket")
	if !cols.Available {
		warnUnavailable(log, SheetMetrics, cols)
		return nil, false
	}

	var metrics []LocationMetrics
	for i := 0; i < cols.Len(); i++ {
		loc, ok := parseLocation(cols.Get(i, colLocation))
		if !ok {
			log.Warn("skipping metrics row with bad location",
				"sheet", SheetMetrics, "row", i+1)
			continue
		}
		metrics = append(metrics, LocationMetrics{
			Location:      loc,
			RevenueActual: cols.Get(i, "Faturamento Total"),
			RevenueTarget: cols.Get(i, "Meta Faturamento"),
			HBActual:      cols.Get(i, "Faturamento HB"),
			HBTarget:      cols.Get(i, "Meta HB"),
			CostActual:    cols.Get(i, "Custo Total"),
			CostTarget:    cols.Get(i, "Meta Custo"),
			TicketActual:  cols.Get(i, "Ticket Médio"),
			TicketTarget:  cols.Get(i, "Meta Ticket"),
		})
	}
	return metrics, true
}

func readTrainees(t table.Table, log *slog.Logger) (map[string]struct{}, bool) {
	cols := t.Require(colID)
	if !cols.Available {
		warnUnavailable(log, SheetTrainees, cols)
		return nil, false
	}

	ids := make(map[string]struct{})
	for i := 0; i < cols.Len(); i++ {
		if id := cols.Get(i, colID); id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids, true
}

func warnUnavailable(log *slog.Logger, sheet string, cols table.Columns) {
	if len(cols.Missing) > 0 {
		log.Warn("sheet missing required columns, skipping step",
			"sheet", sheet, "missing", strings.Join(cols.Missing, ", "))
		return
	}
	log.Info("sheet absent or empty, skipping step", "sheet", sheet)
}
