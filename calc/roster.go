/*
roster.go - Roster Builder

PURPOSE:
  Joins the two independent employee sources into the normalized record set
  the rest of the pipeline works on. The payroll export knows the role code;
  the HR export knows the location and current position. Neither is complete
  on its own.

JOIN SEMANTICS:
  Inner join on the trimmed, uppercased full name. Employees present in only
  one source are dropped silently, a known data-quality boundary between the
  two systems, not an error.

TITLE FILTER:
  Only the closed set of incentive-eligible titles survives. The title is the
  text after the first "-" in the "Cargo atual" field (or the whole field),
  uppercased and trimmed.

SEE ALSO:
  - sheets.go: key normalization helpers
  - overlay.go: the next stage
*/
package calc

import (
	"log/slog"
	"sort"

	"github.com/metas/incentive-engine/table"
)

// AllowedTitles is the closed set of incentive-eligible job titles.
var AllowedTitles = map[string]struct{}{
	"FARMACEUTICO":         {},
	"OPERADOR DE CAIXA":    {},
	"OPERADORA DE CAIXA":   {},
	"GERENTE":              {},
	"GERENTE FARMACEUTICO": {},
	"PROMOTOR DE VENDAS":   {},
	"SUBGERENTE":           {},
}

// ManagerTitles are the titles whose incentive is replaced by the location
// rollup (see manager.go).
var ManagerTitles = map[string]struct{}{
	"GERENTE":              {},
	"GERENTE FARMACEUTICO": {},
	"SUBGERENTE":           {},
}

// BuildRoster joins the payroll source (Código, Funcionário) with the HR
// source (Nome, Filial, Cargo atual) on normalized name, derives the
// composite identifier, filters to the allowed titles, and sorts by location.
func BuildRoster(trier, sci table.Table, log *slog.Logger) []Record {
	trierCols := trier.Require(colRole, "Funcionário")
	if !trierCols.Available {
		warnUnavailable(log, SheetRosterTrier, trierCols)
		return nil
	}
	sciCols := sci.Require("Nome", colLocation, "Cargo atual")
	if !sciCols.Available {
		warnUnavailable(log, SheetRosterSCI, sciCols)
		return nil
	}

	// Index the HR source by normalized name. First row wins on duplicate
	// names; dropped duplicates are a data-quality boundary.
	type sciRow struct {
		location int
		cargo    string
	}
	byName := make(map[string]sciRow, sciCols.Len())
	for i := 0; i < sciCols.Len(); i++ {
		name := NormalizeName(sciCols.Get(i, "Nome"))
		if name == "" {
			continue
		}
		if _, seen := byName[name]; seen {
			continue
		}
		loc, ok := parseLocation(sciCols.Get(i, colLocation))
		if !ok {
			log.Warn("skipping HR row with bad location",
				"sheet", SheetRosterSCI, "row", i+1)
			continue
		}
		byName[name] = sciRow{location: loc, cargo: sciCols.Get(i, "Cargo atual")}
	}

	var records []Record
	dropped := 0
	for i := 0; i < trierCols.Len(); i++ {
		name := NormalizeName(trierCols.Get(i, "Funcionário"))
		hr, found := byName[name]
		if name == "" || !found {
			dropped++
			continue
		}
		role, ok := parseRole(trierCols.Get(i, colRole))
		if !ok {
			log.Warn("skipping payroll row with bad role code",
				"sheet", SheetRosterTrier, "row", i+1, "name", name)
			continue
		}
		title := extractTitle(hr.cargo)
		if _, allowed := AllowedTitles[title]; !allowed {
			continue
		}
		records = append(records, Record{
			ID:       RecordID(hr.location, role),
			Location: hr.location,
			RoleCode: role,
			Name:     name,
			Title:    title,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Location < records[j].Location
	})

	log.Info("roster built",
		"records", len(records), "unmatched", dropped)
	return records
}

// extractTitle takes the text after the first "-" of a current-position
// field ("12 - Gerente" -> "GERENTE"), or the whole field if no separator.
func extractTitle(cargo string) string {
	for i := 0; i < len(cargo); i++ {
		if cargo[i] == '-' {
			return NormalizeName(cargo[i+1:])
		}
	}
	return NormalizeName(cargo)
}
