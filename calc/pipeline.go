/*
pipeline.go - Stage composition and sheet I/O

PURPOSE:
  Runs one full rebuild of the calc table: read the input sheets, thread the
  record set through each stage explicitly, and overwrite the two output
  sheets only after every stage has completed. A failed run therefore leaves
  the previous output untouched.

STAGE ORDER:
  1. capture previous targets       (carryforward.go, must precede overwrite)
  2. BuildRoster                    (roster.go)
  3. ApplyOverrides/ApplyExclusions (overlay.go)
  4. RestoreTargets                 (carryforward.go)
  5. AggregateSales                 (sales.go)
  6. ComputeRemaining/Progress      (incentive.go)
  7. ComputeDailyTarget             (dailytarget.go, optional)
  8. ComputeIncentives              (incentive.go)
  9. Build/ApplyLocationRollups     (manager.go)
 10. write calc + calc_filial

  Each stage takes the previous stage's output as an explicit input; no stage
  reads or writes shared state.

CONCURRENCY:
  A run is single-threaded and not reentrant-safe against a concurrent run on
  the same store; callers serialize invocations (see api.Handler).
*/
package calc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/metas/incentive-engine/numfmt"
	"github.com/metas/incentive-engine/table"
)

// ErrMissingRosterSource is returned when either roster source sheet is empty
// or absent; without both there is nothing to reconcile.
var ErrMissingRosterSource = errors.New("roster source sheet empty or absent")

// ErrEmptyRoster is returned when the overlay stages leave no records to
// write; the previous output is preserved.
var ErrEmptyRoster = errors.New("no roster records after overlays")

// Pipeline owns one run's dependencies. Zero or one run at a time.
type Pipeline struct {
	Store table.Store
	Log   *slog.Logger

	// EnableDailyTarget adds the recommended-daily-amount column.
	EnableDailyTarget bool

	// Now is the clock for the daily-target stage. Defaults to time.Now.
	Now func() time.Time
}

// Result summarizes a completed run.
type Result struct {
	Records   int
	Locations int
	Calc      table.Table
	Rollup    table.Table
}

// Run executes one full rebuild. The output sheets are written only after
// every stage has completed; any error before that leaves them untouched.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}

	trier, err := p.Store.ReadTable(ctx, SheetRosterTrier)
	if err != nil {
		return nil, err
	}
	sci, err := p.Store.ReadTable(ctx, SheetRosterSCI)
	if err != nil {
		return nil, err
	}
	if trier.IsEmpty() || sci.IsEmpty() {
		return nil, fmt.Errorf("%w: %s=%d rows, %s=%d rows",
			ErrMissingRosterSource, SheetRosterTrier, trier.Len(), SheetRosterSCI, sci.Len())
	}

	// Capture targets before the output sheet is overwritten.
	prev, err := p.Store.ReadTable(ctx, SheetCalc)
	if err != nil {
		return nil, err
	}
	targets := TargetsFromPrevious(prev, log)

	records := BuildRoster(trier, sci, log)

	overridesTbl, err := p.Store.ReadTable(ctx, SheetOverrides)
	if err != nil {
		return nil, err
	}
	overrides, overridesAvailable := readOverrides(overridesTbl, log)
	if overridesAvailable {
		records = ApplyOverrides(records, overrides, log)
	}

	exclusionsTbl, err := p.Store.ReadTable(ctx, SheetExclusions)
	if err != nil {
		return nil, err
	}
	if exclusions, ok := readExclusions(exclusionsTbl, log); ok {
		records = ApplyExclusions(records, exclusions, log)
	}

	records = RestoreTargets(records, targets)

	if len(records) == 0 {
		return nil, ErrEmptyRoster
	}

	salesTbl, err := p.Store.ReadTable(ctx, SheetSales)
	if err != nil {
		return nil, err
	}
	if sales, ok := readSales(salesTbl, log); ok {
		records = AggregateSales(records, sales, ExceptionRoles(overrides), log)
	}

	records = ComputeRemaining(records)
	records = ComputeProgress(records)

	if p.EnableDailyTarget {
		now := time.Now
		if p.Now != nil {
			now = p.Now
		}
		records = ComputeDailyTarget(records, now())
	}

	commissionsTbl, err := p.Store.ReadTable(ctx, SheetCommissions)
	if err != nil {
		return nil, err
	}
	commissions, commissionsAvailable := readCommissions(commissionsTbl, log)
	if commissionsAvailable {
		records = ComputeIncentives(records, commissions, log)
	}

	var rollups []LocationRollup
	metricsTbl, err := p.Store.ReadTable(ctx, SheetMetrics)
	if err != nil {
		return nil, err
	}
	if metrics, ok := readMetrics(metricsTbl, log); ok {
		rollups = BuildLocationRollups(metrics, commissions, log)

		traineesTbl, err := p.Store.ReadTable(ctx, SheetTrainees)
		if err != nil {
			return nil, err
		}
		trainees, _ := readTrainees(traineesTbl, log)
		records = ApplyLocationRollups(records, rollups, trainees, log)
	}

	calcOut := RecordsTable(records, p.EnableDailyTarget)
	if err := p.Store.WriteTable(ctx, SheetCalc, calcOut); err != nil {
		return nil, err
	}

	result := &Result{Records: len(records), Calc: calcOut}
	if rollups != nil {
		rollupOut := RollupTable(rollups)
		if err := p.Store.WriteTable(ctx, SheetRollup, rollupOut); err != nil {
			return nil, err
		}
		result.Locations = len(rollups)
		result.Rollup = rollupOut
	}

	log.Info("pipeline run complete",
		"records", result.Records, "locations", result.Locations)
	return result, nil
}

// =============================================================================
// OUTPUT TABLES
// =============================================================================

// RecordsTable renders the record set as the calc output table.
func RecordsTable(records []Record, includeDaily bool) table.Table {
	cols := []string{
		colID, colLocation, colRole, colPerson,
		"Meta", "Valor Realizado", "Valor Restante", "Progresso",
	}
	if includeDaily {
		cols = append(cols, "Valor Diário Recomendado")
	}
	cols = append(cols,
		"Função", "Premiação Acomul.", "Premiação Paga", "BONUS", "Premiação TOTAL")

	t := table.New(cols...)
	for _, r := range records {
		row := []string{
			r.ID,
			strconv.Itoa(r.Location),
			strconv.Itoa(r.RoleCode),
			r.Name,
			r.Target, r.Realized, r.Remaining, r.Progress,
		}
		if includeDaily {
			row = append(row, r.DailyTarget)
		}
		row = append(row, r.Title, r.Accrued, r.Paid, r.Bonus, r.Total)
		t.Append(row...)
	}
	return t
}

// RollupTable renders the location rollups as their output table.
func RollupTable(rollups []LocationRollup) table.Table {
	t := table.New(colLocation,
		"Pontos Faturamento", "Pontos HB", "Pontos Custo", "Pontos Ticket",
		"Pool Comissão", "Total")
	for _, r := range rollups {
		t.Append(
			strconv.Itoa(r.Location),
			strconv.FormatInt(r.RevenuePoints, 10),
			strconv.FormatInt(r.HBPoints, 10),
			strconv.FormatInt(r.CostPoints, 10),
			strconv.FormatInt(r.TicketPoints, 10),
			numfmt.FormatSigned(r.CommissionPool),
			numfmt.FormatSigned(r.Total),
		)
	}
	return t
}
