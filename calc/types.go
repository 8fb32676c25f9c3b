/*
Package calc implements the commission/incentive reconciliation pipeline.

PURPOSE:
  Rebuilds the canonical per-pay-period calc table from the raw tables the
  external collaborators drop into the backing store: merges the two employee
  rosters, overlays manual exceptions, restores operator-entered targets,
  attributes realized sales, computes tiered incentives, and applies the
  location-level manager rollup.

PIPELINE (in order, each stage a pure function over the previous output):
  BuildRoster -> ApplyOverrides -> ApplyExclusions -> RestoreTargets ->
  AggregateSales -> ComputeRemaining -> ComputeProgress -> ComputeIncentives ->
  BuildLocationRollups + ApplyLocationRollups -> output tables

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: one employee at one location for the period
  - OverrideDirective / ExclusionDirective: manual exception rows
  - SalesEntry / CommissionEntry: raw realized figures
  - LocationMetrics / LocationRollup: branch-level scoring inputs and result

IDENTIFIERS:
  A Record is keyed by "<location>-<role>". The delimiter can appear in
  neither component, so location 41 + role 2 ("41-2") never collides with
  location 4 + role 12 ("4-12").

SEE ALSO:
  - pipeline.go: stage composition and sheet I/O
  - sheets.go: sheet names, column names, typed readers
*/
package calc

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RECORD - One employee-at-location row of the calc table
// =============================================================================

// Record is rebuilt from scratch every run; only Target survives across runs
// (restored by RestoreTargets from the previous output).
type Record struct {
	ID       string // "<location>-<role>"
	Location int
	RoleCode int
	Name     string // trimmed, uppercased
	Title    string // normalized job title, from the allow-list

	// Exception marks a record injected or retargeted by an override
	// directive; its sales are aggregated per-location instead of pooled.
	Exception bool

	// Text cells in localized number format. Blank means "no data", which
	// downstream arithmetic treats as zero but the output keeps visibly empty.
	Target      string
	Realized    string
	Remaining   string
	Progress    string
	DailyTarget string

	Accrued string // raw summed commission, always shown when available
	Paid    string
	Bonus   string
	Total   string
}

// RecordID builds the composite identifier for a location/role pair.
func RecordID(location, role int) string {
	return strconv.Itoa(location) + "-" + strconv.Itoa(role)
}

// =============================================================================
// MANUAL EXCEPTION DIRECTIVES
// =============================================================================

// OverrideDirective duplicates an existing roster record under a new identity
// (same role, different location). Insertion is one-shot: if the target
// identity already exists the directive is skipped.
type OverrideDirective struct {
	Location int
	RoleCode int
	Name     string
}

// ID returns the identity the directive targets.
func (d OverrideDirective) ID() string { return RecordID(d.Location, d.RoleCode) }

// ExclusionDirective removes every record matching (location, name).
type ExclusionDirective struct {
	Location int
	Name     string // trimmed, uppercased
}

// =============================================================================
// RAW FIGURES
// =============================================================================

// SalesEntry is one realized-sales row. Amount stays text; unparsable amounts
// count as zero but still mark the key as "has data".
type SalesEntry struct {
	Location int
	RoleCode int
	Name     string
	Amount   string
}

// CommissionEntry is one raw commission row. Entries sharing a role code are
// summed, never first-wins.
type CommissionEntry struct {
	Location int
	RoleCode int
	Amount   string
}

// =============================================================================
// LOCATION-LEVEL METRICS AND ROLLUP
// =============================================================================

// LocationMetrics carries one branch's actual/target pairs for the period.
// Values stay text; an unparsable pair scores zero points for that component.
type LocationMetrics struct {
	Location int

	RevenueActual string
	RevenueTarget string
	HBActual      string
	HBTarget      string
	CostActual    string
	CostTarget    string
	TicketActual  string
	TicketTarget  string
}

// LocationRollup is the branch-level incentive result: four banded component
// scores plus a share of the branch's commission pool.
type LocationRollup struct {
	Location int

	RevenuePoints int64
	HBPoints      int64
	CostPoints    int64
	TicketPoints  int64

	CommissionPool decimal.Decimal
	Total          decimal.Decimal
}
