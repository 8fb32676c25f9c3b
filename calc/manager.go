/*
manager.go - Manager Override Layer

PURPOSE:
  Managers are not paid on their individual figures: each location earns one
  aggregate incentive from branch-level metrics, and that amount lands on the
  manager-tier records of the location.

LOCATION SCORING:
  Four components (total revenue, HB revenue, cost, average ticket) are
  scored independently from their percentage of target:
      >= 104%  300 points
      >= 102%  250 points
      >= 100%  200 points
      below    0
  Cost attainment is inverted (target/actual): under budget scores.
  The fifth component is a share of the location's summed commissions:
  10% when the location met 100% of its revenue target, 5% otherwise.
  A component with missing or unparsable figures scores zero.

APPLICATION:
  Manager-tier titles (not in the trainee set): Total is REPLACED by the
  location total; paid and bonus cells are blanked. The accumulated
  commission cell stays visible.
  Trainee identifiers (regardless of title): the location total is ADDED to
  the individual-phase total; paid and bonus are untouched.

  This is the only merge point between location-level and individual-level
  results, applied via a map keyed by location code.

SEE ALSO:
  - sheets.go: metrics and trainee readers
  - incentive.go: the individual phase this layer supersedes
*/
package calc

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/metas/incentive-engine/numfmt"
)

// Component score bands, percentage-of-target to points.
var scoreBands = []struct {
	threshold decimal.Decimal
	points    int64
}{
	{decimal.RequireFromString("1.04"), 300},
	{decimal.RequireFromString("1.02"), 250},
	{decimal.RequireFromString("1.00"), 200},
}

// Commission pool shares, keyed to revenue attainment.
var (
	poolShareMet    = decimal.RequireFromString("0.10")
	poolShareMissed = decimal.RequireFromString("0.05")
)

// BuildLocationRollups scores each location's metrics and commission pool.
// Result is sorted by location code.
func BuildLocationRollups(metrics []LocationMetrics, commissions []CommissionEntry, log *slog.Logger) []LocationRollup {
	poolByLocation := make(map[int]decimal.Decimal)
	for _, e := range commissions {
		if v, ok := numfmt.Parse(e.Amount); ok {
			poolByLocation[e.Location] = poolByLocation[e.Location].Add(v)
		}
	}

	rollups := make([]LocationRollup, 0, len(metrics))
	for _, m := range metrics {
		revenueAttainment, revenueOK := attainment(m.RevenueActual, m.RevenueTarget)

		r := LocationRollup{Location: m.Location}
		if revenueOK {
			r.RevenuePoints = bandPoints(revenueAttainment)
		}
		if pct, ok := attainment(m.HBActual, m.HBTarget); ok {
			r.HBPoints = bandPoints(pct)
		}
		if pct, ok := attainment(m.CostTarget, m.CostActual); ok { // inverted
			r.CostPoints = bandPoints(pct)
		}
		if pct, ok := attainment(m.TicketActual, m.TicketTarget); ok {
			r.TicketPoints = bandPoints(pct)
		}

		share := poolShareMissed
		if revenueOK && revenueAttainment.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			share = poolShareMet
		}
		r.CommissionPool = poolByLocation[m.Location].Mul(share).Round(2)

		points := r.RevenuePoints + r.HBPoints + r.CostPoints + r.TicketPoints
		r.Total = decimal.NewFromInt(points).Add(r.CommissionPool)
		rollups = append(rollups, r)
	}

	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Location < rollups[j].Location
	})
	log.Info("location rollups built", "locations", len(rollups))
	return rollups
}

// attainment parses numerator/denominator text and returns their ratio.
func attainment(num, den string) (decimal.Decimal, bool) {
	n, okN := numfmt.Parse(num)
	d, okD := numfmt.Parse(den)
	if !okN || !okD || d.IsZero() {
		return decimal.Zero, false
	}
	return n.Div(d), true
}

// bandPoints maps an attainment ratio to its component score.
func bandPoints(pct decimal.Decimal) int64 {
	for _, band := range scoreBands {
		if pct.GreaterThanOrEqual(band.threshold) {
			return band.points
		}
	}
	return 0
}

// ApplyLocationRollups overlays the location totals onto individual records.
// Returns a new slice; the input is not modified.
func ApplyLocationRollups(records []Record, rollups []LocationRollup, trainees map[string]struct{}, log *slog.Logger) []Record {
	byLocation := make(map[int]LocationRollup, len(rollups))
	for _, r := range rollups {
		byLocation[r.Location] = r
	}

	out := append([]Record(nil), records...)
	replaced, boosted := 0, 0
	for i := range out {
		r := &out[i]
		rollup, ok := byLocation[r.Location]
		if !ok {
			continue
		}

		if _, trainee := trainees[r.ID]; trainee {
			own, ok := numfmt.Parse(r.Total)
			if !ok {
				own = decimal.Zero
			}
			r.Total = numfmt.FormatSigned(own.Add(rollup.Total))
			boosted++
			continue
		}

		if _, manager := ManagerTitles[r.Title]; manager {
			r.Total = numfmt.FormatSigned(rollup.Total)
			r.Paid = ""
			r.Bonus = ""
			replaced++
		}
	}

	log.Info("location rollups applied", "managers", replaced, "trainees", boosted)
	return out
}
