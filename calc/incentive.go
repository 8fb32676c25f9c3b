/*
incentive.go - Individual incentive calculation

PURPOSE:
  Computes the four incentive cells of each record from its target, realized
  amount, and the raw commission pool for its role code, plus the derived
  progress and remaining-to-target cells.

COMMISSION AGGREGATION:
  Raw commission entries sharing a role code are summed, never first-wins.

PAYOUT TIERS (progress = realized / target):
  < 0.80          half the commission
  >= 0.80         full commission
  [1.05, 1.10)    +75 bonus
  >= 1.10         +150 bonus

  A zero bonus renders blank, not "0,00". The accumulated cell always shows
  the raw summed commission when available, regardless of tiers; it stays
  visible even for managers, whose other three cells the rollup later
  replaces.

FAILURE POLICY:
  A missing or unparsable target/commission short-circuits that record to
  blank derived cells; the batch never aborts.

SEE ALSO:
  - manager.go: location-level layer that overwrites manager totals
*/
package calc

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/metas/incentive-engine/numfmt"
)

// Payout tier boundaries and bonus values.
var (
	halfPayBelow   = decimal.RequireFromString("0.80")
	bonusLowerBand = decimal.RequireFromString("1.05")
	bonusUpperBand = decimal.RequireFromString("1.10")
	bonusLower     = decimal.NewFromInt(75)
	bonusUpper     = decimal.NewFromInt(150)
	half           = decimal.RequireFromString("0.5")
)

// ComputeIncentives fills the accumulated/paid/bonus/total cells from the
// commission entries. Returns a new slice; the input is not modified.
func ComputeIncentives(records []Record, entries []CommissionEntry, log *slog.Logger) []Record {
	type sum struct {
		total decimal.Decimal
		seen  bool
	}
	byRole := make(map[int]*sum)
	for _, e := range entries {
		s := byRole[e.RoleCode]
		if s == nil {
			s = &sum{}
			byRole[e.RoleCode] = s
		}
		s.seen = true
		if v, ok := numfmt.Parse(e.Amount); ok {
			s.total = s.total.Add(v)
		}
	}

	out := append([]Record(nil), records...)
	for i := range out {
		r := &out[i]
		r.Accrued, r.Paid, r.Bonus, r.Total = "", "", "", ""

		comm, hasComm := byRole[r.RoleCode], false
		if comm != nil && comm.seen {
			hasComm = true
			r.Accrued = numfmt.FormatSigned(comm.total)
		}

		target, okTarget := numfmt.Parse(r.Target)
		if !okTarget || target.IsZero() || !hasComm {
			continue
		}
		realized, okRealized := numfmt.Parse(r.Realized)
		if !okRealized {
			realized = decimal.Zero
		}

		progress := realized.Div(target)

		paid := comm.total
		if progress.LessThan(halfPayBelow) {
			paid = comm.total.Mul(half)
		}
		r.Paid = numfmt.FormatSigned(paid)

		bonus := decimal.Zero
		switch {
		case progress.GreaterThanOrEqual(bonusUpperBand):
			bonus = bonusUpper
		case progress.GreaterThanOrEqual(bonusLowerBand):
			bonus = bonusLower
		}
		if bonus.IsPositive() {
			r.Bonus = numfmt.FormatSigned(bonus)
		}

		r.Total = numfmt.FormatSigned(paid.Add(bonus))
	}

	log.Info("incentives computed", "commission_roles", len(byRole))
	return out
}

// ComputeRemaining fills the remaining-to-target cell: target − realized,
// parenthesized when negative, blank when the target is missing.
func ComputeRemaining(records []Record) []Record {
	out := append([]Record(nil), records...)
	for i := range out {
		r := &out[i]
		target, ok := numfmt.Parse(r.Target)
		if !ok {
			r.Remaining = ""
			continue
		}
		realized, ok := numfmt.Parse(r.Realized)
		if !ok {
			realized = decimal.Zero
		}
		r.Remaining = numfmt.Parenthesize(target.Sub(realized))
	}
	return out
}

// ComputeProgress fills the progress cell: (realized/target)×100 as "NN,DD%",
// blank when the target is missing or zero.
func ComputeProgress(records []Record) []Record {
	out := append([]Record(nil), records...)
	for i := range out {
		r := &out[i]
		target, ok := numfmt.Parse(r.Target)
		if !ok || target.IsZero() {
			r.Progress = ""
			continue
		}
		realized, ok := numfmt.Parse(r.Realized)
		if !ok {
			realized = decimal.Zero
		}
		r.Progress = numfmt.FormatPercent(realized.Div(target).Mul(decimal.NewFromInt(100)))
	}
	return out
}
