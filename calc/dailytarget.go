/*
dailytarget.go - Recommended daily amount (optional stage)

Spreads each record's remaining-to-target amount over the days left in the
current month, today inclusive. Blank when the target is missing, already
met, or the month is over. Toggled by configuration; off by default.
*/
package calc

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/metas/incentive-engine/numfmt"
)

// ComputeDailyTarget fills the recommended daily amount cell using now's
// calendar month. Returns a new slice; the input is not modified.
func ComputeDailyTarget(records []Record, now time.Time) []Record {
	daysRemaining := daysLeftInMonth(now)

	out := append([]Record(nil), records...)
	for i := range out {
		r := &out[i]
		r.DailyTarget = ""
		if daysRemaining <= 0 {
			continue
		}
		target, ok := numfmt.Parse(r.Target)
		if !ok || target.IsZero() {
			continue
		}
		realized, ok := numfmt.Parse(r.Realized)
		if !ok {
			realized = decimal.Zero
		}
		remaining := target.Sub(realized)
		if !remaining.IsPositive() {
			continue
		}
		r.DailyTarget = numfmt.FormatSigned(
			remaining.Div(decimal.NewFromInt(int64(daysRemaining))))
	}
	return out
}

// daysLeftInMonth counts the days from now to month end, today inclusive.
func daysLeftInMonth(now time.Time) int {
	endOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, 1, -1)
	return endOfMonth.Day() - now.Day() + 1
}
