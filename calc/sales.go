/*
sales.go - Sales Aggregator

PURPOSE:
  Attributes realized sales to roster records. Two disjoint strategies,
  selected per record:

  Exception-role records (roles named by an override directive) sum only the
  entries matching their exact (location, role) pair; the same seller exists
  at two locations, so pooling would double-attribute.

  All other records sum every entry with their role code across all
  locations: the role code identifies the seller company-wide.

NO-DATA SEMANTICS:
  A record with no matching entries keeps a blank realized amount. Downstream
  arithmetic treats blank as zero, but the output cell stays visibly empty.
  An entry whose amount text doesn't parse still marks its key as "has data"
  and contributes zero.
*/
package calc

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/metas/incentive-engine/numfmt"
)

// AggregateSales fills each record's realized amount from the raw sales
// entries. Returns a new slice; the input is not modified.
func AggregateSales(records []Record, entries []SalesEntry, exceptionRoles map[int]struct{}, log *slog.Logger) []Record {
	type locRole struct{ location, role int }

	type sum struct {
		total decimal.Decimal
		seen  bool
	}
	byLocRole := make(map[locRole]*sum)
	byRole := make(map[int]*sum)

	add := func(s *sum, amount string) {
		s.seen = true
		if v, ok := numfmt.Parse(amount); ok {
			s.total = s.total.Add(v)
		}
	}

	for _, e := range entries {
		k := locRole{e.Location, e.RoleCode}
		if byLocRole[k] == nil {
			byLocRole[k] = &sum{}
		}
		add(byLocRole[k], e.Amount)

		if byRole[e.RoleCode] == nil {
			byRole[e.RoleCode] = &sum{}
		}
		add(byRole[e.RoleCode], e.Amount)
	}

	out := append([]Record(nil), records...)
	scoped, pooled := 0, 0
	for i := range out {
		r := &out[i]
		var s *sum
		if _, exception := exceptionRoles[r.RoleCode]; exception {
			s = byLocRole[locRole{r.Location, r.RoleCode}]
			scoped++
		} else {
			s = byRole[r.RoleCode]
			pooled++
		}
		if s == nil || !s.seen {
			r.Realized = ""
			continue
		}
		r.Realized = numfmt.FormatSigned(s.total)
	}

	log.Info("sales aggregated",
		"entries", len(entries), "location_scoped", scoped, "pooled", pooled)
	return out
}
