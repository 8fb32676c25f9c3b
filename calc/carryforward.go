/*
carryforward.go - Persistence Carry-Forward

PURPOSE:
  The roster is rebuilt from scratch every run, but the target amount is
  operator-entered directly into the output table and must survive the
  rebuild. Before the previous output is overwritten, its (ID, Meta) pairs
  are captured and restored onto the regenerated records.

  Identities that vanished from the roster lose their target; identities new
  this run start blank.
*/
package calc

import (
	"log/slog"

	"github.com/metas/incentive-engine/table"
)

// TargetsFromPrevious extracts the ID -> target map from a previous calc
// output table. Rows with a blank ID or blank target are ignored. Returns an
// empty map when the table is absent or lacks the needed columns.
func TargetsFromPrevious(prev table.Table, log *slog.Logger) map[string]string {
	cols := prev.Require(colID, "Meta")
	if !cols.Available {
		if len(cols.Missing) > 0 {
			log.Warn("previous calc output has no ID/Meta columns, no targets to preserve")
		} else {
			log.Info("no previous calc output, no targets to preserve")
		}
		return map[string]string{}
	}

	targets := make(map[string]string)
	for i := 0; i < cols.Len(); i++ {
		id := cols.Get(i, colID)
		meta := cols.Get(i, "Meta")
		if id != "" && meta != "" {
			targets[id] = meta
		}
	}
	log.Info("targets preserved from previous run", "count", len(targets))
	return targets
}

// RestoreTargets sets each record's target from the carried-forward map,
// blank when the identifier has no prior value. Returns a new slice.
func RestoreTargets(records []Record, targets map[string]string) []Record {
	out := append([]Record(nil), records...)
	for i := range out {
		out[i].Target = targets[out[i].ID]
	}
	return out
}
