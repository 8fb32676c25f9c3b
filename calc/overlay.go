/*
overlay.go - Exception Overlay

PURPOSE:
  Applies the two kinds of manual exception rows operators maintain:

  Override directives duplicate an existing roster record under a new
  identity: the same seller working a second location gets a second row,
  retargeted to that location. Insertion is one-shot: if the identity already
  exists the directive is a logged no-op, which makes repeated application
  idempotent.

  Exclusion directives remove staff absent this period: every record matching
  the directive's (location, name) pair is dropped.

BASE-ROW MATCH:
  An override clones "any" record with its role code. When the role code
  exists at several locations the match is deterministic here: the record
  with the lowest location code wins.

SEE ALSO:
  - sheets.go: directive readers
  - sales.go: ExceptionRoles drives the aggregation split
*/
package calc

import "log/slog"

// ApplyOverrides injects one record per directive whose identity is not yet
// present, cloning the lowest-location record with the same role code.
// Returns a new slice; the input is not modified.
func ApplyOverrides(records []Record, dirs []OverrideDirective, log *slog.Logger) []Record {
	out := append([]Record(nil), records...)

	existing := make(map[string]struct{}, len(out))
	for _, r := range out {
		existing[r.ID] = struct{}{}
	}

	added := 0
	for _, d := range dirs {
		id := d.ID()
		if _, ok := existing[id]; ok {
			log.Info("override identity already present, skipping", "id", id)
			continue
		}

		base, found := baseByRole(out, d.RoleCode)
		if !found {
			log.Warn("no base record for override role code",
				"role", d.RoleCode, "id", id)
			continue
		}

		clone := base
		clone.Location = d.Location
		clone.ID = id
		clone.Exception = true
		out = append(out, clone)
		existing[id] = struct{}{}
		added++
	}

	if len(dirs) > 0 {
		log.Info("overrides applied", "directives", len(dirs), "added", added)
	}
	return out
}

// baseByRole finds the record with the given role code at the lowest
// location; ties go to the earliest record.
func baseByRole(records []Record, role int) (Record, bool) {
	var best Record
	found := false
	for _, r := range records {
		if r.RoleCode != role {
			continue
		}
		if !found || r.Location < best.Location {
			best = r
			found = true
		}
	}
	return best, found
}

// ApplyExclusions removes every record matching a directive's (location,
// normalized name) pair. Returns a new slice; the input is not modified.
func ApplyExclusions(records []Record, dirs []ExclusionDirective, log *slog.Logger) []Record {
	if len(dirs) == 0 {
		return records
	}

	type key struct {
		location int
		name     string
	}
	excluded := make(map[key]struct{}, len(dirs))
	for _, d := range dirs {
		excluded[key{d.Location, d.Name}] = struct{}{}
	}

	out := make([]Record, 0, len(records))
	removed := 0
	for _, r := range records {
		if _, gone := excluded[key{r.Location, r.Name}]; gone {
			removed++
			continue
		}
		out = append(out, r)
	}

	log.Info("exclusions applied",
		"directives", len(dirs), "removed", removed,
		"before", len(records), "after", len(out))
	return out
}

// ExceptionRoles returns the role codes named by override directives. Records
// with these roles aggregate sales per-location instead of pooled.
func ExceptionRoles(dirs []OverrideDirective) map[int]struct{} {
	roles := make(map[int]struct{}, len(dirs))
	for _, d := range dirs {
		roles[d.RoleCode] = struct{}{}
	}
	return roles
}
