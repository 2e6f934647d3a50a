package engine

import (
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"cleanse/internal/lineage"
	"cleanse/pkg/records"
)

// isEmptyRow reports whether every declared field is nil, blank, or
// whitespace-only. With no declared fields, every field of the record is
// checked. Empty rows are dropped before any rule runs.
func isEmptyRow(rec records.Record, declared []string) bool {
	if len(declared) == 0 {
		if len(rec) == 0 {
			return true
		}
		for _, v := range rec {
			if !isBlank(v) {
				return false
			}
		}
		return true
	}
	for _, f := range declared {
		if !isBlank(rec[f]) {
			return false
		}
	}
	return true
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// dedupRows drops intra-batch duplicates with keep-first semantics. The key
// is the xxh3 hash of the configured key fields (all fields when none are
// configured), rendered in a stable field order.
func dedupRows(rows []Row, keys []string) ([]Row, []lineage.Drop) {
	if len(rows) == 0 {
		return rows, nil
	}
	seen := make(map[uint64]struct{}, len(rows))
	out := rows[:0]
	var drops []lineage.Drop
	for _, r := range rows {
		h := hashRow(r.Fields, keys)
		if _, dup := seen[h]; dup {
			drops = append(drops, lineage.Drop{RowID: r.ID, Stage: StageDedup, Reason: ReasonDuplicateRow})
			continue
		}
		seen[h] = struct{}{}
		out = append(out, r)
	}
	return out, drops
}

func hashRow(rec records.Record, keys []string) uint64 {
	fields := keys
	if len(fields) == 0 {
		fields = make([]string, 0, len(rec))
		for k := range rec {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f)
		b.WriteByte('=')
		b.WriteString(lineage.FormatValue(rec[f]))
		b.WriteByte('\x1f')
	}
	return xxh3.HashString(b.String())
}
