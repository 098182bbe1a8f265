// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package pivot

import (
	"sort"
	"strconv"
	"strings"

	"github.com/netSkope/uptime-pivot-tool/internal/bucket"
)

// ColumnSep joins the components of a multi-field column key when it is
// rendered as a wide-mode header cell.
const ColumnSep = "|"

// Report is a finished table: one header row plus data rows of equal width,
// ready for a CSV writer or any other tabular sink.
type Report struct {
	Header []string
	Rows   [][]string
}

// Shape densifies the aggregate into its output form. Uptime-as-row runs
// produce the flattened shape; everything else produces the wide pivot.
func Shape(agg *Aggregate, opts Options) *Report {
	if opts.UptimeAsRow {
		return flatten(agg, opts)
	}
	return widen(agg, opts)
}

// widen produces the wide pivot: one header cell per column key in the
// universe, one data row per observed row key, zero-filled across the full
// row/column cross product. In bucket mode the uptime slot of the universe is
// densified to the fixed bucket set, so every age bucket gets a column even
// when no record fell into it.
func widen(agg *Aggregate, opts Options) *Report {
	uptimeSlot := opts.uptimeColumnSlot()

	cols, colParts := agg.columnKeys(), agg.colParts
	if uptimeSlot >= 0 && !opts.UptimeAsDays {
		cols, colParts = expandBuckets(agg, opts, uptimeSlot)
	}
	sortKeys(cols, colParts, func(slot int, a, b string) int {
		if slot == uptimeSlot {
			return compareUptime(a, b, opts.UptimeAsDays)
		}
		return strings.Compare(a, b)
	})

	rows := agg.rowKeys()
	sortKeys(rows, agg.rowParts, func(_ int, a, b string) int {
		return strings.Compare(a, b)
	})

	header := make([]string, 0, len(opts.RowFields)+len(cols))
	header = append(header, opts.RowFields...)
	for _, ck := range cols {
		header = append(header, strings.Join(colParts[ck], ColumnSep))
	}

	out := make([][]string, 0, len(rows))
	for _, rk := range rows {
		row := make([]string, 0, len(header))
		row = append(row, agg.rowParts[rk]...)
		for _, ck := range cols {
			row = append(row, strconv.Itoa(agg.Count(rk, ck)))
		}
		out = append(out, row)
	}

	return &Report{Header: header, Rows: out}
}

// flatten produces one row per observed row key with its count. The age label
// occupies the final key component, so buckets that matched no records simply
// never appear; there is no zero fill in this shape.
func flatten(agg *Aggregate, opts Options) *Report {
	uptimeSlot := len(opts.RowFields)

	rows := agg.rowKeys()
	sortKeys(rows, agg.rowParts, func(slot int, a, b string) int {
		if slot == uptimeSlot {
			return compareUptime(a, b, opts.UptimeAsDays)
		}
		return strings.Compare(a, b)
	})

	header := make([]string, 0, len(opts.RowFields)+2)
	header = append(header, opts.RowFields...)
	header = append(header, UptimeField, "count")

	out := make([][]string, 0, len(rows))
	for _, rk := range rows {
		row := make([]string, 0, len(header))
		row = append(row, agg.rowParts[rk]...)
		row = append(row, strconv.Itoa(agg.RowTotal(rk)))
		out = append(out, row)
	}

	return &Report{Header: header, Rows: out}
}

// expandBuckets replaces the uptime slot of the column universe with the
// full fixed bucket set, crossed with every observed combination of the
// other column dimensions. Invalid gets a column only when invalid records
// were retained at all. When uptime is the sole column dimension the bucket
// columns are emitted even for empty input.
func expandBuckets(agg *Aggregate, opts Options, uptimeSlot int) ([]Key, map[Key][]string) {
	buckets := bucket.Order[:len(bucket.Order)-1]
	if opts.IncludeInvalid {
		buckets = bucket.Order
	}

	// Distinct combinations of the non-uptime slots, in observed form.
	var rests [][]string
	seen := make(map[Key]struct{})
	for _, parts := range agg.colParts {
		rest := make([]string, 0, len(parts)-1)
		rest = append(rest, parts[:uptimeSlot]...)
		rest = append(rest, parts[uptimeSlot+1:]...)

		k := makeKey(rest)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rests = append(rests, rest)
	}
	if len(rests) == 0 && len(opts.ColumnFields) == 1 {
		rests = [][]string{nil}
	}

	keys := make([]Key, 0, len(rests)*len(buckets))
	parts := make(map[Key][]string, len(rests)*len(buckets))
	for _, rest := range rests {
		for _, b := range buckets {
			full := make([]string, 0, len(rest)+1)
			full = append(full, rest[:uptimeSlot]...)
			full = append(full, string(b))
			full = append(full, rest[uptimeSlot:]...)

			k := makeKey(full)
			if _, dup := parts[k]; dup {
				continue
			}
			parts[k] = full
			keys = append(keys, k)
		}
	}

	return keys, parts
}

// sortKeys orders keys component-wise using cmp per slot. Key widths are
// fixed within a run; ties on a shared prefix fall back to tuple length.
func sortKeys(keys []Key, parts map[Key][]string, cmp func(slot int, a, b string) int) {
	sort.Slice(keys, func(i, j int) bool {
		pa, pb := parts[keys[i]], parts[keys[j]]
		for s := 0; s < len(pa) && s < len(pb); s++ {
			if c := cmp(s, pa[s], pb[s]); c != 0 {
				return c < 0
			}
		}
		return len(pa) < len(pb)
	})
}

// compareUptime orders age labels canonically: fixed bucket order with
// invalid last, or numeric order in days mode (invalid still last).
func compareUptime(a, b string, asDays bool) int {
	if !asDays {
		return bucket.Rank(a) - bucket.Rank(b)
	}

	ia, errA := strconv.Atoi(a)
	ib, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return ia - ib
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
