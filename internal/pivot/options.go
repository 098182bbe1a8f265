// Copyright (c) 2024 Netskope, Inc. All rights reserved.

// Package pivot implements the aggregation core: age classification of input
// records, grouping-key construction, sparse counting, and shaping of the
// final report as either a wide pivot table or a flattened summary.
package pivot

import "time"

// UptimeField is the pseudo-field name that stands for the derived age label
// when it appears in a column field list. It never reads an input column of
// that name; the value is computed from the configured time field.
const UptimeField = "uptime"

// Options configures one aggregation pass. Now is pinned once per run so all
// records are classified against the same reference instant.
type Options struct {
	RowFields      []string
	ColumnFields   []string
	TimeField      string
	UptimeAsRow    bool
	UptimeAsDays   bool
	IncludeInvalid bool
	Now            time.Time
}

// NeedsBucket reports whether the pass derives an age label at all. Records
// are only classified (and potentially skipped as invalid) when the label is
// actually used as a grouping dimension.
func (o Options) NeedsBucket() bool {
	if o.UptimeAsRow {
		return true
	}
	for _, f := range o.ColumnFields {
		if f == UptimeField {
			return true
		}
	}
	return false
}

// uptimeColumnSlot returns the index of the uptime pseudo-field within
// ColumnFields, or -1 if absent.
func (o Options) uptimeColumnSlot() int {
	for i, f := range o.ColumnFields {
		if f == UptimeField {
			return i
		}
	}
	return -1
}
