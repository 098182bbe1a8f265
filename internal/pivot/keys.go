// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package pivot

import (
	"fmt"
	"strings"

	"github.com/netSkope/uptime-pivot-tool/internal/csvio"
)

// Key is an ordered tuple of field values encoded for use as a map key.
// Components are joined with an ASCII unit separator; the decoded parts are
// kept in side registries on the Aggregate, so the encoding only has to be
// stable, not reversible.
type Key string

const keySep = "\x1f"

func makeKey(parts []string) Key {
	return Key(strings.Join(parts, keySep))
}

// FieldError reports a requested grouping field missing from a record. Field
// lookups that fail are fatal: a partial grouping key would silently misfile
// the record.
type FieldError struct {
	Field string
	Row   int
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q missing at input row %d", e.Field, e.Row)
}

// buildKeys constructs the row and column key tuples for one record. label is
// the derived age label (bucket name or day count); it is only consulted when
// the options reference the uptime pseudo-field. Tuple order always matches
// the order fields were requested.
//
// In uptime-as-row mode the label is appended as the final row component and
// the column key is absent (nil).
func buildKeys(rec csvio.Record, row int, label string, opts Options) (rowParts, colParts []string, err error) {
	rowParts = make([]string, 0, len(opts.RowFields)+1)
	for _, name := range opts.RowFields {
		val, ok := rec[name]
		if !ok {
			return nil, nil, &FieldError{Field: name, Row: row}
		}
		rowParts = append(rowParts, val)
	}

	if opts.UptimeAsRow {
		rowParts = append(rowParts, label)
		return rowParts, nil, nil
	}

	colParts = make([]string, 0, len(opts.ColumnFields))
	for _, name := range opts.ColumnFields {
		if name == UptimeField {
			colParts = append(colParts, label)
			continue
		}
		val, ok := rec[name]
		if !ok {
			return nil, nil, &FieldError{Field: name, Row: row}
		}
		colParts = append(colParts, val)
	}

	return rowParts, colParts, nil
}
