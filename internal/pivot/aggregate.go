// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package pivot

import (
	"errors"
	"fmt"
	"io"

	"github.com/netSkope/uptime-pivot-tool/internal/bucket"
	"github.com/netSkope/uptime-pivot-tool/internal/csvio"
	"go.uber.org/zap"
)

// Source yields records in input order alongside their 1-based row numbers.
// Next returns io.EOF after the last record. A Source represents a single
// pass over the input and is not restartable.
type Source interface {
	Next() (csvio.Record, int, error)
}

// Aggregate is the sparse count structure built by one pass: a count per
// (row key, column key) pair, plus the set of column keys observed. Memory
// grows with distinct key combinations, not with input size; very
// high-cardinality grouping fields remain an operational limit.
type Aggregate struct {
	counts   map[Key]map[Key]int
	rowParts map[Key][]string
	colParts map[Key][]string
	Accepted int
	Skipped  int
}

// Run consumes the source in a single streaming pass and returns the
// finished aggregate. Records whose age label is invalid are dropped when
// invalid inclusion is disabled, with one debug-level warning each on the
// diagnostics logger. A missing non-uptime grouping field aborts the run
// with a *FieldError.
func Run(src Source, opts Options, logger *zap.Logger) (*Aggregate, error) {
	agg := &Aggregate{
		counts:   make(map[Key]map[Key]int),
		rowParts: make(map[Key][]string),
		colParts: make(map[Key][]string),
	}
	needsBucket := opts.NeedsBucket()

	for {
		rec, row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		var label string
		if needsBucket {
			raw := rec[opts.TimeField]
			if opts.UptimeAsDays {
				label = bucket.DaysSince(raw, opts.Now)
			} else {
				label = string(bucket.Classify(raw, opts.Now))
			}

			if label == string(bucket.Invalid) && !opts.IncludeInvalid {
				agg.Skipped++
				logger.Debug("Skipping record with invalid start time",
					zap.Int("row", row),
					zap.String("value", raw))
				continue
			}
		}

		rowParts, colParts, err := buildKeys(rec, row, label, opts)
		if err != nil {
			return nil, err
		}
		agg.add(rowParts, colParts)
	}

	return agg, nil
}

func (a *Aggregate) add(rowParts, colParts []string) {
	rk := makeKey(rowParts)
	ck := makeKey(colParts)

	if _, seen := a.rowParts[rk]; !seen {
		a.rowParts[rk] = rowParts
	}
	if _, seen := a.colParts[ck]; !seen {
		a.colParts[ck] = colParts
	}

	byCol := a.counts[rk]
	if byCol == nil {
		byCol = make(map[Key]int)
		a.counts[rk] = byCol
	}
	byCol[ck]++
	a.Accepted++
}

// Count returns the count for one (row key, column key) pair, zero if the
// pair was never observed.
func (a *Aggregate) Count(rk, ck Key) int {
	return a.counts[rk][ck]
}

// RowTotal returns the number of accepted records sharing one row key.
func (a *Aggregate) RowTotal(rk Key) int {
	total := 0
	for _, n := range a.counts[rk] {
		total += n
	}
	return total
}

func (a *Aggregate) rowKeys() []Key {
	keys := make([]Key, 0, len(a.rowParts))
	for k := range a.rowParts {
		keys = append(keys, k)
	}
	return keys
}

// columnKeys returns the column universe: every distinct column key observed
// across all row keys.
func (a *Aggregate) columnKeys() []Key {
	keys := make([]Key, 0, len(a.colParts))
	for k := range a.colParts {
		keys = append(keys, k)
	}
	return keys
}
