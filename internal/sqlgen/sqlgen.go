// Copyright (c) 2024 Netskope, Inc. All rights reserved.

// Package sqlgen builds the SQL statements used by the DuckDB pivot engine.
// All identifier and literal quoting happens here so the engine itself only
// ever sees finished statements.
package sqlgen

import (
	"fmt"
	"strings"
)

// QuoteIdentifier wraps a field name in double quotes, escaping embedded
// double quotes, so arbitrary CSV header names are safe in SQL.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// EscapeLiteral escapes single quotes in a SQL string literal.
func EscapeLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// ReadCSVViewSQL returns the statement that exposes the input CSV as a view
// named data, using DuckDB's CSV reader.
func ReadCSVViewSQL(path string) string {
	return fmt.Sprintf("CREATE VIEW data AS SELECT * FROM read_csv_auto('%s')",
		EscapeLiteral(path))
}

// columnConcat joins quoted column fields into one pivot key expression,
// separated by the literal pipe used in wide-mode headers.
func columnConcat(columnFields []string) string {
	quoted := make([]string, len(columnFields))
	for i, f := range columnFields {
		quoted[i] = QuoteIdentifier(f)
	}
	if len(quoted) == 1 {
		return quoted[0]
	}
	return strings.Join(quoted, " || '|' || ")
}

func notNullClauses(fields []string) []string {
	clauses := make([]string, len(fields))
	for i, f := range fields {
		clauses[i] = QuoteIdentifier(f) + " IS NOT NULL"
	}
	return clauses
}

// DistinctColumnsSQL returns the query listing every distinct pivot column
// key, NULL-free and sorted, as a single col_key column.
func DistinctColumnsSQL(columnFields []string) string {
	return fmt.Sprintf(`SELECT DISTINCT %s AS col_key
FROM data
WHERE %s
ORDER BY col_key`,
		columnConcat(columnFields),
		strings.Join(notNullClauses(columnFields), " AND "))
}

// PivotSQL returns the wide pivot query: one SUM(CASE ...) column per
// distinct column key, grouped and ordered by the row fields. Sums are cast
// to BIGINT so counts scan cleanly through database/sql.
func PivotSQL(rowFields, columnFields, distinctCols []string) string {
	quotedRows := make([]string, len(rowFields))
	for i, f := range rowFields {
		quotedRows[i] = QuoteIdentifier(f)
	}

	concat := columnConcat(columnFields)
	cases := make([]string, len(distinctCols))
	for i, val := range distinctCols {
		cases[i] = fmt.Sprintf(
			"CAST(SUM(CASE WHEN (%s) = '%s' THEN 1 ELSE 0 END) AS BIGINT) AS %s",
			concat, EscapeLiteral(val), QuoteIdentifier(val))
	}

	rowList := strings.Join(quotedRows, ", ")
	return fmt.Sprintf(`SELECT %s, %s
FROM data
WHERE %s
GROUP BY %s
ORDER BY %s`,
		rowList,
		strings.Join(cases, ", "),
		strings.Join(notNullClauses(rowFields), " AND "),
		rowList,
		rowList)
}

// GroupCountSQL returns the row-only grouping query with a single count
// column, used when no column fields are pivoted.
func GroupCountSQL(rowFields []string) string {
	quotedRows := make([]string, len(rowFields))
	for i, f := range rowFields {
		quotedRows[i] = QuoteIdentifier(f)
	}
	rowList := strings.Join(quotedRows, ", ")

	return fmt.Sprintf(`SELECT %s, CAST(COUNT(*) AS BIGINT) AS "count"
FROM data
WHERE %s
GROUP BY %s
ORDER BY %s`,
		rowList,
		strings.Join(notNullClauses(rowFields), " AND "),
		rowList,
		rowList)
}
