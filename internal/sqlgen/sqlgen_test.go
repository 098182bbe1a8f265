// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package sqlgen

import (
	"strings"
	"testing"
)

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "namespace", `"namespace"`},
		{"embedded quote", `weird"name`, `"weird""name"`},
		{"spaces", "pod name", `"pod name"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuoteIdentifier(tt.in); got != tt.want {
				t.Errorf("QuoteIdentifier(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEscapeLiteral(t *testing.T) {
	if got := EscapeLiteral("o'brien"); got != "o''brien" {
		t.Errorf("EscapeLiteral() = %q, want %q", got, "o''brien")
	}
}

func TestReadCSVViewSQL(t *testing.T) {
	sql := ReadCSVViewSQL("/tmp/pods.csv")
	if !strings.Contains(sql, "read_csv_auto('/tmp/pods.csv')") {
		t.Errorf("view SQL should reference the input path, got %q", sql)
	}
	if !strings.Contains(sql, "CREATE VIEW data") {
		t.Errorf("view SQL should create the data view, got %q", sql)
	}
}

func TestDistinctColumnsSQL(t *testing.T) {
	sql := DistinctColumnsSQL([]string{"region", "zone"})

	if !strings.Contains(sql, `"region" || '|' || "zone"`) {
		t.Errorf("multi-field concat missing, got %q", sql)
	}
	if !strings.Contains(sql, `"region" IS NOT NULL AND "zone" IS NOT NULL`) {
		t.Errorf("NULL filters missing, got %q", sql)
	}
	if !strings.Contains(sql, "ORDER BY col_key") {
		t.Errorf("ordering missing, got %q", sql)
	}

	single := DistinctColumnsSQL([]string{"region"})
	if strings.Contains(single, "||") {
		t.Errorf("single field should not concatenate, got %q", single)
	}
}

func TestPivotSQL(t *testing.T) {
	sql := PivotSQL([]string{"namespace"}, []string{"region"}, []string{"us-east", "eu-west"})

	for _, want := range []string{
		`SUM(CASE WHEN ("region") = 'us-east' THEN 1 ELSE 0 END)`,
		`AS "eu-west"`,
		`GROUP BY "namespace"`,
		`ORDER BY "namespace"`,
		"CAST(",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("pivot SQL missing %q, got:\n%s", want, sql)
		}
	}
}

func TestPivotSQL_EscapesValues(t *testing.T) {
	sql := PivotSQL([]string{"ns"}, []string{"region"}, []string{"o'brien"})
	if !strings.Contains(sql, "'o''brien'") {
		t.Errorf("column value literal not escaped, got:\n%s", sql)
	}
}

func TestGroupCountSQL(t *testing.T) {
	sql := GroupCountSQL([]string{"namespace", "podname"})

	for _, want := range []string{
		`SELECT "namespace", "podname", CAST(COUNT(*) AS BIGINT) AS "count"`,
		`GROUP BY "namespace", "podname"`,
		`"namespace" IS NOT NULL AND "podname" IS NOT NULL`,
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("group count SQL missing %q, got:\n%s", want, sql)
		}
	}
}
