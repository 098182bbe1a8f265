// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package pivot

import (
	"errors"
	"io"
	"testing"

	"github.com/netSkope/uptime-pivot-tool/internal/csvio"
)

// sliceSource yields records from a slice, numbering them from 1.
type sliceSource struct {
	recs []csvio.Record
	next int
}

func (s *sliceSource) Next() (csvio.Record, int, error) {
	if s.next >= len(s.recs) {
		return nil, 0, io.EOF
	}
	rec := s.recs[s.next]
	s.next++
	return rec, s.next, nil
}

func TestBuildKeys_OrderMatchesRequest(t *testing.T) {
	rec := csvio.Record{"namespace": "kube-system", "podname": "dns", "region": "us-east"}
	opts := Options{
		RowFields:    []string{"podname", "namespace"},
		ColumnFields: []string{"region"},
	}

	rowParts, colParts, err := buildKeys(rec, 1, "", opts)
	if err != nil {
		t.Fatalf("buildKeys() error = %v", err)
	}

	if len(rowParts) != 2 || rowParts[0] != "dns" || rowParts[1] != "kube-system" {
		t.Errorf("row parts = %v, want [dns kube-system]", rowParts)
	}
	if len(colParts) != 1 || colParts[0] != "us-east" {
		t.Errorf("col parts = %v, want [us-east]", colParts)
	}
}

func TestBuildKeys_UptimeColumnSlot(t *testing.T) {
	rec := csvio.Record{"namespace": "default", "region": "eu-west"}
	opts := Options{
		RowFields:    []string{"namespace"},
		ColumnFields: []string{UptimeField, "region"},
	}

	_, colParts, err := buildKeys(rec, 3, "0-3 months", opts)
	if err != nil {
		t.Fatalf("buildKeys() error = %v", err)
	}

	if len(colParts) != 2 || colParts[0] != "0-3 months" || colParts[1] != "eu-west" {
		t.Errorf("col parts = %v, want label in requested slot", colParts)
	}
}

func TestBuildKeys_UptimeAsRowAppendsLabel(t *testing.T) {
	rec := csvio.Record{"namespace": "default"}
	opts := Options{
		RowFields:   []string{"namespace"},
		UptimeAsRow: true,
	}

	rowParts, colParts, err := buildKeys(rec, 1, "1-2 years", opts)
	if err != nil {
		t.Fatalf("buildKeys() error = %v", err)
	}

	if len(rowParts) != 2 || rowParts[1] != "1-2 years" {
		t.Errorf("row parts = %v, want label appended last", rowParts)
	}
	if colParts != nil {
		t.Errorf("col parts = %v, want nil in flattened mode", colParts)
	}
}

func TestBuildKeys_MissingFieldIsFatal(t *testing.T) {
	rec := csvio.Record{"namespace": "default"}

	tests := []struct {
		name string
		opts Options
	}{
		{"missing row field", Options{RowFields: []string{"cluster"}}},
		{"missing column field", Options{
			RowFields:    []string{"namespace"},
			ColumnFields: []string{"cluster"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := buildKeys(rec, 42, "", tt.opts)
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("buildKeys() error = %v, want *FieldError", err)
			}
			if fe.Field != "cluster" || fe.Row != 42 {
				t.Errorf("FieldError = {%q, %d}, want {cluster, 42}", fe.Field, fe.Row)
			}
		})
	}
}
