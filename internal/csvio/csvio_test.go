// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package csvio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp CSV: %v", err)
	}
	return path
}

func TestReader_StreamsRecords(t *testing.T) {
	path := writeTempCSV(t, "namespace,podname,starttime\ndefault,api,1700000000\nkube-system,dns,1600000000\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	if got := r.Fields(); !reflect.DeepEqual(got, []string{"namespace", "podname", "starttime"}) {
		t.Errorf("Fields() = %v", got)
	}

	rec, row, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if row != 1 {
		t.Errorf("first row number = %d, want 1", row)
	}
	if rec["namespace"] != "default" || rec["podname"] != "api" {
		t.Errorf("first record = %v", rec)
	}

	rec, row, err = r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if row != 2 || rec["namespace"] != "kube-system" {
		t.Errorf("second record = %v (row %d)", rec, row)
	}

	if _, _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after last record = %v, want io.EOF", err)
	}
}

func TestReader_HeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "namespace,starttime\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	if _, _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() on header-only file = %v, want io.EOF", err)
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	path := writeTempCSV(t, "")
	if _, err := Open(path); err == nil {
		t.Error("Open() should fail on an empty file")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Open() should fail on a missing file")
	}
}

func TestReader_RaggedRowFails(t *testing.T) {
	path := writeTempCSV(t, "a,b\n1,2\nonly-one\n")

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer r.Close()

	if _, _, err := r.Next(); err != nil {
		t.Fatalf("first Next() error = %v", err)
	}
	if _, _, err := r.Next(); err == nil {
		t.Error("Next() should fail on a ragged row")
	}
}

func TestFields(t *testing.T) {
	path := writeTempCSV(t, "one,two,three\nx,y,z\n")

	fields, err := Fields(path)
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	if !reflect.DeepEqual(fields, []string{"one", "two", "three"}) {
		t.Errorf("Fields() = %v", fields)
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	header := []string{"namespace", "count"}
	rows := [][]string{{"default", "3"}, {"kube-system", "1"}}

	if err := WriteReport(path, header, rows); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	want := "namespace,count\ndefault,3\nkube-system,1\n"
	if string(data) != want {
		t.Errorf("output = %q, want %q", string(data), want)
	}
}

func TestWriteReport_HeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteReport(path, []string{"uptime", "count"}, nil); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "uptime,count\n" {
		t.Errorf("output = %q, want header only", string(data))
	}
}
