// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Record is one input row represented as field name to raw string value.
type Record map[string]string

// Reader streams records from a CSV file one row at a time. The first line is
// consumed as the header; each subsequent line becomes one Record.
type Reader struct {
	file   *os.File
	cr     *csv.Reader
	fields []string
	row    int
}

// Open opens a CSV file and reads its header.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	cr := csv.NewReader(file)
	header, err := cr.Read()
	if err == io.EOF {
		file.Close()
		return nil, fmt.Errorf("input file %s is empty", path)
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	return &Reader{file: file, cr: cr, fields: header}, nil
}

// Fields returns the header field names in file order.
func (r *Reader) Fields() []string {
	return r.fields
}

// Next returns the next record and its 1-based data row number.
// It returns io.EOF after the last record.
func (r *Reader) Next() (Record, int, error) {
	cells, err := r.cr.Read()
	if err == io.EOF {
		return nil, 0, io.EOF
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV row: %w", err)
	}

	r.row++
	rec := make(Record, len(r.fields))
	for i, name := range r.fields {
		rec[name] = cells[i]
	}
	return rec, r.row, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Fields reads only the header of a CSV file. Used by dry-run mode.
func Fields(path string) ([]string, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Fields(), nil
}
