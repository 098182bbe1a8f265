// Copyright (c) 2024 Netskope, Inc. All rights reserved.

// Package pipeline wires one batch run together: input reading, engine
// selection, report writing, and the optional S3 upload.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/netSkope/uptime-pivot-tool/internal/config"
	"github.com/netSkope/uptime-pivot-tool/internal/csvio"
	"github.com/netSkope/uptime-pivot-tool/internal/pivot"
	"github.com/netSkope/uptime-pivot-tool/internal/s3"
	"github.com/netSkope/uptime-pivot-tool/internal/sqlgen"
	"github.com/netSkope/uptime-pivot-tool/internal/store"
	"go.uber.org/zap"
)

// Result summarises one completed run.
type Result struct {
	Engine        string
	RowsRead      int
	Accepted      int
	Skipped       int
	OutputRows    int
	OutputColumns int
	OutputPath    string
	S3Key         string
}

// Run executes the configured pivot end to end: aggregate, shape, write the
// output CSV, and upload it to S3 when a bucket is configured.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Result, error) {
	res := &Result{Engine: cfg.Engine, OutputPath: cfg.Output}

	var report *pivot.Report
	var err error
	switch cfg.Engine {
	case config.EngineDuckDB:
		report, err = runDuckDB(cfg, logger)
	default:
		report, err = runMemory(cfg, logger, res)
	}
	if err != nil {
		return nil, err
	}

	if err := csvio.WriteReport(cfg.Output, report.Header, report.Rows); err != nil {
		return nil, err
	}
	res.OutputRows = len(report.Rows)
	res.OutputColumns = len(report.Header)

	logger.Info("Report written",
		zap.String("output", cfg.Output),
		zap.Int("rows", res.OutputRows),
		zap.Int("columns", res.OutputColumns))

	if cfg.S3Bucket != "" {
		uploader, err := s3.NewUploader(ctx, cfg.S3Bucket, cfg.AWSRegion, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 uploader: %w", err)
		}

		s3Key := fmt.Sprintf("%s/%s", cfg.S3Prefix, filepath.Base(cfg.Output))
		if err := uploader.UploadFileWithRetry(ctx, cfg.Output, s3Key); err != nil {
			return nil, fmt.Errorf("failed to upload report to S3: %w", err)
		}
		res.S3Key = s3Key
	}

	return res, nil
}

// runMemory is the streaming aggregation path: one pass over the input,
// sparse counting, then densification into the output shape.
func runMemory(cfg *config.Config, logger *zap.Logger, res *Result) (*pivot.Report, error) {
	reader, err := csvio.Open(cfg.Input)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	opts := pivot.Options{
		RowFields:      cfg.RowFields,
		ColumnFields:   cfg.ColumnFields,
		TimeField:      cfg.TimeField,
		UptimeAsRow:    cfg.UptimeAsRow,
		UptimeAsDays:   cfg.UptimeAsDays,
		IncludeInvalid: cfg.IncludeInvalid,
		Now:            time.Now().UTC(),
	}

	if err := validateSchema(reader.Fields(), opts); err != nil {
		return nil, err
	}

	agg, err := pivot.Run(reader, opts, logger)
	if err != nil {
		return nil, err
	}

	res.Accepted = agg.Accepted
	res.Skipped = agg.Skipped
	res.RowsRead = agg.Accepted + agg.Skipped

	logger.Info("Aggregation pass complete",
		zap.Int("accepted", agg.Accepted),
		zap.Int("skipped", agg.Skipped))

	return pivot.Shape(agg, opts), nil
}

// runDuckDB is the SQL pivot path: the input CSV becomes an in-memory DuckDB
// view, the distinct column keys are scanned, and a SUM(CASE ...) query
// produces the already-dense table. The uptime pseudo-field is rejected at
// configuration time for this engine.
func runDuckDB(cfg *config.Config, logger *zap.Logger) (*pivot.Report, error) {
	fields, err := csvio.Fields(cfg.Input)
	if err != nil {
		return nil, err
	}
	if err := validateSchema(fields, pivot.Options{
		RowFields:    cfg.RowFields,
		ColumnFields: cfg.ColumnFields,
		TimeField:    cfg.TimeField,
	}); err != nil {
		return nil, err
	}

	client, err := store.NewClient(0)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	if err := client.Exec(sqlgen.ReadCSVViewSQL(cfg.Input)); err != nil {
		return nil, fmt.Errorf("failed to load input into duckdb: %w", err)
	}

	if cfg.NoColumns {
		header, rows, err := client.QueryStrings(sqlgen.GroupCountSQL(cfg.RowFields))
		if err != nil {
			return nil, err
		}
		return &pivot.Report{Header: header, Rows: rows}, nil
	}

	_, distRows, err := client.QueryStrings(sqlgen.DistinctColumnsSQL(cfg.ColumnFields))
	if err != nil {
		return nil, err
	}

	distinct := make([]string, 0, len(distRows))
	for _, r := range distRows {
		distinct = append(distinct, r[0])
	}

	if len(distinct) == 0 {
		logger.Warn("No distinct columns found to pivot on")
		return &pivot.Report{Header: cfg.RowFields}, nil
	}

	header, rows, err := client.QueryStrings(sqlgen.PivotSQL(cfg.RowFields, cfg.ColumnFields, distinct))
	if err != nil {
		return nil, err
	}

	return &pivot.Report{Header: header, Rows: rows}, nil
}

// validateSchema checks every requested field against the input header once,
// before any aggregation, so bad field names fail fast instead of at some
// arbitrary record.
func validateSchema(fields []string, opts pivot.Options) error {
	have := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		have[f] = struct{}{}
	}

	for _, f := range opts.RowFields {
		if _, ok := have[f]; !ok {
			return fmt.Errorf("row field %q not found in input header", f)
		}
	}
	for _, f := range opts.ColumnFields {
		if f == pivot.UptimeField {
			continue
		}
		if _, ok := have[f]; !ok {
			return fmt.Errorf("column field %q not found in input header", f)
		}
	}

	if opts.NeedsBucket() {
		if _, ok := have[opts.TimeField]; !ok {
			return fmt.Errorf("time field %q not found in input header (required for uptime)", opts.TimeField)
		}
	}

	return nil
}
