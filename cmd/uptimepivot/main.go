// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/netSkope/uptime-pivot-tool/internal/config"
	"github.com/netSkope/uptime-pivot-tool/internal/csvio"
	uplog "github.com/netSkope/uptime-pivot-tool/internal/log"
	"github.com/netSkope/uptime-pivot-tool/internal/pipeline"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Dry run: list the input fields and exit, no aggregation
	if cfg.DryRun {
		fields, err := csvio.Fields(cfg.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read input header: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Available fields in input CSV:")
		for _, field := range fields {
			fmt.Printf("  - %s\n", field)
		}
		return
	}

	// Initialize logger. Verbose runs log debug-level diagnostics to stderr;
	// otherwise logs go to a file so the primary output stays clean.
	logger, err := uplog.NewLogger(cfg.LogDir, "uptimepivot", cfg.Verbose, cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("Starting uptime pivot tool",
		zap.String("input", cfg.Input),
		zap.String("output", cfg.Output),
		zap.String("engine", cfg.Engine),
		zap.Strings("rows", cfg.RowFields),
		zap.Strings("columns", cfg.ColumnFields))

	result, err := pipeline.Run(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Pivot run failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !cfg.Quiet {
		fmt.Printf("\n=== Pivot Summary ===\n")
		fmt.Printf("Input: %s\n", cfg.Input)
		fmt.Printf("Output: %s\n", result.OutputPath)
		fmt.Printf("Engine: %s\n", result.Engine)
		if result.Engine == config.EngineMemory {
			fmt.Printf("Rows read: %d\n", result.RowsRead)
			fmt.Printf("Records accepted: %d\n", result.Accepted)
			fmt.Printf("Records skipped: %d\n", result.Skipped)
		}
		fmt.Printf("Output rows: %d\n", result.OutputRows)
		fmt.Printf("Output columns: %d\n", result.OutputColumns)
		if result.S3Key != "" {
			fmt.Printf("S3: s3://%s/%s\n", cfg.S3Bucket, result.S3Key)
		}
		fmt.Printf("=====================\n")
	}

	logger.Info("Pivot completed successfully",
		zap.Int("output_rows", result.OutputRows),
		zap.Int("skipped", result.Skipped))
}
