// Copyright (c) 2024 Netskope, Inc. All rights reserved.

package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pivot engines.
const (
	EngineMemory = "memory"
	EngineDuckDB = "duckdb"
)

// UptimeField is the pseudo-field name recognized in column field lists.
const UptimeField = "uptime"

// DefaultTimeField is the input column holding epoch-seconds start times.
const DefaultTimeField = "starttime"

// Config holds all configuration for the pivot tool.
type Config struct {
	// I/O
	Input  string
	Output string

	// Grouping
	RowFields    []string
	ColumnFields []string
	TimeField    string

	// Uptime handling
	UptimeAsRow    bool
	UptimeAsDays   bool
	IncludeInvalid bool

	// NoColumns disables column pivoting: group only by rows with a count
	// column. Supported by the duckdb engine.
	NoColumns bool

	// Engine selection: memory (default) or duckdb
	Engine string

	// Modes
	DryRun  bool
	Verbose bool
	Quiet   bool // Suppress the summary printout (useful when run via script)

	// Logging
	LogDir string

	// Optional: upload the output report to S3
	S3Bucket  string
	S3Prefix  string
	AWSRegion string
}

// Load loads configuration from CLI flags, environment variables, and YAML file.
// Priority: CLI flags > environment variables > YAML file > defaults
func Load() (*Config, error) {
	cfg := &Config{}

	// CLI flags
	input := flag.String("input", "", "Input CSV file path")
	output := flag.String("output", "", "Output CSV file path (unless -dry-run)")
	rows := flag.String("rows", "", "Comma-separated fields to use as row keys")
	columns := flag.String("columns", "", "Comma-separated fields to pivot as columns (may include uptime)")
	timeField := flag.String("time-field", "", "Input column holding epoch-seconds start times (default: starttime)")
	uptimeAsRow := flag.Bool("uptime-as-row", false, "Use uptime as a row field instead of a column")
	uptimeAsDays := flag.Bool("uptime-as-days", false, "Use exact number of days instead of bucketed uptime")
	includeInvalid := flag.Bool("include-invalid", false, "Include records with invalid/future start times")
	noColumns := flag.Bool("no-columns", false, "Do not pivot by columns, group only by rows (duckdb engine)")
	engine := flag.String("engine", "", "Pivot engine: memory or duckdb (default: memory)")
	dryRun := flag.Bool("dry-run", false, "Print available CSV fields and exit")
	verbose := flag.Bool("v", false, "Enable verbose diagnostics including per-record warnings")
	quiet := flag.Bool("quiet", false, "Suppress the run summary (useful when run via script)")
	logDir := flag.String("log-dir", "", "Directory for the log file (default: /tmp)")
	s3Bucket := flag.String("s3-bucket", "", "S3 bucket to upload the output report to (optional)")
	s3Prefix := flag.String("s3-prefix", "", "S3 key prefix (default: uptime-pivot)")
	awsRegion := flag.String("aws-region", "", "AWS region for S3 upload")
	configFile := flag.String("config-file", "pivot-config.yaml", "Config file path (default: pivot-config.yaml)")

	flag.Parse()

	// Load from YAML file if it exists
	if *configFile != "" {
		if err := loadFromYAML(cfg, *configFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Override with environment variables
	loadFromEnv(cfg)

	// Override with CLI flags (highest priority)
	if *input != "" {
		cfg.Input = *input
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *rows != "" {
		cfg.RowFields = SplitFields(*rows)
	}
	if *columns != "" {
		cfg.ColumnFields = SplitFields(*columns)
	}
	if *timeField != "" {
		cfg.TimeField = *timeField
	}
	if *uptimeAsRow {
		cfg.UptimeAsRow = true
	}
	if *uptimeAsDays {
		cfg.UptimeAsDays = true
	}
	if *includeInvalid {
		cfg.IncludeInvalid = true
	}
	if *noColumns {
		cfg.NoColumns = true
	}
	if *engine != "" {
		cfg.Engine = *engine
	}
	if *dryRun {
		cfg.DryRun = true
	}
	if *verbose {
		cfg.Verbose = true
	}
	if *quiet {
		cfg.Quiet = true
	}
	if *logDir != "" {
		cfg.LogDir = *logDir
	}
	if *s3Bucket != "" {
		cfg.S3Bucket = *s3Bucket
	}
	if *s3Prefix != "" {
		cfg.S3Prefix = *s3Prefix
	}
	if *awsRegion != "" {
		cfg.AWSRegion = *awsRegion
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.TimeField == "" {
		cfg.TimeField = DefaultTimeField
	}
	if cfg.Engine == "" {
		cfg.Engine = EngineMemory
	}
	if cfg.S3Prefix == "" {
		cfg.S3Prefix = "uptime-pivot"
	}
}

// Validate checks required fields and flag combinations. Mirrors the CLI
// contract: output is required unless dry-run; rows and columns are required
// unless uptime is used as a row field.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}

	if c.DryRun {
		return nil
	}

	if c.Output == "" {
		return fmt.Errorf("output is required (unless using -dry-run)")
	}
	if len(c.RowFields) == 0 && !c.UptimeAsRow {
		return fmt.Errorf("rows is required (unless using -uptime-as-row)")
	}
	if c.NoColumns && len(c.ColumnFields) > 0 {
		return fmt.Errorf("cannot specify both columns and no-columns")
	}
	if len(c.ColumnFields) == 0 && !c.UptimeAsRow && !c.NoColumns {
		return fmt.Errorf("columns is required (unless using -uptime-as-row or -no-columns)")
	}

	switch c.Engine {
	case EngineMemory:
		if c.NoColumns {
			return fmt.Errorf("no-columns requires the duckdb engine")
		}
	case EngineDuckDB:
		if c.UptimeAsRow {
			return fmt.Errorf("uptime-as-row requires the memory engine")
		}
		if c.UptimeAsDays {
			return fmt.Errorf("uptime-as-days requires the memory engine")
		}
		if c.IncludeInvalid {
			return fmt.Errorf("include-invalid requires the memory engine")
		}
		for _, f := range c.ColumnFields {
			if f == UptimeField {
				return fmt.Errorf("the %q pseudo-field requires the memory engine", UptimeField)
			}
		}
	default:
		return fmt.Errorf("unsupported engine: %s (must be %s or %s)", c.Engine, EngineMemory, EngineDuckDB)
	}

	if c.S3Bucket != "" && c.AWSRegion == "" {
		return fmt.Errorf("aws-region is required when s3-bucket is set")
	}

	return nil
}

// SplitFields parses a comma-separated field list, trimming whitespace and
// dropping empty entries.
func SplitFields(raw string) []string {
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// loadFromYAML loads configuration from a YAML file.
func loadFromYAML(cfg *Config, filepath string) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return err
	}

	var yamlCfg struct {
		Input          string   `yaml:"input"`
		Output         string   `yaml:"output"`
		RowFields      []string `yaml:"rows"`
		ColumnFields   []string `yaml:"columns"`
		TimeField      string   `yaml:"time_field"`
		UptimeAsRow    bool     `yaml:"uptime_as_row"`
		UptimeAsDays   bool     `yaml:"uptime_as_days"`
		IncludeInvalid bool     `yaml:"include_invalid"`
		NoColumns      bool     `yaml:"no_columns"`
		Engine         string   `yaml:"engine"`
		Quiet          bool     `yaml:"quiet"`
		LogDir         string   `yaml:"log_dir"`
		S3Bucket       string   `yaml:"s3_bucket"`
		S3Prefix       string   `yaml:"s3_prefix"`
		AWSRegion      string   `yaml:"aws_region"`
	}

	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return err
	}

	if yamlCfg.Input != "" {
		cfg.Input = yamlCfg.Input
	}
	if yamlCfg.Output != "" {
		cfg.Output = yamlCfg.Output
	}
	if len(yamlCfg.RowFields) > 0 {
		cfg.RowFields = yamlCfg.RowFields
	}
	if len(yamlCfg.ColumnFields) > 0 {
		cfg.ColumnFields = yamlCfg.ColumnFields
	}
	if yamlCfg.TimeField != "" {
		cfg.TimeField = yamlCfg.TimeField
	}
	cfg.UptimeAsRow = yamlCfg.UptimeAsRow
	cfg.UptimeAsDays = yamlCfg.UptimeAsDays
	cfg.IncludeInvalid = yamlCfg.IncludeInvalid
	cfg.NoColumns = yamlCfg.NoColumns
	if yamlCfg.Engine != "" {
		cfg.Engine = yamlCfg.Engine
	}
	cfg.Quiet = yamlCfg.Quiet
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.S3Bucket != "" {
		cfg.S3Bucket = yamlCfg.S3Bucket
	}
	if yamlCfg.S3Prefix != "" {
		cfg.S3Prefix = yamlCfg.S3Prefix
	}
	if yamlCfg.AWSRegion != "" {
		cfg.AWSRegion = yamlCfg.AWSRegion
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func loadFromEnv(cfg *Config) {
	if val := os.Getenv("UPTIME_PIVOT_INPUT"); val != "" {
		cfg.Input = val
	}
	if val := os.Getenv("UPTIME_PIVOT_OUTPUT"); val != "" {
		cfg.Output = val
	}
	if val := os.Getenv("UPTIME_PIVOT_ROWS"); val != "" {
		cfg.RowFields = SplitFields(val)
	}
	if val := os.Getenv("UPTIME_PIVOT_COLUMNS"); val != "" {
		cfg.ColumnFields = SplitFields(val)
	}
	if val := os.Getenv("UPTIME_PIVOT_TIME_FIELD"); val != "" {
		cfg.TimeField = val
	}
	if val := os.Getenv("UPTIME_PIVOT_UPTIME_AS_ROW"); val != "" {
		cfg.UptimeAsRow = (val == "true" || val == "1")
	}
	if val := os.Getenv("UPTIME_PIVOT_UPTIME_AS_DAYS"); val != "" {
		cfg.UptimeAsDays = (val == "true" || val == "1")
	}
	if val := os.Getenv("UPTIME_PIVOT_INCLUDE_INVALID"); val != "" {
		cfg.IncludeInvalid = (val == "true" || val == "1")
	}
	if val := os.Getenv("UPTIME_PIVOT_NO_COLUMNS"); val != "" {
		cfg.NoColumns = (val == "true" || val == "1")
	}
	if val := os.Getenv("UPTIME_PIVOT_ENGINE"); val != "" {
		cfg.Engine = val
	}
	if val := os.Getenv("UPTIME_PIVOT_LOG_DIR"); val != "" {
		cfg.LogDir = val
	}
	if val := os.Getenv("UPTIME_PIVOT_S3_BUCKET"); val != "" {
		cfg.S3Bucket = val
	}
	if val := os.Getenv("UPTIME_PIVOT_S3_PREFIX"); val != "" {
		cfg.S3Prefix = val
	}
	if val := os.Getenv("UPTIME_PIVOT_AWS_REGION"); val != "" {
		cfg.AWSRegion = val
	}
}
