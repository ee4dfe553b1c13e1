package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-dbinfo/export"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// DefaultConfigFile is read from the working directory when present.
	DefaultConfigFile = "dbinfo.yaml"
	// DefaultOutputDir receives the CSV trees and workbooks.
	DefaultOutputDir = "output"
	// EnvPrefix prefixes environment overrides, e.g. DBINFO_OUTPUT_DIR.
	EnvPrefix = "DBINFO_"
	// LegacyDatabaseEnv names a single database file.
	LegacyDatabaseEnv = "ACCESS_DB_PATH"
)

// TablesConfig limits the extracted tables.
type TablesConfig struct {
	Include []string `koanf:"include"`
	Exclude []string `koanf:"exclude"`
}

// ODBCConfig configures the database/sql provider used for Access files.
type ODBCConfig struct {
	Driver  string `koanf:"driver"`
	DSN     string `koanf:"dsn"`
	Dialect string `koanf:"dialect"`
}

// Config holds all CLI configuration options.
type Config struct {
	Database           string       `koanf:"database"`
	OutputDir          string       `koanf:"output_dir"`
	Format             string       `koanf:"format"`
	Separator          string       `koanf:"separator"`
	IncludeRecordCount bool         `koanf:"include_record_count"`
	MaxRecordsPerTable int          `koanf:"max_records_per_table"`
	IndexSheet         string       `koanf:"index_sheet"`
	Timezone           string       `koanf:"timezone"`
	DateTimeLayout     string       `koanf:"datetime_layout"`
	LogLevel           string       `koanf:"log_level"`
	Tables             TablesConfig `koanf:"tables"`
	ODBC               ODBCConfig   `koanf:"odbc"`
}

// flagKeys maps flags whose names differ from their config keys.
var flagKeys = map[string]string{
	"include":      "tables.include",
	"exclude":      "tables.exclude",
	"odbc-driver":  "odbc.driver",
	"odbc-dsn":     "odbc.dsn",
	"odbc-dialect": "odbc.dialect",
	"index-sheet":  "index_sheet",
}

// flags that only steer loading and never reach the config.
var loaderFlags = map[string]struct{}{
	"config":   {},
	"env-file": {},
}

func defaults() map[string]any {
	return map[string]any{
		"output_dir":            DefaultOutputDir,
		"format":                string(export.FormatCSV),
		"separator":             string(export.DefaultSeparator),
		"include_record_count":  false,
		"max_records_per_table": export.DefaultMaxRecordsPerTable,
		"index_sheet":           export.DefaultIndexSheetName,
		"timezone":              "",
		"datetime_layout":       "",
		"log_level":             "info",
		"odbc.dialect":          "access",
	}
}

// LoadEnvFile loads a .env file into the process environment when it exists.
// Variables already set are kept.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// LoadConfig loads configuration from defaults, the config file, environment
// variables and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// DBINFO_OUTPUT_DIR -> output_dir, DBINFO_ODBC__DRIVER -> odbc.driver
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			if _, skip := loaderFlags[f.Name]; skip {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.Database == "" {
		cfg.Database = os.Getenv(LegacyDatabaseEnv)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be fixed up with defaults.
func (c *Config) Validate() error {
	switch export.NormalizeFormat(export.Format(c.Format)) {
	case export.FormatCSV, export.FormatXLSX:
	default:
		return fmt.Errorf("unsupported format %q (want csv or xlsx)", c.Format)
	}
	if _, err := export.ParseSeparator(c.Separator); err != nil {
		return fmt.Errorf("invalid separator: %w", err)
	}
	if c.MaxRecordsPerTable < 0 {
		return fmt.Errorf("max_records_per_table must not be negative")
	}
	return nil
}

// Paths returns the database files to process: the arguments when given,
// otherwise the configured database.
func (c *Config) Paths(args []string) []string {
	if len(args) > 0 {
		return args
	}
	if c.Database != "" {
		return []string{c.Database}
	}
	return nil
}

// CSVOptions builds CSV dumper options.
func (c *Config) CSVOptions() export.CSVOptions {
	sep, _ := export.ParseSeparator(c.Separator)
	return export.CSVOptions{Separator: sep, Format: c.formatOptions()}
}

// XLSXOptions builds workbook dumper options.
func (c *Config) XLSXOptions() export.XLSXOptions {
	return export.XLSXOptions{
		IncludeRecordCount: c.IncludeRecordCount,
		MaxRecordsPerTable: c.MaxRecordsPerTable,
		IndexSheetName:     c.IndexSheet,
		Format:             c.formatOptions(),
	}
}

func (c *Config) formatOptions() export.FormatOptions {
	return export.FormatOptions{Timezone: c.Timezone, DateTimeLayout: c.DateTimeLayout}
}
