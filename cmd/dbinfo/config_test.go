package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-dbinfo/export"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.StringP("output-dir", "o", DefaultOutputDir, "")
	fs.StringP("format", "f", "csv", "")
	fs.String("separator", ",", "")
	fs.Int("max-records-per-table", export.DefaultMaxRecordsPerTable, "")
	fs.String("index-sheet", export.DefaultIndexSheetName, "")
	fs.StringSlice("include", nil, "")
	fs.StringSlice("exclude", nil, "")
	fs.String("odbc-driver", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(LegacyDatabaseEnv, "")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, ",", cfg.Separator)
	assert.False(t, cfg.IncludeRecordCount)
	assert.Equal(t, export.DefaultMaxRecordsPerTable, cfg.MaxRecordsPerTable)
	assert.Equal(t, "Index", cfg.IndexSheet)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "access", cfg.ODBC.Dialect)
	assert.Empty(t, cfg.Database)
	assert.Empty(t, cfg.Tables.Include)
}

func TestLoadConfig_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "dbinfo.yaml", `
database: sales.accdb
output_dir: from-file
format: xlsx
separator: ";"
include_record_count: true
max_records_per_table: 100
timezone: Europe/Madrid
tables:
  include: [Customers, Orders]
odbc:
  driver: odbc
`)
	t.Setenv("DBINFO_OUTPUT_DIR", "from-env")
	t.Setenv("DBINFO_ODBC__DIALECT", "ansi")

	flags := testFlags(t, "--max-records-per-table", "10", "--exclude", "Orders", "--index-sheet", "Tables")
	cfg, err := LoadConfig(cfgFile, flags)
	require.NoError(t, err)

	assert.Equal(t, "sales.accdb", cfg.Database)
	assert.Equal(t, "from-env", cfg.OutputDir, "env overrides file")
	assert.Equal(t, "xlsx", cfg.Format)
	assert.Equal(t, ";", cfg.Separator)
	assert.True(t, cfg.IncludeRecordCount)
	assert.Equal(t, 10, cfg.MaxRecordsPerTable, "flag overrides file")
	assert.Equal(t, "Tables", cfg.IndexSheet)
	assert.Equal(t, "Europe/Madrid", cfg.Timezone)
	assert.Equal(t, []string{"Customers", "Orders"}, cfg.Tables.Include)
	assert.Equal(t, []string{"Orders"}, cfg.Tables.Exclude)
	assert.Equal(t, "odbc", cfg.ODBC.Driver)
	assert.Equal(t, "ansi", cfg.ODBC.Dialect)

	assert.Equal(t, ';', cfg.CSVOptions().Separator)
	xlsx := cfg.XLSXOptions()
	assert.Equal(t, 10, xlsx.MaxRecordsPerTable)
	assert.Equal(t, "Europe/Madrid", xlsx.Format.Timezone)
}

func TestLoadConfig_UnchangedFlagsKeepFileValues(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "dbinfo.yaml", "output_dir: from-file\n")

	cfg, err := LoadConfig(cfgFile, testFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.OutputDir)
}

func TestLoadConfig_LegacyDatabaseEnv(t *testing.T) {
	t.Setenv(LegacyDatabaseEnv, "legacy.accdb")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "legacy.accdb", cfg.Database)
	assert.Equal(t, []string{"legacy.accdb"}, cfg.Paths(nil))
	assert.Equal(t, []string{"a.db"}, cfg.Paths([]string{"a.db"}))
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(writeFile(t, dir, "bad-format.yaml", "format: pdf\n"), nil)
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, dir, "bad-sep.yaml", "separator: \"ab\"\n"), nil)
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, dir, "bad-max.yaml", "max_records_per_table: -1\n"), nil)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	const key = "DBINFO_TEST_ENV_FILE_MARKER"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	require.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))
	require.NoError(t, LoadEnvFile(""))

	path := writeFile(t, dir, ".env", key+"=loaded\n")
	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv(key))
}

func TestBuildProviders(t *testing.T) {
	reg, err := buildProviders(&Config{})
	require.NoError(t, err)
	for _, path := range []string{"a.db", "a.SQLITE", "b.duckdb"} {
		_, ok := reg.Resolve(path)
		assert.True(t, ok, path)
	}
	_, ok := reg.Resolve("c.accdb")
	assert.False(t, ok, "access files need an odbc driver")

	reg, err = buildProviders(&Config{ODBC: ODBCConfig{Driver: "odbc", Dialect: "access"}})
	require.NoError(t, err)
	_, ok = reg.Resolve("c.mdb")
	assert.True(t, ok)

	_, err = buildProviders(&Config{ODBC: ODBCConfig{Driver: "odbc", Dialect: "oracle"}})
	assert.Error(t, err)
}
