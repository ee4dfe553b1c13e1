package main

import (
	"fmt"

	dbinfoduckdb "github.com/goliatone/go-dbinfo/adapters/duckdb"
	dbinfosql "github.com/goliatone/go-dbinfo/adapters/sql"
	dbinfosqlite "github.com/goliatone/go-dbinfo/adapters/sqlite"
	"github.com/goliatone/go-dbinfo/dbinfo"
)

var (
	sqliteExtensions = []string{".db", ".sqlite", ".sqlite3"}
	duckdbExtensions = []string{".duckdb", ".ddb"}
	accessExtensions = []string{".mdb", ".accdb"}
)

// buildProviders maps file extensions to connection providers. Access files
// are only handled when an ODBC driver is configured; the driver must be
// linked into the binary under that name.
func buildProviders(cfg *Config) (*dbinfo.ProviderRegistry, error) {
	reg := dbinfo.NewProviderRegistry()
	if err := reg.Register(dbinfosqlite.NewProvider(), sqliteExtensions...); err != nil {
		return nil, err
	}
	if err := reg.Register(dbinfoduckdb.NewProvider(), duckdbExtensions...); err != nil {
		return nil, err
	}

	if cfg.ODBC.Driver == "" {
		return reg, nil
	}
	dialect, ok := dbinfosql.NewDialectRegistry().Resolve(cfg.ODBC.Dialect)
	if !ok {
		return nil, fmt.Errorf("unknown odbc dialect %q", cfg.ODBC.Dialect)
	}
	template := cfg.ODBC.DSN
	if template == "" {
		template = dbinfosql.AccessDSNTemplate
	}
	if err := reg.Register(dbinfosql.NewProvider(cfg.ODBC.Driver, template, dialect), accessExtensions...); err != nil {
		return nil, err
	}
	return reg, nil
}
