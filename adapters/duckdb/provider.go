// Package dbinfoduckdb opens DuckDB database files for go-dbinfo.
package dbinfoduckdb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-dbinfo/dbinfo"
	"github.com/marcboeker/go-duckdb"
)

const (
	driverName = "duckdb"

	tablesQuery = `SELECT table_name
FROM duckdb_tables()
WHERE database_name = current_database() AND schema_name = 'main' AND NOT internal AND NOT temporary
ORDER BY table_oid`

	columnsQuery = `SELECT column_name, data_type, is_nullable, ordinal_position, column_default, character_maximum_length
FROM information_schema.columns
WHERE table_catalog = current_database() AND table_schema = 'main' AND table_name = ?
ORDER BY ordinal_position`

	constraintsQuery = `SELECT constraint_type, constraint_column_names
FROM duckdb_constraints()
WHERE database_name = current_database() AND schema_name = 'main' AND table_name = ?
  AND constraint_type IN ('PRIMARY KEY', 'UNIQUE')`
)

// Provider opens DuckDB files with access_mode=read_only.
type Provider struct{}

// NewProvider creates a DuckDB provider.
func NewProvider() *Provider {
	return &Provider{}
}

// Open validates path, opens it read-only and pings the database.
func (p *Provider) Open(ctx context.Context, path string) (dbinfo.Conn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, dbinfo.NewError(dbinfo.KindConnection, "database path is required", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("cannot access database file %q", path), err)
	}
	if info.IsDir() {
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("database path %q is a directory", path), nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("cannot resolve database path %q", path), err)
	}

	db, err := sql.Open(driverName, abs+"?access_mode=read_only")
	if err != nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("cannot open database %q", path), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("cannot read database %q", path), err)
	}
	return &Conn{DB: db}, nil
}

// Conn is an open DuckDB database.
type Conn struct {
	DB *sql.DB
}

// Tables lists base tables of the main schema in creation order.
func (c *Conn) Tables(ctx context.Context) ([]string, error) {
	rows, err := c.DB.QueryContext(ctx, tablesQuery)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Columns reads information_schema.columns and duckdb_constraints().
func (c *Conn) Columns(ctx context.Context, table string) ([]dbinfo.ColumnInfo, error) {
	rows, err := c.DB.QueryContext(ctx, columnsQuery, table)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var infos []dbinfo.ColumnInfo
	for rows.Next() {
		var (
			info     dbinfo.ColumnInfo
			nullable string
			def      sql.NullString
			length   sql.NullInt64
		)
		if err := rows.Scan(&info.Name, &info.DataType, &nullable, &info.Position, &def, &length); err != nil {
			return nil, err
		}
		info.Nullable = strings.EqualFold(nullable, "YES")
		if def.Valid {
			value := def.String
			info.Default = &value
		}
		if length.Valid {
			n := length.Int64
			info.Length = &n
		} else if n, ok := dbinfo.DeclaredLength(info.DataType); ok {
			info.Length = &n
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, dbinfo.NewError(dbinfo.KindNotFound, fmt.Sprintf("table %q not found", table), nil)
	}

	primary, unique, err := c.keyColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		if _, ok := primary[infos[i].Name]; ok {
			infos[i].PrimaryKey = true
		}
		if _, ok := unique[infos[i].Name]; ok {
			infos[i].Unique = true
		}
	}
	return infos, nil
}

// keyColumns returns primary key columns and columns carrying a
// single-column UNIQUE constraint.
func (c *Conn) keyColumns(ctx context.Context, table string) (map[string]struct{}, map[string]struct{}, error) {
	rows, err := c.DB.QueryContext(ctx, constraintsQuery, table)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	primary := make(map[string]struct{})
	unique := make(map[string]struct{})
	for rows.Next() {
		var (
			kind    string
			columns any
		)
		if err := rows.Scan(&kind, &columns); err != nil {
			return nil, nil, err
		}
		names := listStrings(columns)
		switch {
		case kind == "PRIMARY KEY":
			for _, name := range names {
				primary[name] = struct{}{}
			}
		case kind == "UNIQUE" && len(names) == 1:
			unique[names[0]] = struct{}{}
		}
	}
	return primary, unique, rows.Err()
}

func listStrings(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Rows selects every row of table.
func (c *Conn) Rows(ctx context.Context, table string) (dbinfo.RowIterator, error) {
	rows, err := c.DB.QueryContext(ctx, "SELECT * FROM "+dbinfo.QuoteIdentifier(table))
	if err != nil {
		return nil, err
	}
	it, err := dbinfo.NewSQLRowIterator(rows)
	if err != nil {
		return nil, err
	}
	it.Convert = convertValue
	return it, nil
}

func (c *Conn) Close() error {
	return c.DB.Close()
}

// convertValue maps DuckDB driver types onto plain Go values.
func convertValue(raw any) any {
	switch v := raw.(type) {
	case duckdb.Decimal:
		return v.Float64()
	case *big.Int:
		if v == nil {
			return nil
		}
		if v.IsInt64() {
			return v.Int64()
		}
		return v.String()
	default:
		return raw
	}
}
