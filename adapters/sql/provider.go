// Package dbinfosql opens database files through any database/sql driver,
// typically an ODBC driver for Access .mdb/.accdb files. The driver itself is
// registered by the host program.
package dbinfosql

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

// AccessDSNTemplate is an ODBC connection string for the Access driver. The
// placeholder receives the absolute database path.
const AccessDSNTemplate = "Driver={Microsoft Access Driver (*.mdb, *.accdb)};Dbq=%s;ReadOnly=1;"

// Opener opens a *sql.DB. It defaults to sql.Open.
type Opener func(driverName, dsn string) (*sql.DB, error)

// Provider opens database files through a database/sql driver.
type Provider struct {
	DriverName string
	// DSN builds the connection string for an absolute file path.
	DSN     func(path string) (string, error)
	Dialect Dialect
	Opener  Opener
}

// NewProvider creates a provider for driverName. dsnTemplate must contain a
// single %s verb for the database path.
func NewProvider(driverName, dsnTemplate string, dialect Dialect) *Provider {
	return &Provider{
		DriverName: driverName,
		DSN:        TemplateDSN(dsnTemplate),
		Dialect:    dialect,
		Opener:     sql.Open,
	}
}

// NewAccessProvider creates a provider for Access files behind an ODBC
// driver registered as driverName.
func NewAccessProvider(driverName string) *Provider {
	return NewProvider(driverName, AccessDSNTemplate, AccessDialect)
}

// TemplateDSN returns a DSN builder that formats the path into template.
func TemplateDSN(template string) func(path string) (string, error) {
	return func(path string) (string, error) {
		if strings.Count(template, "%s") != 1 {
			return "", dbinfo.NewError(dbinfo.KindValidation, "dsn template must contain exactly one %s", nil)
		}
		return fmt.Sprintf(template, path), nil
	}
}

// Open checks the file, opens the driver and pings it.
func (p *Provider) Open(ctx context.Context, path string) (dbinfo.Conn, error) {
	if p == nil || p.DriverName == "" {
		return nil, dbinfo.NewError(dbinfo.KindConnection, "sql driver name is required", nil)
	}
	if p.DSN == nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, "dsn builder is required", nil)
	}
	if p.Dialect.TablesQuery == "" {
		return nil, dbinfo.NewError(dbinfo.KindConnection, "dialect tables query is required", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path = strings.TrimSpace(path)
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

	dsn, err := p.DSN(abs)
	if err != nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, "cannot build connection string", err)
	}
	opener := p.Opener
	if opener == nil {
		opener = sql.Open
	}
	db, err := opener(p.DriverName, dsn)
	if err != nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("cannot open database %q", path), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("cannot connect to database %q", path), err)
	}
	return &Conn{DB: db, Dialect: p.Dialect}, nil
}

// Conn is an open database/sql connection.
type Conn struct {
	DB      *sql.DB
	Dialect Dialect
}

// Tables runs the dialect's tables query.
func (c *Conn) Tables(ctx context.Context) ([]string, error) {
	rows, err := c.DB.QueryContext(ctx, c.Dialect.TablesQuery)
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

// Columns describes table from the driver's result-set metadata and, when the
// dialect has a keys query, marks primary key and unique columns.
func (c *Conn) Columns(ctx context.Context, table string) ([]dbinfo.ColumnInfo, error) {
	rows, err := c.DB.QueryContext(ctx, "SELECT * FROM "+c.quote(table)+" WHERE 1 = 0")
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	_ = rows.Close()
	if err != nil {
		return nil, err
	}

	infos := make([]dbinfo.ColumnInfo, len(types))
	for i, ct := range types {
		info := dbinfo.ColumnInfo{
			Name:     ct.Name(),
			DataType: ct.DatabaseTypeName(),
			Position: i + 1,
			Nullable: true,
		}
		if nullable, ok := ct.Nullable(); ok {
			info.Nullable = nullable
		}
		if length, ok := ct.Length(); ok {
			info.Length = &length
		} else if n, ok := dbinfo.DeclaredLength(info.DataType); ok {
			info.Length = &n
		}
		infos[i] = info
	}

	if c.Dialect.KeysQuery == "" {
		return infos, nil
	}
	primary, unique, err := c.keyColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		if _, ok := primary[infos[i].Name]; ok {
			infos[i].PrimaryKey = true
			infos[i].Nullable = false
		}
		if _, ok := unique[infos[i].Name]; ok {
			infos[i].Unique = true
		}
	}
	return infos, nil
}

func (c *Conn) keyColumns(ctx context.Context, table string) (map[string]struct{}, map[string]struct{}, error) {
	rows, err := c.DB.QueryContext(ctx, c.Dialect.KeysQuery, table)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	primary := make(map[string]struct{})
	uniqueByConstraint := make(map[string][]string)
	for rows.Next() {
		var column, kind, constraint string
		if err := rows.Scan(&column, &kind, &constraint); err != nil {
			return nil, nil, err
		}
		switch strings.ToUpper(kind) {
		case "PRIMARY KEY":
			primary[column] = struct{}{}
		case "UNIQUE":
			uniqueByConstraint[constraint] = append(uniqueByConstraint[constraint], column)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	unique := make(map[string]struct{})
	for _, columns := range uniqueByConstraint {
		if len(columns) == 1 {
			unique[columns[0]] = struct{}{}
		}
	}
	return primary, unique, nil
}

// Rows selects every row of table.
func (c *Conn) Rows(ctx context.Context, table string) (dbinfo.RowIterator, error) {
	rows, err := c.DB.QueryContext(ctx, "SELECT * FROM "+c.quote(table))
	if err != nil {
		return nil, err
	}
	return dbinfo.NewSQLRowIterator(rows)
}

func (c *Conn) Close() error {
	return c.DB.Close()
}

func (c *Conn) quote(name string) string {
	if c.Dialect.Quote != nil {
		return c.Dialect.Quote(name)
	}
	return dbinfo.QuoteIdentifier(name)
}
