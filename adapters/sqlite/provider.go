package dbinfosqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-dbinfo/dbinfo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	tablesQuery = `SELECT name FROM sqlite_master
WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
ORDER BY rowid`

	columnsQuery = `SELECT cid, name, type, "notnull" AS not_null, dflt_value, pk
FROM pragma_table_info(?)
ORDER BY cid`

	uniqueQuery = `SELECT min(ii.name) AS name
FROM pragma_index_list(?) AS il, pragma_index_info(il.name) AS ii
WHERE il."unique" = 1 AND il.origin != 'pk'
GROUP BY il.name
HAVING count(*) = 1`

	probeQuery = `SELECT count(*) FROM sqlite_master`
)

// Provider opens SQLite files read-only.
type Provider struct {
	// DriverName overrides the database/sql driver, mainly for tests.
	DriverName string
}

// NewProvider creates a provider backed by sqliteshim.
func NewProvider() *Provider {
	return &Provider{DriverName: sqliteshim.ShimName}
}

// DSN builds the read-only connection string for path.
func DSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}
	return u.String(), nil
}

// Open validates path and returns a connection. Missing files, files that are
// not SQLite databases and locked files fail with a connection error.
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

	dsn, err := DSN(path)
	if err != nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("cannot resolve database path %q", path), err)
	}

	driver := sqliteshim.ShimName
	if p != nil && p.DriverName != "" {
		driver = p.DriverName
	}
	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("cannot open database %q", path), err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	var count int
	if err := db.NewRaw(probeQuery).Scan(ctx, &count); err != nil {
		_ = db.Close()
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("cannot read database %q", path), err)
	}
	return &Conn{DB: db}, nil
}

// Conn is an open SQLite database.
type Conn struct {
	DB *bun.DB
}

// Tables lists user tables in creation order.
func (c *Conn) Tables(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.DB.NewRaw(tablesQuery).Scan(ctx, &names); err != nil {
		return nil, err
	}
	return names, nil
}

type tableInfoRow struct {
	CID       int            `bun:"cid"`
	Name      string         `bun:"name"`
	Type      string         `bun:"type"`
	NotNull   int            `bun:"not_null"`
	DfltValue sql.NullString `bun:"dflt_value"`
	PK        int            `bun:"pk"`
}

// Columns reads pragma_table_info and marks columns covered by a
// single-column unique index.
func (c *Conn) Columns(ctx context.Context, table string) ([]dbinfo.ColumnInfo, error) {
	var rows []tableInfoRow
	if err := c.DB.NewRaw(columnsQuery, table).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, dbinfo.NewError(dbinfo.KindNotFound, fmt.Sprintf("table %q not found", table), nil)
	}

	var uniqueCols []string
	if err := c.DB.NewRaw(uniqueQuery, table).Scan(ctx, &uniqueCols); err != nil {
		return nil, err
	}
	unique := make(map[string]struct{}, len(uniqueCols))
	for _, name := range uniqueCols {
		unique[name] = struct{}{}
	}

	infos := make([]dbinfo.ColumnInfo, len(rows))
	for i, row := range rows {
		info := dbinfo.ColumnInfo{
			Name:       row.Name,
			DataType:   row.Type,
			Position:   row.CID + 1,
			Nullable:   row.NotNull == 0 && row.PK == 0,
			PrimaryKey: row.PK > 0,
		}
		if row.DfltValue.Valid {
			def := row.DfltValue.String
			info.Default = &def
		}
		if _, ok := unique[row.Name]; ok {
			info.Unique = true
		}
		if n, ok := dbinfo.DeclaredLength(row.Type); ok {
			info.Length = &n
		}
		infos[i] = info
	}
	return infos, nil
}

// Rows selects every row of table.
func (c *Conn) Rows(ctx context.Context, table string) (dbinfo.RowIterator, error) {
	rows, err := c.DB.QueryContext(ctx, "SELECT * FROM "+dbinfo.QuoteIdentifier(table))
	if err != nil {
		return nil, err
	}
	return dbinfo.NewSQLRowIterator(rows)
}

func (c *Conn) Close() error {
	return c.DB.Close()
}
