package dbinfocallback

import (
	"context"
	"fmt"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

// Table is a fixture table: its catalog entries and its rows.
type Table struct {
	Name    string
	Columns []dbinfo.ColumnInfo
	Rows    []dbinfo.Row
	// Err, when set, is returned by Columns and Rows for this table.
	Err error
}

// Fixtures maps database identifiers to their tables in enumeration order.
type Fixtures map[string][]Table

// NewStaticProvider serves fixture databases. A path resolves to the fixture
// keyed by its database identifier.
func NewStaticProvider(fixtures Fixtures) *Provider {
	return NewProvider(func(ctx context.Context, path string) (*Source, error) {
		if err := ctx.Err(); err != nil {
			return nil, dbinfo.NewError(dbinfo.KindFromError(err), "open interrupted", err)
		}
		tables, ok := fixtures[dbinfo.DatabaseID(path)]
		if !ok {
			return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("database %q not found", path), nil)
		}
		return staticSource(tables), nil
	})
}

func staticSource(tables []Table) *Source {
	byName := make(map[string]Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}
	lookup := func(name string) (Table, error) {
		t, ok := byName[name]
		if !ok {
			return Table{}, dbinfo.NewError(dbinfo.KindNotFound, fmt.Sprintf("table %q not found", name), nil)
		}
		return t, t.Err
	}

	return &Source{
		TablesFunc: func(ctx context.Context) ([]string, error) {
			names := make([]string, len(tables))
			for i, t := range tables {
				names[i] = t.Name
			}
			return names, nil
		},
		ColumnsFunc: func(ctx context.Context, table string) ([]dbinfo.ColumnInfo, error) {
			t, err := lookup(table)
			if err != nil {
				return nil, err
			}
			return t.Columns, nil
		},
		RowsFunc: func(ctx context.Context, table string) (dbinfo.RowIterator, error) {
			t, err := lookup(table)
			if err != nil {
				return nil, err
			}
			return SliceIterator(DataColumns(t.Columns), t.Rows), nil
		},
	}
}

// DataColumns derives data table columns from catalog entries.
func DataColumns(infos []dbinfo.ColumnInfo) []dbinfo.Column {
	columns := make([]dbinfo.Column, len(infos))
	for i, info := range infos {
		columns[i] = dbinfo.Column{
			Name:         info.Name,
			Type:         dbinfo.TypeFromDatabaseType(info.DataType),
			DatabaseType: info.DataType,
		}
	}
	return columns
}
