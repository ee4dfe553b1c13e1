package dbinfo

import (
	"context"
	"database/sql"
	"io"
	"strings"
)

// SQLRowIterator adapts *sql.Rows into a RowIterator. Values are converted
// with the declared column type as a hint.
type SQLRowIterator struct {
	// Convert, when set, rewrites driver-specific values before conversion.
	Convert func(raw any) any

	rows    *sql.Rows
	columns []Column
}

// NewSQLRowIterator wraps rows. The iterator owns rows and closes them.
func NewSQLRowIterator(rows *sql.Rows) (*SQLRowIterator, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	columns := make([]Column, len(types))
	for i, ct := range types {
		decl := ct.DatabaseTypeName()
		columns[i] = Column{
			Name:         ct.Name(),
			Type:         TypeFromDatabaseType(decl),
			DatabaseType: decl,
		}
	}
	return &SQLRowIterator{rows: rows, columns: columns}, nil
}

func (it *SQLRowIterator) Columns() []Column {
	return it.columns
}

func (it *SQLRowIterator) Next(ctx context.Context) (Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	raw := make([]any, len(it.columns))
	ptrs := make([]any, len(it.columns))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := it.rows.Scan(ptrs...); err != nil {
		return nil, err
	}

	row := make(Row, len(raw))
	for i, value := range raw {
		if it.Convert != nil {
			value = it.Convert(value)
		}
		row[i] = ValueOfType(value, it.columns[i].Type)
	}
	return row, nil
}

func (it *SQLRowIterator) Close() error {
	return it.rows.Close()
}

// QuoteIdentifier quotes a table or column name with double quotes.
func QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteBracketIdentifier quotes a name the way Access/SQL Server expect.
func QuoteBracketIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
