package dbinfo

import (
	"context"
)

// ColumnInfo is a catalog entry for one column of a source table.
type ColumnInfo struct {
	Name       string
	DataType   string
	Position   int
	Nullable   bool
	PrimaryKey bool
	Default    *string
	Unique     bool
	Length     *int64
}

// Provider opens read-only connections to database files.
type Provider interface {
	Open(ctx context.Context, path string) (Conn, error)
}

// ProviderFunc adapts a function to a Provider.
type ProviderFunc func(ctx context.Context, path string) (Conn, error)

func (f ProviderFunc) Open(ctx context.Context, path string) (Conn, error) {
	if f == nil {
		return nil, NewError(KindConnection, "provider function is nil", nil)
	}
	return f(ctx, path)
}

// Conn is an open connection handle. It is used by a single goroutine.
type Conn interface {
	// Tables lists user tables in enumeration order, system tables excluded.
	Tables(ctx context.Context) ([]string, error)
	// Columns lists the catalog entries of table in column order.
	Columns(ctx context.Context, table string) ([]ColumnInfo, error)
	// Rows runs an unrestricted select over table.
	Rows(ctx context.Context, table string) (RowIterator, error)
	Close() error
}

// RowIterator streams rows. Next returns io.EOF after the last row.
type RowIterator interface {
	Columns() []Column
	Next(ctx context.Context) (Row, error)
	Close() error
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
