// Package dbinfocallback builds connection providers from functions or static
// fixture tables.
package dbinfocallback

import (
	"context"
	"fmt"
	"io"

	"github.com/goliatone/go-dbinfo/dbinfo"
)

// SourceFunc opens a Source for a database path.
type SourceFunc func(ctx context.Context, path string) (*Source, error)

// Provider wraps a callback function as a dbinfo.Provider.
type Provider struct {
	fn SourceFunc
}

// NewProvider creates a callback-based Provider.
func NewProvider(fn SourceFunc) *Provider {
	return &Provider{fn: fn}
}

// Open delegates to the configured callback.
func (p *Provider) Open(ctx context.Context, path string) (dbinfo.Conn, error) {
	if p == nil || p.fn == nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, "callback provider requires a function", nil)
	}
	source, err := p.fn(ctx, path)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, dbinfo.NewError(dbinfo.KindConnection, fmt.Sprintf("no source for %q", path), nil)
	}
	return source, nil
}

// Source is a dbinfo.Conn whose operations are plain functions.
type Source struct {
	TablesFunc  func(ctx context.Context) ([]string, error)
	ColumnsFunc func(ctx context.Context, table string) ([]dbinfo.ColumnInfo, error)
	RowsFunc    func(ctx context.Context, table string) (dbinfo.RowIterator, error)
	CloseFunc   func() error
}

func (s *Source) Tables(ctx context.Context) ([]string, error) {
	if s.TablesFunc == nil {
		return nil, dbinfo.NewError(dbinfo.KindNotImpl, "source requires TablesFunc", nil)
	}
	return s.TablesFunc(ctx)
}

func (s *Source) Columns(ctx context.Context, table string) ([]dbinfo.ColumnInfo, error) {
	if s.ColumnsFunc == nil {
		return nil, dbinfo.NewError(dbinfo.KindNotImpl, "source requires ColumnsFunc", nil)
	}
	return s.ColumnsFunc(ctx, table)
}

func (s *Source) Rows(ctx context.Context, table string) (dbinfo.RowIterator, error) {
	if s.RowsFunc == nil {
		return nil, dbinfo.NewError(dbinfo.KindNotImpl, "source requires RowsFunc", nil)
	}
	return s.RowsFunc(ctx, table)
}

func (s *Source) Close() error {
	if s.CloseFunc == nil {
		return nil
	}
	return s.CloseFunc()
}

// IteratorFunc yields a row or io.EOF.
type IteratorFunc func(ctx context.Context) (dbinfo.Row, error)

// FuncIterator wraps a function into a RowIterator.
type FuncIterator struct {
	Cols      []dbinfo.Column
	NextFunc  IteratorFunc
	CloseFunc func() error
}

func (it *FuncIterator) Columns() []dbinfo.Column {
	if it == nil {
		return nil
	}
	return it.Cols
}

func (it *FuncIterator) Next(ctx context.Context) (dbinfo.Row, error) {
	if it == nil || it.NextFunc == nil {
		return nil, dbinfo.NewError(dbinfo.KindValidation, "iterator requires NextFunc", nil)
	}
	return it.NextFunc(ctx)
}

func (it *FuncIterator) Close() error {
	if it == nil || it.CloseFunc == nil {
		return nil
	}
	return it.CloseFunc()
}

// SliceIterator iterates over rows held in memory.
func SliceIterator(columns []dbinfo.Column, rows []dbinfo.Row) *FuncIterator {
	index := 0
	return &FuncIterator{
		Cols: columns,
		NextFunc: func(ctx context.Context) (dbinfo.Row, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if index >= len(rows) {
				return nil, io.EOF
			}
			row := rows[index]
			index++
			return row, nil
		},
	}
}
