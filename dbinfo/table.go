package dbinfo

import (
	"fmt"
	"strings"
)

// Column describes a column of a Table.
type Column struct {
	Name         string
	Type         ValueType
	DatabaseType string
}

// Row is a column-aligned record.
type Row []Value

// Table is the tabular container passed between extraction and export.
type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// NewTable creates an empty table. Column names must be non-empty and unique.
func NewTable(name string, columns ...Column) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if strings.TrimSpace(col.Name) == "" {
			return nil, NewError(KindValidation, fmt.Sprintf("table %q has an unnamed column", name), nil)
		}
		if _, ok := seen[col.Name]; ok {
			return nil, NewError(KindValidation, fmt.Sprintf("table %q has duplicate column %q", name, col.Name), nil)
		}
		seen[col.Name] = struct{}{}
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}, nil
}

// Append adds a row. The row must have one value per column.
func (t *Table) Append(row Row) error {
	if len(row) != len(t.Columns) {
		return NewError(KindValidation, fmt.Sprintf("table %q: row has %d values, expected %d", t.Name, len(row), len(t.Columns)), nil)
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Head returns at most n rows in container order.
func (t *Table) Head(n int) []Row {
	if n < 0 || n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}
