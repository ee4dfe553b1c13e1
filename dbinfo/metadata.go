package dbinfo

import (
	"context"
	"fmt"
)

// Metadata table column names.
const (
	MetaColumnName = "Column Name"
	MetaDataType   = "Data Type"
	MetaPosition   = "Ordinal Position"
	MetaNullable   = "Nullable"
	MetaPrimaryKey = "Primary Key"
	MetaDefault    = "Default"
	MetaUnique     = "Unique"
	MetaLength     = "Length"
)

// MetadataColumns are the headers of every metadata table.
func MetadataColumns() []Column {
	return []Column{
		{Name: MetaColumnName, Type: TypeText},
		{Name: MetaDataType, Type: TypeText},
		{Name: MetaPosition, Type: TypeInteger},
		{Name: MetaNullable, Type: TypeBoolean},
		{Name: MetaPrimaryKey, Type: TypeBoolean},
		{Name: MetaDefault, Type: TypeText},
		{Name: MetaUnique, Type: TypeBoolean},
		{Name: MetaLength, Type: TypeInteger},
	}
}

// Introspector builds metadata tables from catalog queries.
type Introspector struct{}

// Introspect queries the catalog for table and returns its metadata table.
func (Introspector) Introspect(ctx context.Context, conn Conn, table string) (*Table, error) {
	infos, err := conn.Columns(ctx, table)
	if err != nil {
		return nil, NewError(KindIntrospection, fmt.Sprintf("catalog query for table %q failed", table), err)
	}
	return MetadataTable(table, infos)
}

// MetadataTable builds a metadata table with one row per column, in the
// order given.
func MetadataTable(name string, infos []ColumnInfo) (*Table, error) {
	t, err := NewTable(name, MetadataColumns()...)
	if err != nil {
		return nil, err
	}
	for i, info := range infos {
		position := info.Position
		if position <= 0 {
			position = i + 1
		}
		def := Null()
		if info.Default != nil {
			def = Text(*info.Default)
		}
		length := Null()
		if info.Length != nil {
			length = Integer(*info.Length)
		}
		if err := t.Append(Row{
			Text(info.Name),
			Text(info.DataType),
			Integer(int64(position)),
			Boolean(info.Nullable),
			Boolean(info.PrimaryKey),
			def,
			Boolean(info.Unique),
			length,
		}); err != nil {
			return nil, err
		}
	}
	return t, nil
}
