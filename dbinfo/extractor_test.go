package dbinfo

import (
	"context"
	"errors"
	"io"
	"testing"
)

type stubTable struct {
	columns []ColumnInfo
	rows    [][]any
	fail    error
}

type stubProvider struct {
	tables  map[string]stubTable
	order   []string
	openErr error
	listErr error
	conns   []*stubConn
}

func (p *stubProvider) Open(_ context.Context, _ string) (Conn, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	conn := &stubConn{provider: p}
	p.conns = append(p.conns, conn)
	return conn, nil
}

type stubConn struct {
	provider *stubProvider
	closed   bool
}

func (c *stubConn) Tables(context.Context) ([]string, error) {
	if c.provider.listErr != nil {
		return nil, c.provider.listErr
	}
	return append([]string(nil), c.provider.order...), nil
}

func (c *stubConn) Columns(_ context.Context, table string) ([]ColumnInfo, error) {
	def := c.provider.tables[table]
	if def.fail != nil {
		return nil, def.fail
	}
	return def.columns, nil
}

func (c *stubConn) Rows(_ context.Context, table string) (RowIterator, error) {
	def := c.provider.tables[table]
	if def.fail != nil {
		return nil, def.fail
	}
	cols := make([]Column, len(def.columns))
	for i, info := range def.columns {
		cols[i] = Column{Name: info.Name, Type: TypeFromDatabaseType(info.DataType), DatabaseType: info.DataType}
	}
	return &stubIterator{columns: cols, rows: def.rows}, nil
}

func (c *stubConn) Close() error {
	c.closed = true
	return nil
}

type stubIterator struct {
	columns []Column
	rows    [][]any
	idx     int
}

func (it *stubIterator) Columns() []Column { return it.columns }

func (it *stubIterator) Next(context.Context) (Row, error) {
	if it.idx >= len(it.rows) {
		return nil, io.EOF
	}
	raw := it.rows[it.idx]
	it.idx++
	row := make(Row, len(raw))
	for i, v := range raw {
		row[i] = ValueOfType(v, it.columns[i].Type)
	}
	return row, nil
}

func (it *stubIterator) Close() error { return nil }

func salesProvider() *stubProvider {
	length := int64(255)
	return &stubProvider{
		order: []string{"Customers", "Orders"},
		tables: map[string]stubTable{
			"Customers": {
				columns: []ColumnInfo{
					{Name: "ID", DataType: "COUNTER", PrimaryKey: true},
					{Name: "Name", DataType: "VARCHAR(255)", Nullable: true, Length: &length},
					{Name: "City", DataType: "VARCHAR(255)", Nullable: true, Length: &length},
				},
				rows: [][]any{
					{int64(1), "Ada", "London"},
					{int64(2), "Grace", nil},
				},
			},
			"Orders": {
				columns: []ColumnInfo{
					{Name: "ID", DataType: "COUNTER", PrimaryKey: true},
					{Name: "CustomerID", DataType: "INTEGER"},
					{Name: "Total", DataType: "CURRENCY"},
					{Name: "PlacedAt", DataType: "DATETIME"},
				},
			},
		},
	}
}

func TestExtractor_MetadataScenario(t *testing.T) {
	provider := salesProvider()
	result, err := GetDBInfoMetadata(context.Background(), provider, "/data/sales.accdb")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if result.Kind != ResultMetadata || result.RunID == "" {
		t.Fatalf("unexpected result header: %+v", result)
	}

	set, ok := result.Tables("sales")
	if !ok {
		t.Fatalf("expected sales database, got %v", result.Databases())
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 tables, got %d", set.Len())
	}

	customers, _ := set.Get("Customers")
	if customers.Len() != 3 {
		t.Fatalf("expected 3 metadata rows for Customers, got %d", customers.Len())
	}
	if len(customers.Columns) != len(MetadataColumns()) {
		t.Fatalf("unexpected metadata columns: %v", customers.ColumnNames())
	}
	first := customers.Rows[0]
	if name, _ := first[0].AsText(); name != "ID" {
		t.Fatalf("expected first column ID, got %q", name)
	}
	if pk, _ := first[4].AsBoolean(); !pk {
		t.Fatalf("expected ID to be primary key")
	}
	if !first[7].IsNull() {
		t.Fatalf("expected null length for ID")
	}
	if pos, _ := customers.Rows[2][2].AsInteger(); pos != 3 {
		t.Fatalf("expected ordinal position 3, got %d", pos)
	}

	orders, _ := set.Get("Orders")
	if orders.Len() != 4 {
		t.Fatalf("expected 4 metadata rows for Orders, got %d", orders.Len())
	}
	if !provider.conns[0].closed {
		t.Fatalf("expected connection to be closed")
	}
}

func TestExtractor_DataScenario(t *testing.T) {
	result, err := GetDBInfoData(context.Background(), salesProvider(), "sales.accdb")
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	set, _ := result.Tables("sales")
	if got := set.Names(); len(got) != 2 || got[0] != "Customers" || got[1] != "Orders" {
		t.Fatalf("expected enumeration order, got %v", got)
	}

	customers, _ := set.Get("Customers")
	if customers.Len() != 2 || len(customers.Columns) != 3 {
		t.Fatalf("unexpected customers shape: %d rows, %d cols", customers.Len(), len(customers.Columns))
	}
	if !customers.Rows[1][2].IsNull() {
		t.Fatalf("expected null city to stay null")
	}

	orders, _ := set.Get("Orders")
	if orders.Len() != 0 || len(orders.Columns) != 4 {
		t.Fatalf("expected empty orders with 4 columns, got %d rows, %d cols", orders.Len(), len(orders.Columns))
	}
}

func TestExtractor_SkipsFailingTable(t *testing.T) {
	provider := salesProvider()
	provider.order = append(provider.order, "Broken")
	provider.tables["Broken"] = stubTable{fail: errors.New("no read permission")}

	result, err := GetDBInfoMetadata(context.Background(), provider, "sales.accdb")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	set, _ := result.Tables("sales")
	if set.Len() != 2 {
		t.Fatalf("expected 2 tables, got %d", set.Len())
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped table, got %d", len(result.Skipped))
	}
	skipped := result.Skipped[0]
	if skipped.Table != "Broken" || skipped.Stage != StageIntrospect {
		t.Fatalf("unexpected skipped entry: %+v", skipped)
	}
	if !IsKind(skipped.Err, KindIntrospection) {
		t.Fatalf("expected introspection error, got %v", skipped.Err)
	}
}

func TestExtractor_ConnectionFailure(t *testing.T) {
	provider := &stubProvider{openErr: errors.New("file is locked")}
	result, err := GetDBInfoData(context.Background(), provider, "sales.accdb")
	if result != nil {
		t.Fatalf("expected no partial result")
	}
	if !IsKind(err, KindConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}

	if _, err := GetDBInfoData(context.Background(), nil, "sales.accdb"); !IsKind(err, KindConnection) {
		t.Fatalf("expected connection error for nil provider, got %v", err)
	}
}

func TestExtractor_EnumerationFailureIsFatal(t *testing.T) {
	provider := salesProvider()
	provider.listErr = errors.New("catalog unreadable")

	result, err := GetDBInfoMetadata(context.Background(), provider, "sales.accdb")
	if result != nil || !IsKind(err, KindIntrospection) {
		t.Fatalf("expected fatal introspection error, got %v", err)
	}
	if !provider.conns[0].closed {
		t.Fatalf("expected connection to be closed on failure")
	}
}

func TestExtractor_ZeroColumnTable(t *testing.T) {
	provider := &stubProvider{
		order:  []string{"Empty"},
		tables: map[string]stubTable{"Empty": {}},
	}
	result, err := GetDBInfoMetadata(context.Background(), provider, "empty.db")
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	set, _ := result.Tables("empty")
	table, ok := set.Get("Empty")
	if !ok || table.Len() != 0 {
		t.Fatalf("expected empty metadata table")
	}
}

func TestExtractor_Filter(t *testing.T) {
	extractor := NewExtractor(salesProvider())
	extractor.Filter = IncludeExclude(nil, []string{"orders"})

	result, err := extractor.Data(context.Background(), "sales.accdb")
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	set, _ := result.Tables("sales")
	if got := set.Names(); len(got) != 1 || got[0] != "Customers" {
		t.Fatalf("expected only Customers, got %v", got)
	}
}

func TestExtractor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GetDBInfoData(ctx, salesProvider(), "sales.accdb")
	if !IsKind(err, KindCanceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}

func TestExtractor_ExtractByKind(t *testing.T) {
	e := NewExtractor(salesProvider())

	meta, err := e.Extract(context.Background(), "", "sales.db")
	if err != nil || meta.Kind != ResultMetadata {
		t.Fatalf("expected metadata result, got %v %v", meta, err)
	}
	data, err := e.Extract(context.Background(), ResultData, "sales.db")
	if err != nil || data.Kind != ResultData {
		t.Fatalf("expected data result, got %v %v", data, err)
	}
	if _, err := e.Extract(context.Background(), "rows", "sales.db"); !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
